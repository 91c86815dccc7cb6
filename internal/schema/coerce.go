package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coerce converts a raw form or JSON value into the Go type the field's rule
// expects. A nil result with no error means "treat as absent".
func coerce(f Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch f.Kind {
	case KindNumber, KindInteger:
		return coerceNumber(f, raw)
	case KindBool:
		return coerceBool(f, raw)
	default:
		return coerceText(f, raw)
	}
}

func coerceText(f Field, raw any) (any, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return nil, fmt.Errorf("%s must be text", f.label())
	}
	if s == "" && !f.Required {
		return nil, nil
	}
	return s, nil
}

func coerceNumber(f Field, raw any) (any, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.label())
		}
		n = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.label())
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%s must be a number", f.label())
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%s must be a number", f.label())
	}
	if f.Kind == KindInteger {
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("%s must be a whole number", f.label())
		}
		if f.Min < f.Max {
			if n < f.Min {
				return nil, fmt.Errorf("%s must be at least %s", f.label(), formatFloat(f.Min))
			}
			if n > f.Max {
				return nil, fmt.Errorf("%s must be at most %s", f.label(), formatFloat(f.Max))
			}
		}
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, fmt.Errorf("%s is out of range", f.label())
		}
		return int64(n), nil
	}
	return n, nil
}

func coerceBool(f Field, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return nil, nil
		case "true", "on", "yes", "1":
			return true, nil
		case "false", "off", "no", "0":
			return false, nil
		}
	}
	return nil, fmt.Errorf("%s must be true or false", f.label())
}
