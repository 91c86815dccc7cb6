package schema

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field name to a human-readable violation.
type FieldErrors map[string]string

// Error implements error, listing violations in field order.
func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e[k])
	}
	return strings.Join(parts, "; ")
}

// Schema validates the field set of one entity.
type Schema struct {
	entity   string
	fields   []Field
	index    map[string]int
	validate *validator.Validate
}

// New builds a schema; field names must be unique.
func New(entity string, fields ...Field) *Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", entity, f.Name))
		}
		index[f.Name] = i
	}
	return &Schema{entity: entity, fields: fields, index: index, validate: validator.New()}
}

// Entity returns the entity name the schema belongs to.
func (s *Schema) Entity() string { return s.entity }

// Fields returns the field definitions in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field definition.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Coerce converts raw input into typed values. Unknown keys and "id" are
// dropped; values that cannot be converted are reported and left out.
func (s *Schema) Coerce(raw map[string]any) (map[string]any, FieldErrors) {
	out := make(map[string]any, len(raw))
	errs := FieldErrors{}
	for key, value := range raw {
		f, ok := s.Field(key)
		if !ok {
			continue
		}
		converted, err := coerce(f, value)
		if err != nil {
			errs[key] = err.Error()
			continue
		}
		if converted == nil {
			continue
		}
		out[key] = converted
	}
	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

// ApplyDefaults fills omitted fields that declare a default.
func (s *Schema) ApplyDefaults(fields map[string]any, now time.Time) map[string]any {
	for _, f := range s.fields {
		if !f.HasDefault() {
			continue
		}
		if v, ok := fields[f.Name]; ok && v != nil {
			continue
		}
		fields[f.Name] = f.DefaultAt(now)
	}
	return fields
}

// Validate checks a full record against every rule. It is deterministic and
// has no side effects; a nil result means valid.
func (s *Schema) Validate(fields map[string]any) FieldErrors {
	typed, errs := s.Coerce(fields)
	if errs == nil {
		errs = FieldErrors{}
	}
	for _, f := range s.fields {
		if _, failed := errs[f.Name]; failed {
			continue
		}
		value, present := typed[f.Name]
		if !present {
			if f.Required {
				errs[f.Name] = f.label() + " is required"
			}
			continue
		}
		tag := ruleTag(f)
		if tag == "" {
			continue
		}
		if err := s.validate.Var(value, tag); err != nil {
			errs[f.Name] = message(f, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ruleTag(f Field) string {
	switch f.Kind {
	case KindString:
		if f.MinLen > 0 {
			return "required,min=" + strconv.Itoa(f.MinLen)
		}
		return "required"
	case KindEmail:
		return "required,email"
	case KindEnum:
		quoted := make([]string, len(f.Options))
		for i, opt := range f.Options {
			quoted[i] = "'" + opt + "'"
		}
		return "required,oneof=" + strings.Join(quoted, " ")
	case KindNumber:
		return "gte=" + formatFloat(f.Min) + ",lte=" + formatFloat(f.Max)
	case KindInteger:
		return "gte=" + strconv.FormatInt(int64(f.Min), 10) + ",lte=" + strconv.FormatInt(int64(f.Max), 10)
	case KindDate:
		return "required,datetime=" + DateLayout
	}
	return ""
}

func message(f Field, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return f.label() + " is invalid"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return f.label() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f.label(), fe.Param())
	case "email":
		return f.label() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.label(), strings.Join(f.Options, ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f.label(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", f.label(), fe.Param())
	case "datetime":
		return f.label() + " must be a date (YYYY-MM-DD)"
	}
	return f.label() + " is invalid"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
