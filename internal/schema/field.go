package schema

import "time"

// Kind is the rule vocabulary a field can be validated against.
type Kind string

const (
	KindString  Kind = "string"
	KindEmail   Kind = "email"
	KindEnum    Kind = "enum"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindDate    Kind = "date"
	KindBool    Kind = "boolean"
)

// DateLayout is the accepted date format.
const DateLayout = "2006-01-02"

// Field describes one attribute of an entity and the rule it must satisfy.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	MinLen   int
	Options  []string
	Min      float64
	Max      float64

	defaultValue any
	defaultFn    func(time.Time) any
}

// String is a required text field of at least minLen characters.
func String(name, label string, minLen int) Field {
	return Field{Name: name, Label: label, Kind: KindString, Required: true, MinLen: minLen}
}

// Email is a required email address.
func Email(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindEmail, Required: true}
}

// Enum is a required value drawn from options.
func Enum(name, label string, options ...string) Field {
	return Field{Name: name, Label: label, Kind: KindEnum, Required: true, Options: options}
}

// Number is a required number within [min, max].
func Number(name, label string, min, max float64) Field {
	return Field{Name: name, Label: label, Kind: KindNumber, Required: true, Min: min, Max: max}
}

// Integer is a required whole number within [min, max].
func Integer(name, label string, min, max int64) Field {
	return Field{Name: name, Label: label, Kind: KindInteger, Required: true, Min: float64(min), Max: float64(max)}
}

// Date is a required YYYY-MM-DD date string.
func Date(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindDate, Required: true}
}

// Bool is a boolean flag; it carries no constraint beyond its type.
func Bool(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindBool}
}

// Optional allows the field to be omitted.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// Default makes the field optional and fills v when it is omitted on create.
func (f Field) Default(v any) Field {
	f.Required = false
	f.defaultValue = v
	return f
}

// DefaultToday makes a date field optional, defaulting to the creation date.
func (f Field) DefaultToday() Field {
	f.Required = false
	f.defaultFn = func(now time.Time) any { return now.Format(DateLayout) }
	return f
}

// HasDefault reports whether the field is filled when omitted.
func (f Field) HasDefault() bool {
	return f.defaultValue != nil || f.defaultFn != nil
}

// DefaultAt returns the default value as of now.
func (f Field) DefaultAt(now time.Time) any {
	if f.defaultFn != nil {
		return f.defaultFn(now)
	}
	return f.defaultValue
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
