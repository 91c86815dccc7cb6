package schema

// FormField describes one input of the add/edit dialog.
type FormField struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Kind      Kind     `json:"kind"`
	Required  bool     `json:"required"`
	MinLength int      `json:"minLength,omitempty"`
	Options   []string `json:"options,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Default   any      `json:"default,omitempty"`
}

// Form returns the dialog layout for the schema.
func (s *Schema) Form() []FormField {
	out := make([]FormField, 0, len(s.fields))
	for _, f := range s.fields {
		ff := FormField{
			Name:      f.Name,
			Label:     f.label(),
			Kind:      f.Kind,
			Required:  f.Required,
			MinLength: f.MinLen,
			Options:   f.Options,
			Default:   f.defaultValue,
		}
		if f.Kind == KindNumber || f.Kind == KindInteger {
			min, max := f.Min, f.Max
			ff.Min, ff.Max = &min, &max
		}
		out = append(out, ff)
	}
	return out
}
