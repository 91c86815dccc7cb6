package models

// Setting is one dashboard preference.
type Setting struct {
	ID          int64   `json:"id"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Enabled     bool    `json:"enabled"`
}

func (s Setting) RecordID() int64 { return s.ID }
func (s Setting) WithID(id int64) Setting { s.ID = id; return s }

// SettingSummary aggregates the settings collection.
type SettingSummary struct {
	Total      int     `json:"total"`
	Enabled    int     `json:"enabled"`
	ByCategory CountBy `json:"byCategory"`
}
