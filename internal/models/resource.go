package models

// Resource is learning material shared with students.
type Resource struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	Subject    string `json:"subject"`
	UploadedBy string `json:"uploadedBy"`
	Date       string `json:"date"`
}

func (r Resource) RecordID() int64 { return r.ID }
func (r Resource) WithID(id int64) Resource { r.ID = id; return r }

// ResourceSummary aggregates the resources collection.
type ResourceSummary struct {
	Total  int     `json:"total"`
	ByType CountBy `json:"byType"`
}
