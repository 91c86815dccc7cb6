package models

// Course is an offered subject with a teacher and credit weight.
type Course struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Code        string  `json:"code"`
	Teacher     string  `json:"teacher"`
	Credits     int     `json:"credits"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
}

func (c Course) RecordID() int64 { return c.ID }
func (c Course) WithID(id int64) Course { c.ID = id; return c }

// CourseSummary aggregates the courses collection.
type CourseSummary struct {
	Total          int     `json:"total"`
	AverageCredits float64 `json:"averageCredits"`
	ByStatus       CountBy `json:"byStatus"`
}
