package models

// Assignment is coursework handed out with a due date.
type Assignment struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Course   string  `json:"course"`
	DueDate  string  `json:"dueDate"`
	MaxScore float64 `json:"maxScore"`
	Status   string  `json:"status"`
}

func (a Assignment) RecordID() int64 { return a.ID }
func (a Assignment) WithID(id int64) Assignment { a.ID = id; return a }

// AssignmentSummary aggregates the assignments collection.
type AssignmentSummary struct {
	Total    int     `json:"total"`
	ByStatus CountBy `json:"byStatus"`
}
