package models

// Teacher represents a member of the teaching staff.
type Teacher struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Subject  string  `json:"subject"`
	Phone    *string `json:"phone,omitempty"`
	Status   string  `json:"status"`
	JoinDate string  `json:"joinDate"`
}

func (t Teacher) RecordID() int64 { return t.ID }
func (t Teacher) WithID(id int64) Teacher { t.ID = id; return t }

// TeacherSummary aggregates the teachers collection.
type TeacherSummary struct {
	Total     int     `json:"total"`
	BySubject CountBy `json:"bySubject"`
	ByStatus  CountBy `json:"byStatus"`
}
