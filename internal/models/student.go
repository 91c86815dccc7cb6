package models

// Student represents a learner listed in the students table.
type Student struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Grade    string `json:"grade"`
	JoinDate string `json:"joinDate"`
}

func (s Student) RecordID() int64 { return s.ID }
func (s Student) WithID(id int64) Student { s.ID = id; return s }

// StudentSummary aggregates the students collection.
type StudentSummary struct {
	Total   int     `json:"total"`
	ByGrade CountBy `json:"byGrade"`
}
