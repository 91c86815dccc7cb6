package models

// StudentProfile holds guardian and personal details for a student.
type StudentProfile struct {
	ID            int64   `json:"id"`
	StudentName   string  `json:"studentName"`
	DateOfBirth   string  `json:"dateOfBirth"`
	GuardianName  string  `json:"guardianName"`
	GuardianPhone string  `json:"guardianPhone"`
	Address       *string `json:"address,omitempty"`
	BloodGroup    *string `json:"bloodGroup,omitempty"`
}

func (p StudentProfile) RecordID() int64 { return p.ID }
func (p StudentProfile) WithID(id int64) StudentProfile { p.ID = id; return p }

// StudentProfileSummary aggregates the student profile collection.
type StudentProfileSummary struct {
	Total        int     `json:"total"`
	ByBloodGroup CountBy `json:"byBloodGroup"`
}
