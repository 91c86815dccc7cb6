package models

// Attendance statuses.
const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceLate    = "Late"
	AttendanceExcused = "Excused"
)

// Attendance records one student's presence on a date.
type Attendance struct {
	ID          int64   `json:"id"`
	StudentName string  `json:"studentName"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Remarks     *string `json:"remarks,omitempty"`
}

func (a Attendance) RecordID() int64 { return a.ID }
func (a Attendance) WithID(id int64) Attendance { a.ID = id; return a }

// AttendanceSummary aggregates the attendance collection. Rate is the share of
// Present records as a percentage.
type AttendanceSummary struct {
	Total    int     `json:"total"`
	ByStatus CountBy `json:"byStatus"`
	Rate     float64 `json:"attendanceRate"`
}
