package models

// Fee statuses.
const (
	FeePaid    = "Paid"
	FeePending = "Pending"
	FeeOverdue = "Overdue"
)

// Fee is an amount billed to a student.
type Fee struct {
	ID          int64   `json:"id"`
	StudentName string  `json:"studentName"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
}

func (f Fee) RecordID() int64 { return f.ID }
func (f Fee) WithID(id int64) Fee { f.ID = id; return f }

// FeeSummary aggregates the fees collection. Outstanding covers every fee not Paid.
type FeeSummary struct {
	Total       int     `json:"total"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
	Outstanding float64 `json:"outstandingAmount"`
	ByStatus    CountBy `json:"byStatus"`
}
