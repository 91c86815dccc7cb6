package models

import "math"

// PassPercentage is the minimum percentage counted as a pass.
const PassPercentage = 40.0

// Result is a student's score in a subject.
type Result struct {
	ID          int64   `json:"id"`
	StudentName string  `json:"studentName"`
	Subject     string  `json:"subject"`
	Score       float64 `json:"score"`
	TotalMarks  float64 `json:"totalMarks"`
	Term        *string `json:"term,omitempty"`
}

func (r Result) RecordID() int64 { return r.ID }
func (r Result) WithID(id int64) Result { r.ID = id; return r }

// Percentage returns score/totalMarks as a percentage rounded to two decimals.
// It is derived on demand and never persisted.
func (r Result) Percentage() float64 {
	if r.TotalMarks <= 0 {
		return 0
	}
	return round2(r.Score / r.TotalMarks * 100)
}

// ResultView is a Result as returned to API callers, with its percentage.
type ResultView struct {
	Result
	Percentage float64 `json:"percentage"`
}

// View attaches the derived percentage.
func (r Result) View() ResultView {
	return ResultView{Result: r, Percentage: r.Percentage()}
}

// ResultSummary aggregates the results collection.
type ResultSummary struct {
	Total             int     `json:"total"`
	AveragePercentage float64 `json:"averagePercentage"`
	Passed            int     `json:"passed"`
	HighestPercentage float64 `json:"highestPercentage"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
