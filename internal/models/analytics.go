package models

// Analytics is a recorded metric value for a reporting period.
type Analytics struct {
	ID     int64   `json:"id"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Period string  `json:"period"`
	Date   string  `json:"date"`
}

func (a Analytics) RecordID() int64 { return a.ID }
func (a Analytics) WithID(id int64) Analytics { a.ID = id; return a }

// AnalyticsSummary aggregates the analytics collection.
type AnalyticsSummary struct {
	Total        int     `json:"total"`
	AverageValue float64 `json:"averageValue"`
	ByPeriod     CountBy `json:"byPeriod"`
}
