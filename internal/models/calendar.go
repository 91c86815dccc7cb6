package models

// CalendarEvent is an entry on the school calendar.
type CalendarEvent struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	EndDate  *string `json:"endDate,omitempty"`
	Type     string  `json:"type"`
	Location *string `json:"location,omitempty"`
	AllDay   bool    `json:"allDay"`
}

func (e CalendarEvent) RecordID() int64 { return e.ID }
func (e CalendarEvent) WithID(id int64) CalendarEvent { e.ID = id; return e }

// CalendarSummary aggregates the calendar collection.
type CalendarSummary struct {
	Total  int     `json:"total"`
	ByType CountBy `json:"byType"`
}
