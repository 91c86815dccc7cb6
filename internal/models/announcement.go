package models

// Announcement is a notice published to a school audience.
type Announcement struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
	Audience string `json:"audience"`
}

func (a Announcement) RecordID() int64 { return a.ID }
func (a Announcement) WithID(id int64) Announcement { a.ID = id; return a }

// AnnouncementSummary aggregates the announcements collection.
type AnnouncementSummary struct {
	Total      int     `json:"total"`
	ByPriority CountBy `json:"byPriority"`
}
