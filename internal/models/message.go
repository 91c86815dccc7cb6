package models

// Message is an internal note between staff, students or parents.
type Message struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Date      string `json:"date"`
	Read      bool   `json:"read"`
}

func (m Message) RecordID() int64 { return m.ID }
func (m Message) WithID(id int64) Message { m.ID = id; return m }

// MessageSummary aggregates the messages collection.
type MessageSummary struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
