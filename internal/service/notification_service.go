package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
)

const defaultNotificationCapacity = 100

// Notification is a notice as exposed to the dashboard.
type Notification struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	RecordID  int64     `json:"recordId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationService keeps the most recent notices in a bounded ring.
type NotificationService struct {
	mu     sync.Mutex
	ring   []Notification
	next   int
	full   bool
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService builds a feed holding at most capacity notices.
func NewNotificationService(capacity int, logger *zap.Logger) *NotificationService {
	if capacity <= 0 {
		capacity = defaultNotificationCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{ring: make([]Notification, capacity), logger: logger, now: time.Now}
}

// Notify implements collection.Notifier.
func (s *NotificationService) Notify(n collection.Notice) {
	item := Notification{
		ID:        uuid.NewString(),
		Entity:    n.Entity,
		Level:     n.Level,
		Message:   n.Message,
		RecordID:  n.RecordID,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.ring[s.next] = item
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()

	s.logger.Debug("notice raised", zap.String("entity", n.Entity), zap.String("level", n.Level), zap.String("message", n.Message))
}

// List returns up to limit notices, newest first. limit <= 0 returns all.
func (s *NotificationService) List(limit int) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.full {
		size = len(s.ring)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]Notification, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out
}
