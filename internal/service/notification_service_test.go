package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
)

func TestNotificationServiceNewestFirst(t *testing.T) {
	svc := NewNotificationService(10, nil)
	svc.Notify(collection.Notice{Entity: "fees", Level: collection.LevelWarning, Message: "first"})
	svc.Notify(collection.Notice{Entity: "fees", Level: collection.LevelError, Message: "second", RecordID: 7})

	items := svc.List(0)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)
	assert.Equal(t, int64(7), items[0].RecordID)
	assert.Equal(t, "first", items[1].Message)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestNotificationServiceDropsOldest(t *testing.T) {
	svc := NewNotificationService(3, nil)
	for i := 0; i < 5; i++ {
		svc.Notify(collection.Notice{Entity: "students", Message: fmt.Sprintf("n%d", i)})
	}

	items := svc.List(0)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"n4", "n3", "n2"}, []string{items[0].Message, items[1].Message, items[2].Message})

	assert.Len(t, svc.List(2), 2)
	assert.Len(t, svc.List(50), 3)
}

func TestNotificationServiceEmpty(t *testing.T) {
	assert.Empty(t, NewNotificationService(0, nil).List(5))
}
