package models

// SyncStatus describes whether a mutation has reached the remote service.
type SyncStatus string

const (
	// SyncLocal marks collections that live only in the persisted store.
	SyncLocal SyncStatus = "local"
	// SyncSynced marks mutations confirmed by the remote service.
	SyncSynced SyncStatus = "synced"
	// SyncPending marks mutations applied locally whose remote call failed.
	SyncPending SyncStatus = "pending"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

// CountBy tallies values of a categorical field.
type CountBy map[string]int

// Add increments the bucket for key, ignoring empty keys.
func (c CountBy) Add(key string) {
	if key == "" {
		return
	}
	c[key]++
}

// StringValue dereferences optional string fields.
func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
