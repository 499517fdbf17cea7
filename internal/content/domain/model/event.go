package model

// EventRecordChanged is published on the shared event bus whenever a record
// is created, updated or deleted.
const EventRecordChanged = "content.record.changed"

// Record change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChange is the payload of an EventRecordChanged event.
type RecordChange struct {
	Collection string `json:"collection"`
	RecordID   string `json:"recordId"`
	Action     string `json:"action"`
}
