package model

import (
	"encoding/json"
	"time"
)

// Reserved field names managed by the system, never writable by clients.
const (
	FieldID        = "id"
	FieldCreatedBy = "createdBy"
	FieldPublished = "published"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Record is a persisted document in a named collection. Collection-specific
// fields live in Fields and are stored inline at the top level of the
// document, next to the system-managed fields.
type Record struct {
	ID        string    `json:"-" bson:"id"`
	CreatedBy string    `json:"-" bson:"createdBy"`
	Published bool      `json:"-" bson:"published"`
	CreatedAt time.Time `json:"-" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`

	Fields map[string]interface{} `json:"-" bson:",inline"`
}

// NewRecord creates a record owned by the given identity. Published defaults
// to false; drafts stay invisible to the public read path until toggled.
func NewRecord(createdBy string, fields map[string]interface{}) *Record {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Record{
		CreatedBy: createdBy,
		Fields:    fields,
	}
}

// IsOwnedBy reports whether the record was created by the given identity.
func (r *Record) IsOwnedBy(email string) bool {
	return r.CreatedBy != "" && r.CreatedBy == email
}

// Field returns a collection-specific field value.
func (r *Record) Field(name string) (interface{}, bool) {
	val, ok := r.Fields[name]
	return val, ok
}

// MarshalJSON flattens system fields and collection fields into one object.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+5)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[FieldID] = r.ID
	out[FieldCreatedBy] = r.CreatedBy
	out[FieldPublished] = r.Published
	out[FieldCreatedAt] = r.CreatedAt
	out[FieldUpdatedAt] = r.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON splits system fields out of a flat object; everything else
// lands in Fields. Timestamps and id supplied by clients are ignored by the
// usecases, but are decoded here so stored payloads round-trip.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw[FieldID].(string); ok {
		r.ID = v
	}
	if v, ok := raw[FieldCreatedBy].(string); ok {
		r.CreatedBy = v
	}
	if v, ok := raw[FieldPublished].(bool); ok {
		r.Published = v
	}
	if v, ok := raw[FieldCreatedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.CreatedAt = t
		}
	}
	if v, ok := raw[FieldUpdatedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.UpdatedAt = t
		}
	}

	delete(raw, FieldID)
	delete(raw, FieldCreatedBy)
	delete(raw, FieldPublished)
	delete(raw, FieldCreatedAt)
	delete(raw, FieldUpdatedAt)
	r.Fields = raw
	return nil
}

// IsSystemField reports whether the field name is system-managed.
func IsSystemField(name string) bool {
	switch name {
	case FieldID, FieldCreatedBy, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}
