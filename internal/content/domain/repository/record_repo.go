package repository

import (
	"context"

	"deptsite/internal/content/domain/model"

	"go.mongodb.org/mongo-driver/bson"
)

// RecordRepository is the find/count/insert/update/delete contract against
// the document store. An empty result set is success with zero items, never
// an error.
type RecordRepository interface {
	// Find returns one page of records matching the filter plus the total
	// match count.
	Find(ctx context.Context, collection string, filter bson.M, sort bson.D, skip, limit int) ([]*model.Record, int64, error)

	// FindByID returns a single record or errors.ErrRecordNotFound.
	FindByID(ctx context.Context, collection, id string) (*model.Record, error)

	// Insert persists a new record, stamping creation and update times.
	Insert(ctx context.Context, collection string, record *model.Record) error

	// UpdateByID applies a field delta and returns the updated record, or
	// errors.ErrRecordNotFound.
	UpdateByID(ctx context.Context, collection, id string, fields map[string]interface{}, published *bool) (*model.Record, error)

	// DeleteByID removes a record, or errors.ErrRecordNotFound.
	DeleteByID(ctx context.Context, collection, id string) error

	// Distinct returns the distinct values of a field among records matching
	// the filter, as strings, sorted ascending.
	Distinct(ctx context.Context, collection, field string, filter bson.M) ([]string, error)

	// Expand replaces configured reference fields with the referenced
	// records' data in place.
	Expand(ctx context.Context, cfg *model.CollectionConfig, records []*model.Record) error
}
