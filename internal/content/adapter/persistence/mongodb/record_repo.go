package mongodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"deptsite/internal/content/domain/model"
	"deptsite/internal/shared/errors"
	"deptsite/internal/shared/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordRepository implements repository.RecordRepository on a pooled
// MongoDB handle shared by all in-flight requests.
type MongoRecordRepository struct {
	db  *mongo.Database
	log logger.Logger
}

// NewMongoRecordRepository creates a record repository over the given database.
func NewMongoRecordRepository(db *mongo.Database, log logger.Logger) *MongoRecordRepository {
	return &MongoRecordRepository{
		db:  db,
		log: log.WithComponent("record_repository"),
	}
}

// EnsureIndexes creates the id and visibility indexes for a collection.
func (r *MongoRecordRepository) EnsureIndexes(ctx context.Context, cfg *model.CollectionConfig) error {
	coll := r.db.Collection(cfg.Name)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes for %s: %w", cfg.Name, err)
	}
	return nil
}

// Find returns one page of matching records plus the total match count.
func (r *MongoRecordRepository) Find(ctx context.Context, collection string, filter bson.M, sortOrder bson.D, skip, limit int) ([]*model.Record, int64, error) {
	coll := r.db.Collection(collection)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count failed for %s: %w", collection, err)
	}

	opts := options.Find().
		SetSort(sortOrder).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find failed for %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	records := make([]*model.Record, 0, limit)
	for cur.Next(ctx) {
		var record model.Record
		if err := cur.Decode(&record); err != nil {
			return nil, 0, fmt.Errorf("decode failed for %s: %w", collection, err)
		}
		scrubStoreFields(&record)
		records = append(records, &record)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor failed for %s: %w", collection, err)
	}

	return records, total, nil
}

// FindByID returns a single record by its id field.
func (r *MongoRecordRepository) FindByID(ctx context.Context, collection, id string) (*model.Record, error) {
	var record model.Record
	err := r.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find by id failed for %s: %w", collection, err)
	}
	scrubStoreFields(&record)
	return &record, nil
}

// Insert persists a new record, assigning an id and stamping timestamps.
func (r *MongoRecordRepository) Insert(ctx context.Context, collection string, record *model.Record) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if _, err := r.db.Collection(collection).InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrDuplicateRecord
		}
		return fmt.Errorf("insert failed for %s: %w", collection, err)
	}
	return nil
}

// UpdateByID applies a field delta, refreshes the update timestamp and
// returns the updated record.
func (r *MongoRecordRepository) UpdateByID(ctx context.Context, collection, id string, fields map[string]interface{}, published *bool) (*model.Record, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for name, val := range fields {
		if model.IsSystemField(name) || name == model.FieldPublished {
			continue
		}
		set[name] = val
	}
	if published != nil {
		set["published"] = *published
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record model.Record
	err := r.db.Collection(collection).
		FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).
		Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrRecordNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.ErrDuplicateRecord
		}
		return nil, fmt.Errorf("update failed for %s: %w", collection, err)
	}
	scrubStoreFields(&record)
	return &record, nil
}

// DeleteByID removes a record by id.
func (r *MongoRecordRepository) DeleteByID(ctx context.Context, collection, id string) error {
	result, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete failed for %s: %w", collection, err)
	}
	if result.DeletedCount == 0 {
		return errors.ErrRecordNotFound
	}
	return nil
}

// Distinct returns the sorted distinct string values of a field among
// matching records. Non-string values are skipped.
func (r *MongoRecordRepository) Distinct(ctx context.Context, collection, field string, filter bson.M) ([]string, error) {
	raw, err := r.db.Collection(collection).Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("distinct failed for %s.%s: %w", collection, field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

// Expand replaces configured reference fields with the referenced records'
// data. References are batch-fetched per field, one store round-trip per
// configured reference field.
func (r *MongoRecordRepository) Expand(ctx context.Context, cfg *model.CollectionConfig, records []*model.Record) error {
	if len(cfg.ReferenceFields) == 0 || len(records) == 0 {
		return nil
	}

	for field, refCollection := range cfg.ReferenceFields {
		ids := collectReferenceIDs(records, field)
		if len(ids) == 0 {
			continue
		}

		cur, err := r.db.Collection(refCollection).Find(ctx, bson.M{"id": bson.M{"$in": ids}})
		if err != nil {
			return fmt.Errorf("reference expansion failed for %s.%s: %w", cfg.Name, field, err)
		}

		resolved := make(map[string]*model.Record, len(ids))
		for cur.Next(ctx) {
			var ref model.Record
			if err := cur.Decode(&ref); err != nil {
				cur.Close(ctx)
				return fmt.Errorf("reference decode failed for %s: %w", refCollection, err)
			}
			scrubStoreFields(&ref)
			resolved[ref.ID] = &ref
		}
		if err := cur.Err(); err != nil {
			cur.Close(ctx)
			return fmt.Errorf("reference cursor failed for %s: %w", refCollection, err)
		}
		cur.Close(ctx)

		embedReferences(records, field, resolved)
	}

	return nil
}

// collectReferenceIDs gathers the distinct reference IDs held by a field
// across the page, accepting single IDs and ID lists.
func collectReferenceIDs(records []*model.Record, field string) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, record := range records {
		switch val := record.Fields[field].(type) {
		case string:
			add(val)
		case []interface{}:
			for _, item := range val {
				if id, ok := item.(string); ok {
					add(id)
				}
			}
		case primitive.A:
			for _, item := range val {
				if id, ok := item.(string); ok {
					add(id)
				}
			}
		}
	}
	return ids
}

// embedReferences swaps stored IDs for resolved records, leaving unresolved
// IDs untouched rather than dropping them.
func embedReferences(records []*model.Record, field string, resolved map[string]*model.Record) {
	for _, record := range records {
		switch val := record.Fields[field].(type) {
		case string:
			if ref, ok := resolved[val]; ok {
				record.Fields[field] = ref
			}
		case []interface{}:
			record.Fields[field] = embedReferenceList(val, resolved)
		case primitive.A:
			record.Fields[field] = embedReferenceList(val, resolved)
		}
	}
}

func embedReferenceList(items []interface{}, resolved map[string]*model.Record) []interface{} {
	expanded := make([]interface{}, len(items))
	for i, item := range items {
		expanded[i] = item
		if id, ok := item.(string); ok {
			if ref, found := resolved[id]; found {
				expanded[i] = ref
			}
		}
	}
	return expanded
}

// scrubStoreFields drops store-internal keys that leak through the inline
// field map on decode, and rewrites the driver's named types into the plain
// Go shapes the schema validators and reference expansion operate on.
func scrubStoreFields(record *model.Record) {
	delete(record.Fields, "_id")
	for name, val := range record.Fields {
		record.Fields[name] = normalizeStoreValue(val)
	}
}

// normalizeStoreValue converts decoded BSON values (primitive.A arrays,
// primitive.D/primitive.M documents, primitive.DateTime) into
// []interface{}, map[string]interface{} and time.Time, recursively.
func normalizeStoreValue(val interface{}) interface{} {
	switch v := val.(type) {
	case primitive.A:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeStoreValue(item)
		}
		return out
	case primitive.D:
		out := make(map[string]interface{}, len(v))
		for _, elem := range v {
			out[elem.Key] = normalizeStoreValue(elem.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = normalizeStoreValue(item)
		}
		return out
	case primitive.DateTime:
		return v.Time().UTC()
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeStoreValue(item)
		}
		return v
	case map[string]interface{}:
		for key, item := range v {
			v[key] = normalizeStoreValue(item)
		}
		return v
	default:
		return val
	}
}
