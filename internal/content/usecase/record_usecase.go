package usecase

import (
	"context"
	"net/url"

	authmodel "deptsite/internal/auth/domain/model"
	"deptsite/internal/content/config"
	"deptsite/internal/content/domain/model"
	"deptsite/internal/content/domain/repository"
	"deptsite/internal/content/domain/service"
	"deptsite/internal/shared/errors"
	"deptsite/internal/shared/eventbus"
	"deptsite/internal/shared/logger"
	"deptsite/internal/shared/utils"
)

// ListResult is one page of records with its pagination window.
type ListResult struct {
	Records    []*model.Record  `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// RecordUsecaseInterface is the authenticated record surface. Every operation
// requires a session; write operations additionally enforce ownership where
// the collection is configured to.
type RecordUsecaseInterface interface {
	List(ctx context.Context, collection string, params url.Values) (*ListResult, error)
	Get(ctx context.Context, collection, id string) (*model.Record, error)
	Create(ctx context.Context, collection string, fields map[string]interface{}) (*model.Record, error)
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*model.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// RecordUsecase implements the authenticated record operations for every
// configured collection. Behavior differences between collections come
// entirely from their CollectionConfig.
type RecordUsecase struct {
	registry *config.Registry
	repo     repository.RecordRepository
	bus      eventbus.EventBusInterface
	log      logger.Logger
}

// NewRecordUsecase creates the authenticated record usecase.
func NewRecordUsecase(registry *config.Registry, repo repository.RecordRepository, bus eventbus.EventBusInterface, log logger.Logger) *RecordUsecase {
	return &RecordUsecase{
		registry: registry,
		repo:     repo,
		bus:      bus,
		log:      log.WithComponent("record_usecase"),
	}
}

// List returns one page of records in the collection. Drafts are visible on
// this surface: authors need to see their unpublished work.
func (uc *RecordUsecase) List(ctx context.Context, collection string, params url.Values) (*ListResult, error) {
	cfg, err := uc.lookupCollection(collection)
	if err != nil {
		return nil, err
	}
	if _, _, err := uc.requireSession(ctx); err != nil {
		return nil, err
	}

	spec := model.ParseQuerySpec(params, cfg)
	filter := service.MergeFilter(service.BuildFilter(spec, cfg), cfg.DefaultFilter)

	records, total, err := uc.repo.Find(ctx, cfg.Name, filter, service.BuildSort(spec), spec.Skip(), spec.Limit)
	if err != nil {
		return nil, errors.WrapError(err, "failed to list records")
	}
	if err := uc.repo.Expand(ctx, cfg, records); err != nil {
		return nil, errors.WrapError(err, "failed to expand references")
	}

	return &ListResult{
		Records:    records,
		Pagination: model.NewPagination(total, spec.Page, spec.Limit),
	}, nil
}

// Get returns a single record, draft or published.
func (uc *RecordUsecase) Get(ctx context.Context, collection, id string) (*model.Record, error) {
	cfg, err := uc.lookupCollection(collection)
	if err != nil {
		return nil, err
	}
	if _, _, err := uc.requireSession(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.ErrMissingRecordID
	}

	record, err := uc.repo.FindByID(ctx, cfg.Name, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Expand(ctx, cfg, []*model.Record{record}); err != nil {
		return nil, errors.WrapError(err, "failed to expand references")
	}
	return record, nil
}

// Create persists a new record. The creator is always the session identity;
// any creator supplied in the payload is discarded.
func (uc *RecordUsecase) Create(ctx context.Context, collection string, fields map[string]interface{}) (*model.Record, error) {
	cfg, err := uc.lookupCollection(collection)
	if err != nil {
		return nil, err
	}
	email, _, err := uc.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	published, fields, err := splitPayload(fields)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults(fields)
	if ve := cfg.Validate(fields, false); ve != nil {
		return nil, ve.ToAppError()
	}

	record := model.NewRecord(email, fields)
	if published != nil {
		record.Published = *published
	}
	if err := uc.repo.Insert(ctx, cfg.Name, record); err != nil {
		if errors.IsConflict(err) {
			return nil, errors.NewConflictError("record already exists").WithCause(err)
		}
		return nil, errors.WrapError(err, "failed to create record")
	}

	uc.publishChange(ctx, cfg.Name, record.ID, model.ActionCreated)
	uc.log.WithContext(ctx).Infof("record created in %s: %s", cfg.Name, record.ID)
	return record, nil
}

// Update applies a partial field delta. The merged document is re-validated
// so an update cannot corrupt a record that was valid on creation.
func (uc *RecordUsecase) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*model.Record, error) {
	cfg, err := uc.lookupCollection(collection)
	if err != nil {
		return nil, err
	}
	email, role, err := uc.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.ErrMissingRecordID
	}

	existing, err := uc.repo.FindByID(ctx, cfg.Name, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(cfg, existing, email, role); err != nil {
		return nil, err
	}

	published, delta, err := splitPayload(fields)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(existing.Fields)+len(delta))
	for k, v := range existing.Fields {
		merged[k] = v
	}
	for k, v := range delta {
		merged[k] = v
	}
	if ve := cfg.Validate(merged, false); ve != nil {
		return nil, ve.ToAppError()
	}

	record, err := uc.repo.UpdateByID(ctx, cfg.Name, id, delta, published)
	if err != nil {
		if errors.IsConflict(err) {
			return nil, errors.NewConflictError("record conflicts with an existing one").WithCause(err)
		}
		return nil, err
	}

	uc.publishChange(ctx, cfg.Name, id, model.ActionUpdated)
	return record, nil
}

// Delete removes a record. Deleting an absent record reports not found rather
// than succeeding silently, so clients learn their reference is stale.
func (uc *RecordUsecase) Delete(ctx context.Context, collection, id string) error {
	cfg, err := uc.lookupCollection(collection)
	if err != nil {
		return err
	}
	email, role, err := uc.requireSession(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.ErrMissingRecordID
	}

	existing, err := uc.repo.FindByID(ctx, cfg.Name, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(cfg, existing, email, role); err != nil {
		return err
	}

	if err := uc.repo.DeleteByID(ctx, cfg.Name, id); err != nil {
		return err
	}

	uc.publishChange(ctx, cfg.Name, id, model.ActionDeleted)
	uc.log.WithContext(ctx).Infof("record deleted from %s: %s", cfg.Name, id)
	return nil
}

func (uc *RecordUsecase) lookupCollection(name string) (*model.CollectionConfig, error) {
	cfg, err := uc.registry.Get(name)
	if err != nil {
		return nil, errors.NewNotFoundError("collection").WithCause(err)
	}
	return cfg, nil
}

// requireSession extracts the authenticated identity from context. The HTTP
// middleware injects it; a missing identity means the caller skipped
// authentication.
func (uc *RecordUsecase) requireSession(ctx context.Context) (string, authmodel.Role, error) {
	email, ok := utils.GetUserEmail(ctx)
	if !ok {
		return "", "", errors.NewUnauthorizedError("authentication required")
	}
	roleStr, _ := utils.GetUserRole(ctx)
	return email, authmodel.Role(roleStr), nil
}

func (uc *RecordUsecase) publishChange(ctx context.Context, collection, recordID, action string) {
	if uc.bus == nil {
		return
	}
	uc.bus.PublishAndForget(ctx, eventbus.NewBasicEvent(model.EventRecordChanged, "content", model.RecordChange{
		Collection: collection,
		RecordID:   recordID,
		Action:     action,
	}))
}

// checkOwnership rejects writes to another user's record when the collection
// enforces ownership. Elevated roles manage all records.
func checkOwnership(cfg *model.CollectionConfig, record *model.Record, email string, role authmodel.Role) error {
	if !cfg.EnforceOwnership || role.IsElevated() {
		return nil
	}
	if !record.IsOwnedBy(email) {
		return errors.NewForbiddenError("record belongs to another user").WithCause(errors.ErrNotRecordOwner)
	}
	return nil
}

// splitPayload separates the published flag from the collection fields and
// strips system-managed fields a client may have echoed back.
func splitPayload(fields map[string]interface{}) (*bool, map[string]interface{}, error) {
	var published *bool
	out := make(map[string]interface{}, len(fields))
	for name, val := range fields {
		if name == model.FieldPublished {
			b, ok := val.(bool)
			if !ok {
				return nil, nil, errors.NewValidationErrors().
					Add(model.FieldPublished, "must be a boolean", val).
					ToAppError()
			}
			published = &b
			continue
		}
		if model.IsSystemField(name) {
			continue
		}
		out[name] = val
	}
	return published, out, nil
}
