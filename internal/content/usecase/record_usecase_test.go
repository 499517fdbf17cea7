package usecase

import (
	"context"
	"net/url"
	"testing"
	"time"

	"deptsite/internal/content/config"
	"deptsite/internal/content/domain/model"
	"deptsite/internal/shared/errors"
	"deptsite/internal/shared/eventbus"
	"deptsite/internal/shared/logger"
	"deptsite/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// mockRecordRepo implements repository.RecordRepository for usecase tests.
type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Find(ctx context.Context, collection string, filter bson.M, sort bson.D, skip, limit int) ([]*model.Record, int64, error) {
	args := m.Called(ctx, collection, filter, sort, skip, limit)
	var records []*model.Record
	if v := args.Get(0); v != nil {
		records = v.([]*model.Record)
	}
	return records, args.Get(1).(int64), args.Error(2)
}

func (m *mockRecordRepo) FindByID(ctx context.Context, collection, id string) (*model.Record, error) {
	args := m.Called(ctx, collection, id)
	var record *model.Record
	if v := args.Get(0); v != nil {
		record = v.(*model.Record)
	}
	return record, args.Error(1)
}

func (m *mockRecordRepo) Insert(ctx context.Context, collection string, record *model.Record) error {
	args := m.Called(ctx, collection, record)
	return args.Error(0)
}

func (m *mockRecordRepo) UpdateByID(ctx context.Context, collection, id string, fields map[string]interface{}, published *bool) (*model.Record, error) {
	args := m.Called(ctx, collection, id, fields, published)
	var record *model.Record
	if v := args.Get(0); v != nil {
		record = v.(*model.Record)
	}
	return record, args.Error(1)
}

func (m *mockRecordRepo) DeleteByID(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *mockRecordRepo) Distinct(ctx context.Context, collection, field string, filter bson.M) ([]string, error) {
	args := m.Called(ctx, collection, field, filter)
	var values []string
	if v := args.Get(0); v != nil {
		values = v.([]string)
	}
	return values, args.Error(1)
}

func (m *mockRecordRepo) Expand(ctx context.Context, cfg *model.CollectionConfig, records []*model.Record) error {
	args := m.Called(ctx, cfg, records)
	return args.Error(0)
}

func testRegistry() *config.Registry {
	return config.NewRegistry(
		&model.CollectionConfig{
			Name: "publications",
			Fields: []model.FieldSpec{
				{Name: "title", Kind: model.KindString, Required: true},
				{Name: "year", Kind: model.KindNumber},
			},
			SearchFields:     []string{"title"},
			FilterFields:     []string{"year"},
			FacetFields:      []string{"year"},
			EnforceOwnership: true,
			PublicRead:       true,
		},
		&model.CollectionConfig{
			Name: "equipment",
			Fields: []model.FieldSpec{
				{Name: "name", Kind: model.KindString, Required: true},
			},
			EnforceOwnership: false,
			PublicRead:       false,
		},
	)
}

func sessionCtx(email, role string) context.Context {
	ctx := utils.WithUserEmail(context.Background(), email)
	return utils.WithUserRole(ctx, role)
}

func newTestRecordUsecase(repo *mockRecordRepo, bus eventbus.EventBusInterface) *RecordUsecase {
	return NewRecordUsecase(testRegistry(), repo, bus, logger.NewLogger())
}

func TestRecordList_RequiresSession(t *testing.T) {
	uc := newTestRecordUsecase(&mockRecordRepo{}, nil)

	_, err := uc.List(context.Background(), "publications", url.Values{})

	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestRecordList_UnknownCollection(t *testing.T) {
	uc := newTestRecordUsecase(&mockRecordRepo{}, nil)

	_, err := uc.List(sessionCtx("u@dept.edu", "faculty"), "nonexistent", url.Values{})

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRecordList_PaginationWindow(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	page := []*model.Record{
		model.NewRecord("a@dept.edu", map[string]interface{}{"title": "one"}),
		model.NewRecord("a@dept.edu", map[string]interface{}{"title": "two"}),
	}
	repo.On("Find", mock.Anything, "publications", mock.Anything, mock.Anything, 10, 10).
		Return(page, int64(25), nil)
	repo.On("Expand", mock.Anything, mock.Anything, page).Return(nil)

	result, err := uc.List(sessionCtx("a@dept.edu", "faculty"), "publications",
		url.Values{"page": {"2"}, "limit": {"10"}})

	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, int64(25), result.Pagination.Total)
	assert.Equal(t, 2, result.Pagination.Page)
	assert.Equal(t, int64(3), result.Pagination.Pages)
	repo.AssertExpectations(t)
}

func TestRecordCreate_StampsCreatorFromSession(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	var inserted *model.Record
	repo.On("Insert", mock.Anything, "publications", mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).(*model.Record)
			inserted.ID = "rec-1"
		}).
		Return(nil)

	record, err := uc.Create(sessionCtx("maria@dept.edu", "faculty"), "publications", map[string]interface{}{
		"title":     "Alpha paper",
		"createdBy": "evil@dept.edu",
	})

	require.NoError(t, err)
	assert.Equal(t, "maria@dept.edu", record.CreatedBy, "creator comes from the session, never the payload")
	_, leaked := inserted.Fields["createdBy"]
	assert.False(t, leaked)
}

func TestRecordCreate_ValidationFailure(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	_, err := uc.Create(sessionCtx("maria@dept.edu", "faculty"), "publications", map[string]interface{}{
		"year": float64(2024),
	})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordCreate_PublishesChangeEvent(t *testing.T) {
	repo := &mockRecordRepo{}
	bus := eventbus.NewEventBus(nil)
	uc := newTestRecordUsecase(repo, bus)

	received := make(chan eventbus.Event, 1)
	bus.Subscribe(model.EventRecordChanged, func(ctx context.Context, event eventbus.Event) error {
		received <- event
		return nil
	})

	repo.On("Insert", mock.Anything, "publications", mock.Anything).Return(nil)

	_, err := uc.Create(sessionCtx("maria@dept.edu", "faculty"), "publications", map[string]interface{}{
		"title": "Alpha paper",
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		change := event.Data().(model.RecordChange)
		assert.Equal(t, "publications", change.Collection)
		assert.Equal(t, model.ActionCreated, change.Action)
	case <-time.After(time.Second):
		t.Fatal("expected a record-changed event")
	}
}

func TestRecordUpdate_ForbiddenForNonOwner(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("owner@dept.edu", map[string]interface{}{"title": "theirs"})
	existing.ID = "rec-1"
	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)

	_, err := uc.Update(sessionCtx("other@dept.edu", "faculty"), "publications", "rec-1",
		map[string]interface{}{"title": "mine now"})

	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
	repo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordUpdate_AdminBypassesOwnership(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("owner@dept.edu", map[string]interface{}{"title": "theirs"})
	existing.ID = "rec-1"
	updated := model.NewRecord("owner@dept.edu", map[string]interface{}{"title": "fixed"})
	updated.ID = "rec-1"

	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)
	repo.On("UpdateByID", mock.Anything, "publications", "rec-1", mock.Anything, (*bool)(nil)).
		Return(updated, nil)

	record, err := uc.Update(sessionCtx("admin@dept.edu", "admin"), "publications", "rec-1",
		map[string]interface{}{"title": "fixed"})

	require.NoError(t, err)
	assert.Equal(t, "fixed", record.Fields["title"])
}

func TestRecordUpdate_NoEnforcementAllowsCrossUser(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("owner@dept.edu", map[string]interface{}{"name": "microscope"})
	existing.ID = "eq-1"
	repo.On("FindByID", mock.Anything, "equipment", "eq-1").Return(existing, nil)
	repo.On("UpdateByID", mock.Anything, "equipment", "eq-1", mock.Anything, (*bool)(nil)).
		Return(existing, nil)

	_, err := uc.Update(sessionCtx("other@dept.edu", "staff"), "equipment", "eq-1",
		map[string]interface{}{"name": "electron microscope"})

	require.NoError(t, err)
}

func TestRecordUpdate_MergedDocumentIsRevalidated(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "ok"})
	existing.ID = "rec-1"
	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)

	_, err := uc.Update(sessionCtx("maria@dept.edu", "faculty"), "publications", "rec-1",
		map[string]interface{}{"year": "not-a-number"})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRecordUpdate_PublishedFlagMustBeBool(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "ok"})
	existing.ID = "rec-1"
	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)

	_, err := uc.Update(sessionCtx("maria@dept.edu", "faculty"), "publications", "rec-1",
		map[string]interface{}{"published": "yes"})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRecordDelete_MissingRecordIsNotFound(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	repo.On("FindByID", mock.Anything, "publications", "ghost").
		Return(nil, errors.ErrRecordNotFound)

	err := uc.Delete(sessionCtx("maria@dept.edu", "faculty"), "publications", "ghost")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordDelete_OwnerCanDelete(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "mine"})
	existing.ID = "rec-1"
	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)
	repo.On("DeleteByID", mock.Anything, "publications", "rec-1").Return(nil)

	err := uc.Delete(sessionCtx("maria@dept.edu", "faculty"), "publications", "rec-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordDelete_ForbiddenForNonOwner(t *testing.T) {
	repo := &mockRecordRepo{}
	uc := newTestRecordUsecase(repo, nil)

	existing := model.NewRecord("owner@dept.edu", map[string]interface{}{"title": "theirs"})
	existing.ID = "rec-1"
	repo.On("FindByID", mock.Anything, "publications", "rec-1").Return(existing, nil)

	err := uc.Delete(sessionCtx("other@dept.edu", "staff"), "publications", "rec-1")

	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
}
