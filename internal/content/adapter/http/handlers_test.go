package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"deptsite/internal/content/domain/model"
	"deptsite/internal/content/usecase"
	apperrors "deptsite/internal/shared/errors"
	"deptsite/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecordUsecase returns canned results, capturing the inputs it was
// called with.
type stubRecordUsecase struct {
	listResult *usecase.ListResult
	record     *model.Record
	err        error

	gotCollection string
	gotFields     map[string]interface{}
	gotParams     url.Values
}

func (s *stubRecordUsecase) List(ctx context.Context, collection string, params url.Values) (*usecase.ListResult, error) {
	s.gotCollection = collection
	s.gotParams = params
	return s.listResult, s.err
}

func (s *stubRecordUsecase) Get(ctx context.Context, collection, id string) (*model.Record, error) {
	s.gotCollection = collection
	return s.record, s.err
}

func (s *stubRecordUsecase) Create(ctx context.Context, collection string, fields map[string]interface{}) (*model.Record, error) {
	s.gotCollection = collection
	s.gotFields = fields
	return s.record, s.err
}

func (s *stubRecordUsecase) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*model.Record, error) {
	s.gotFields = fields
	return s.record, s.err
}

func (s *stubRecordUsecase) Delete(ctx context.Context, collection, id string) error {
	return s.err
}

type stubPublicUsecase struct {
	listResult *usecase.PublicListResult
	record     *model.Record
	err        error
}

func (s *stubPublicUsecase) List(ctx context.Context, collection string, params url.Values) (*usecase.PublicListResult, error) {
	return s.listResult, s.err
}

func (s *stubPublicUsecase) GetByID(ctx context.Context, collection, id string) (*model.Record, error) {
	return s.record, s.err
}

func newRecordApp(stub *stubRecordUsecase) *fiber.App {
	app := fiber.New()
	handler := NewRecordHTTPHandler(stub, logger.NewLogger())
	handler.RegisterRoutes(app.Group("/api/activity-portal"))
	return app
}

func newPublicApp(stub *stubPublicUsecase) *fiber.App {
	app := fiber.New()
	handler := NewPublicHTTPHandler(stub, logger.NewLogger())
	handler.RegisterRoutes(app.Group("/api/public"))
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestRecordHandlerList_Envelope(t *testing.T) {
	record := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "Alpha paper"})
	record.ID = "rec-1"
	stub := &stubRecordUsecase{listResult: &usecase.ListResult{
		Records:    []*model.Record{record},
		Pagination: model.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1},
	}}
	app := newRecordApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/activity-portal/publications?page=1&limit=10", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	require.Contains(t, body, "data")
	require.Contains(t, body, "pagination")
	assert.Equal(t, "publications", stub.gotCollection)
	assert.Equal(t, "10", stub.gotParams.Get("limit"))
}

func TestRecordHandlerCreate_ParsesBodyAndReturns201(t *testing.T) {
	record := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "Alpha paper"})
	record.ID = "rec-1"
	stub := &stubRecordUsecase{record: record}
	app := newRecordApp(stub)

	req := httptest.NewRequest("POST", "/api/activity-portal/publications",
		strings.NewReader(`{"title": "Alpha paper", "published": true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Alpha paper", stub.gotFields["title"])
	assert.Equal(t, true, stub.gotFields["published"])
}

func TestRecordHandlerCreate_MalformedBody(t *testing.T) {
	app := newRecordApp(&stubRecordUsecase{})

	req := httptest.NewRequest("POST", "/api/activity-portal/publications",
		strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Contains(t, body, "error")
}

func TestRecordHandler_ErrorTaxonomyMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewUnauthorizedError("auth required"), fiber.StatusUnauthorized},
		{apperrors.NewForbiddenError("not yours"), fiber.StatusForbidden},
		{apperrors.ErrRecordNotFound, fiber.StatusNotFound},
		{apperrors.NewConflictError("dup"), fiber.StatusConflict},
		{apperrors.NewValidationError("bad"), fiber.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		app := newRecordApp(&stubRecordUsecase{err: tc.err})
		resp, err := app.Test(httptest.NewRequest("GET", "/api/activity-portal/publications/rec-1", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, "for %v", tc.err)
		body := decodeBody(t, resp.Body)
		resp.Body.Close()
		assert.Contains(t, body, "error")
	}
}

func TestRecordHandler_InternalCauseIsNotLeaked(t *testing.T) {
	cause := apperrors.NewInternalError("internal server error").
		WithCause(assert.AnError)
	app := newRecordApp(&stubRecordUsecase{err: cause})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/activity-portal/publications/rec-1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), assert.AnError.Error())
}

func TestPublicHandlerList_Envelope(t *testing.T) {
	record := model.NewRecord("maria@dept.edu", map[string]interface{}{"title": "Alpha paper"})
	record.ID = "rec-1"
	record.Published = true
	stub := &stubPublicUsecase{listResult: &usecase.PublicListResult{
		Records:    []*model.Record{record},
		Facets:     map[string][]string{"publicationType": {"conference", "journal"}},
		Pagination: model.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1},
	}}
	app := newPublicApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/public/publications", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	require.Contains(t, body, "data")
	require.Contains(t, body, "filters")
	require.Contains(t, body, "pagination")

	filters := body["filters"].(map[string]interface{})
	assert.Len(t, filters["publicationType"], 2)
}

func TestPublicHandlerGet_NotFoundEnvelope(t *testing.T) {
	app := newPublicApp(&stubPublicUsecase{err: apperrors.ErrRecordNotFound})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/public/publications/ghost", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}
