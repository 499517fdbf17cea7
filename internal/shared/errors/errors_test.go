package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorTaxonomyStatuses(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		check  func(error) bool
	}{
		{NewValidationError("bad"), http.StatusUnprocessableEntity, IsValidation},
		{NewUnauthorizedError("who"), http.StatusUnauthorized, IsUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden, IsForbidden},
		{NewNotFoundError("record"), http.StatusNotFound, IsNotFound},
		{NewConflictError("dup"), http.StatusConflict, IsConflict},
		{NewInternalError("boom"), http.StatusInternalServerError, nil},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPCode)
		assert.Equal(t, tc.status, HTTPStatus(tc.err))
		if tc.check != nil {
			assert.True(t, tc.check(tc.err))
		}
	}
}

func TestSentinelClassification(t *testing.T) {
	assert.True(t, IsNotFound(ErrRecordNotFound))
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.True(t, IsForbidden(ErrNotRecordOwner))
	assert.True(t, IsConflict(ErrDuplicateRecord))
	assert.True(t, IsUnauthorized(ErrInvalidToken))
	assert.True(t, IsValidation(ErrInvalidInput))
	assert.True(t, IsValidation(ErrMissingRecordID))
	assert.True(t, IsValidation(ErrInvalidRecordID))

	assert.False(t, IsNotFound(ErrForbidden))
	assert.False(t, IsForbidden(ErrRecordNotFound))
	assert.False(t, IsValidation(ErrRecordNotFound))
}

func TestRequestShapeSentinelsResolveToUnprocessable(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrMissingRecordID))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(fmt.Errorf("updating: %w", ErrMissingRecordID)))
}

func TestWrappedSentinelsKeepClassification(t *testing.T) {
	wrapped := fmt.Errorf("loading record: %w", ErrRecordNotFound)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestHTTPStatusDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("disk on fire")))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	appErr := NewInternalError("wrapped").WithCause(cause)
	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "root cause")
}

func TestValidationErrorsAggregation(t *testing.T) {
	ve := NewValidationErrors()
	assert.False(t, ve.HasErrors())
	assert.Nil(t, ve.ToAppError())

	ve.Add("title", "is required", nil)
	ve.Add("year", "must be a number", "abc")
	assert.True(t, ve.HasErrors())

	appErr := ve.ToAppError()
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPCode)
	assert.Len(t, appErr.Details["validation_errors"], 2)
}

func TestWrapErrorPassesClassifiedThrough(t *testing.T) {
	orig := NewNotFoundError("record")
	wrapped := WrapError(orig, "ignored")
	assert.Equal(t, orig, wrapped)

	plain := WrapError(fmt.Errorf("oops"), "query failed")
	assert.Equal(t, ErrorTypeInternal, plain.Type)
	assert.Equal(t, "query failed", plain.Message)
}
