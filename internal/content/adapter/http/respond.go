package http

import (
	"net/url"

	apperrors "deptsite/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// queryValues copies the request's query parameters into url.Values for the
// collection-config driven parser.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, val []byte) {
		values.Add(string(key), string(val))
	})
	return values
}

// respondError maps any error onto the stable taxonomy and serializes it.
// Internal causes never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	appErr := toAppError(err)
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{"error": appErr})
}

func toAppError(err error) *apperrors.AppError {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr
	}
	if ve, ok := err.(*apperrors.ValidationErrors); ok {
		return ve.ToAppError()
	}
	switch {
	case apperrors.IsNotFound(err):
		return apperrors.NewNotFoundError("record").WithCause(err)
	case apperrors.IsValidation(err):
		return apperrors.NewValidationError(err.Error())
	case apperrors.IsUnauthorized(err):
		return apperrors.NewUnauthorizedError("authentication required").WithCause(err)
	case apperrors.IsForbidden(err):
		return apperrors.NewForbiddenError("insufficient permissions").WithCause(err)
	case apperrors.IsConflict(err):
		return apperrors.NewConflictError("resource conflict").WithCause(err)
	default:
		return apperrors.NewInternalError("internal server error").WithCause(err)
	}
}
