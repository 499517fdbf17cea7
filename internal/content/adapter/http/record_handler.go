package http

import (
	"encoding/json"

	"deptsite/internal/content/usecase"
	apperrors "deptsite/internal/shared/errors"
	"deptsite/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// RecordHTTPHandler serves the authenticated record routes. One handler
// covers every configured collection; the collection name is a path
// parameter.
type RecordHTTPHandler struct {
	usecase usecase.RecordUsecaseInterface
	log     logger.Logger
}

// NewRecordHTTPHandler creates the authenticated record handler.
func NewRecordHTTPHandler(uc usecase.RecordUsecaseInterface, log logger.Logger) *RecordHTTPHandler {
	return &RecordHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("record_handler"),
	}
}

// RegisterRoutes wires the CRUD routes onto an already-protected router
// group.
func (h *RecordHTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/:collection", h.List)
	router.Post("/:collection", h.Create)
	router.Get("/:collection/:recordId", h.Get)
	router.Put("/:collection/:recordId", h.Update)
	router.Delete("/:collection/:recordId", h.Delete)
}

// List returns one page of records, drafts included.
func (h *RecordHTTPHandler) List(c *fiber.Ctx) error {
	result, err := h.usecase.List(c.UserContext(), c.Params("collection"), queryValues(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Get returns a single record by id.
func (h *RecordHTTPHandler) Get(c *fiber.Ctx) error {
	record, err := h.usecase.Get(c.UserContext(), c.Params("collection"), c.Params("recordId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": record})
}

// Create persists a new record owned by the session identity.
func (h *RecordHTTPHandler) Create(c *fiber.Ctx) error {
	fields, err := parsePayload(c)
	if err != nil {
		return respondError(c, err)
	}

	record, err := h.usecase.Create(c.UserContext(), c.Params("collection"), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": record})
}

// Update applies a partial delta to an existing record.
func (h *RecordHTTPHandler) Update(c *fiber.Ctx) error {
	fields, err := parsePayload(c)
	if err != nil {
		return respondError(c, err)
	}

	record, err := h.usecase.Update(c.UserContext(), c.Params("collection"), c.Params("recordId"), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": record})
}

// Delete removes a record.
func (h *RecordHTTPHandler) Delete(c *fiber.Ctx) error {
	if err := h.usecase.Delete(c.UserContext(), c.Params("collection"), c.Params("recordId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "record deleted"})
}

// parsePayload decodes the request body into a flat field map.
func parsePayload(c *fiber.Ctx) (map[string]interface{}, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return nil, apperrors.NewValidationError("request body must be a JSON object").WithCause(err)
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return fields, nil
}
