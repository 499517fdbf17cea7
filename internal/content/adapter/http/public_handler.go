package http

import (
	"deptsite/internal/content/usecase"
	"deptsite/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// PublicHTTPHandler serves the anonymous read routes over published records.
type PublicHTTPHandler struct {
	usecase usecase.PublicUsecaseInterface
	log     logger.Logger
}

// NewPublicHTTPHandler creates the public read handler.
func NewPublicHTTPHandler(uc usecase.PublicUsecaseInterface, log logger.Logger) *PublicHTTPHandler {
	return &PublicHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("public_handler"),
	}
}

// RegisterRoutes wires the public read routes. No authentication middleware
// sits in front of these.
func (h *PublicHTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/:collection", h.List)
	router.Get("/:collection/:recordId", h.Get)
}

// List returns one page of published records plus facet values for filter
// dropdowns.
func (h *PublicHTTPHandler) List(c *fiber.Ctx) error {
	result, err := h.usecase.List(c.UserContext(), c.Params("collection"), queryValues(c))
	if err != nil {
		return h.respondPublicError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result.Records,
		"filters":    result.Facets,
		"pagination": result.Pagination,
	})
}

// Get returns a single published record.
func (h *PublicHTTPHandler) Get(c *fiber.Ctx) error {
	record, err := h.usecase.GetByID(c.UserContext(), c.Params("collection"), c.Params("recordId"))
	if err != nil {
		return h.respondPublicError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// respondPublicError uses the simpler success/error envelope the public site
// consumes.
func (h *PublicHTTPHandler) respondPublicError(c *fiber.Ctx, err error) error {
	appErr := toAppError(err)
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"success": false,
		"error":   appErr.Message,
	})
}
