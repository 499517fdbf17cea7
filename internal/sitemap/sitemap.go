package sitemap

import (
	"context"

	contentconfig "deptsite/internal/content/config"
	"deptsite/internal/content/domain/repository"
	"deptsite/internal/sitemap/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SitemapModule serves /sitemap.xml for the public site.
type SitemapModule struct {
	cfg       *config.Config
	generator *Generator
	log       *zap.Logger
}

// NewSitemapModule wires the sitemap module over the content store.
func NewSitemapModule(cfg *config.Config, registry *contentconfig.Registry, repo repository.RecordRepository, log *zap.Logger) *SitemapModule {
	return &SitemapModule{
		cfg:       cfg,
		generator: NewGenerator(cfg, registry, repo, log),
		log:       log.Named("sitemap_module"),
	}
}

// RegisterRoutes mounts the sitemap route.
func (sm *SitemapModule) RegisterRoutes(router fiber.Router) {
	router.Get("/sitemap.xml", sm.Serve)
}

// Serve builds and returns the sitemap. The build runs under a deadline so a
// slow store degrades to an error rather than a hung request.
func (sm *SitemapModule) Serve(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), sm.cfg.BuildTimeout)
	defer cancel()

	out, err := sm.generator.Build(ctx)
	if err != nil {
		sm.log.Error("sitemap build failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("sitemap unavailable")
	}

	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Send(out)
}

// Stop performs cleanup when the module is shut down.
func (sm *SitemapModule) Stop() error {
	return nil
}
