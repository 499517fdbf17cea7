package content

import (
	"context"
	"encoding/json"
	"fmt"

	authhttp "deptsite/internal/auth/adapter/http"
	contenthttp "deptsite/internal/content/adapter/http"
	"deptsite/internal/content/adapter/persistence/mongodb"
	"deptsite/internal/content/adapter/persistence/rediscache"
	"deptsite/internal/content/config"
	"deptsite/internal/content/domain/model"
	"deptsite/internal/content/domain/repository"
	"deptsite/internal/content/usecase"
	"deptsite/internal/shared/eventbus"
	"deptsite/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContentModule bundles the record surfaces: the authenticated CRUD routes
// under the activity portal and the anonymous read routes for the public
// site.
type ContentModule struct {
	registry      *config.Registry
	repo          *mongodb.MongoRecordRepository
	facets        *rediscache.FacetCache
	recordUsecase usecase.RecordUsecaseInterface
	publicUsecase usecase.PublicUsecaseInterface
	recordHandler *contenthttp.RecordHTTPHandler
	publicHandler *contenthttp.PublicHTTPHandler
	bus           eventbus.EventBusInterface
	log           logger.Logger
}

// NewContentModule wires the content module over shared infrastructure. The
// redis client may be nil; facet values then always come from the store.
func NewContentModule(db *mongo.Database, redisClient *redis.Client, bus eventbus.EventBusInterface, log logger.Logger) *ContentModule {
	registry := config.DefaultRegistry()
	repo := mongodb.NewMongoRecordRepository(db, log)

	var facets *rediscache.FacetCache
	var facetCache usecase.FacetCache
	if redisClient != nil {
		facets = rediscache.NewFacetCache(redisClient, rediscache.DefaultFacetTTL, log)
		facetCache = facets
	}

	cm := &ContentModule{
		registry:      registry,
		repo:          repo,
		facets:        facets,
		recordUsecase: usecase.NewRecordUsecase(registry, repo, bus, log),
		publicUsecase: usecase.NewPublicUsecase(registry, repo, facetCache, log),
		bus:           bus,
		log:           log.WithComponent("content_module"),
	}
	cm.recordHandler = contenthttp.NewRecordHTTPHandler(cm.recordUsecase, log)
	cm.publicHandler = contenthttp.NewPublicHTTPHandler(cm.publicUsecase, log)

	if bus != nil && facets != nil {
		bus.Subscribe(model.EventRecordChanged, cm.invalidateFacets)
	}
	return cm
}

// EnsureIndexes creates the store indexes for every configured collection.
func (cm *ContentModule) EnsureIndexes(ctx context.Context) error {
	for _, name := range cm.registry.Names() {
		cfg, err := cm.registry.Get(name)
		if err != nil {
			return err
		}
		if err := cm.repo.EnsureIndexes(ctx, cfg); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
	}
	return nil
}

// RegisterRoutes mounts the authenticated routes under
// /api/activity-portal and the anonymous routes under /api/public.
func (cm *ContentModule) RegisterRoutes(router fiber.Router, authMW *authhttp.AuthMiddleware) {
	portal := router.Group("/api/activity-portal", authMW.Protect())
	cm.recordHandler.RegisterRoutes(portal)

	public := router.Group("/api/public")
	cm.publicHandler.RegisterRoutes(public)
}

// GetRegistry exposes the collection registry to other modules (sitemap).
func (cm *ContentModule) GetRegistry() *config.Registry {
	return cm.registry
}

// GetRecordRepository exposes the record store to other modules.
func (cm *ContentModule) GetRecordRepository() repository.RecordRepository {
	return cm.repo
}

// GetPublicUsecase exposes the public read surface to other modules.
func (cm *ContentModule) GetPublicUsecase() usecase.PublicUsecaseInterface {
	return cm.publicUsecase
}

// Stop performs cleanup when the module is shut down.
func (cm *ContentModule) Stop() error {
	if cm.bus != nil {
		cm.bus.Unsubscribe(model.EventRecordChanged)
	}
	return nil
}

// invalidateFacets drops cached facet values for the changed collection.
// Event data arrives either as the typed payload or as decoded JSON when it
// crossed a serialization boundary.
func (cm *ContentModule) invalidateFacets(ctx context.Context, event eventbus.Event) error {
	var change model.RecordChange
	switch data := event.Data().(type) {
	case model.RecordChange:
		change = data
	case *model.RecordChange:
		change = *data
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &change); err != nil {
			return err
		}
	}
	if change.Collection == "" {
		return nil
	}

	cm.facets.Invalidate(ctx, change.Collection)
	cm.log.Debugf("facet cache invalidated for %s after %s", change.Collection, change.Action)
	return nil
}
