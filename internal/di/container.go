package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"deptsite/internal/auth"
	authconfig "deptsite/internal/auth/config"
	"deptsite/internal/content"
	"deptsite/internal/gateway"
	"deptsite/internal/shared/eventbus"
	"deptsite/internal/shared/logger"
	"deptsite/internal/sitemap"
	sitemapconfig "deptsite/internal/sitemap/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container is the dependency injection container with lifecycle management.
// Modules are initialized in dependency order and shut down in reverse.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)

	// Module instances
	AuthModule    *auth.AuthModule
	ContentModule *content.ContentModule
	SitemapModule *sitemap.SitemapModule
	RouteGuard    *gateway.RouteGuard

	// Shared infrastructure
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	EventBus    *eventbus.EventBus

	// Configuration
	AuthConfig *authconfig.Config

	Logger    logger.Logger
	ZapLogger *zap.Logger
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
		Logger:    log,
	}
}

// InitializeAuth initializes the authentication module.
func (c *Container) InitializeAuth(mongoDB *mongo.Database, cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.AuthConfig = cfg

	authModule, err := auth.NewAuthModule(mongoDB, cfg)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule
	return nil
}

// InitializeRedis connects the shared redis client. An empty address leaves
// redis disabled; dependent features fall back to the document store.
func (c *Container) InitializeRedis(ctx context.Context, addr, password string, db int) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	c.mu.Lock()
	c.RedisClient = client
	c.mu.Unlock()
	return nil
}

// InitializeContent initializes the content module and its event wiring.
func (c *Container) InitializeContent(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return fmt.Errorf("mongodb must be initialized before the content module")
	}

	c.EventBus = eventbus.NewEventBus(c.Logger)
	c.ContentModule = content.NewContentModule(c.MongoDB, c.RedisClient, c.EventBus, c.Logger)

	if err := c.ContentModule.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure content indexes: %w", err)
	}
	return nil
}

// InitializeSitemap initializes the sitemap module over the content store.
func (c *Container) InitializeSitemap(repoSource *content.ContentModule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil || repoSource == nil {
		return fmt.Errorf("content module must be initialized before the sitemap module")
	}

	cfg, err := sitemapconfig.LoadConfig()
	if err != nil {
		return err
	}

	if c.ZapLogger == nil {
		zl, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create zap logger: %w", err)
		}
		c.ZapLogger = zl
	}

	// The sitemap reads the same record store the content module writes.
	c.SitemapModule = sitemap.NewSitemapModule(cfg, repoSource.GetRegistry(), repoSource.GetRecordRepository(), c.ZapLogger)
	return nil
}

// InitializeGateway initializes the route guard over the auth middleware.
func (c *Container) InitializeGateway() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before the gateway")
	}
	c.RouteGuard = gateway.NewRouteGuard(c.AuthModule.GetMiddleware(), gateway.DefaultConfig(), c.Logger)
	return nil
}

// Register registers a service instance for later resolution.
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	c.services[serviceType] = service
	return nil
}

// Resolve resolves a service by type, consulting factories on miss.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()
	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}
	factory, exists := c.factories[serviceType]
	c.mu.RUnlock()

	if exists {
		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}
		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()
		return service, nil
	}

	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services.
func GetService[T any](c *Container) (T, error) {
	var zero T
	service, err := c.Resolve(reflect.TypeOf(zero))
	if err != nil {
		return zero, err
	}
	if typed, ok := service.(T); ok {
		return typed, nil
	}
	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetAuthModule returns the auth module instance.
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetContentModule returns the content module instance.
func (c *Container) GetContentModule() *content.ContentModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ContentModule
}

// GetSitemapModule returns the sitemap module instance.
func (c *Container) GetSitemapModule() *sitemap.SitemapModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SitemapModule
}

// GetRouteGuard returns the route guard instance.
func (c *Container) GetRouteGuard() *gateway.RouteGuard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RouteGuard
}

// HealthCheck pings every connected backing store.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb health check failed: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup shuts modules down in reverse initialization order and closes the
// shared clients.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.SitemapModule != nil {
		if err := c.SitemapModule.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.SitemapModule = nil
	}
	if c.ContentModule != nil {
		if err := c.ContentModule.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.ContentModule = nil
	}
	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.AuthModule = nil
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.RedisClient = nil
	}
	if c.ZapLogger != nil {
		_ = c.ZapLogger.Sync()
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup finished with %d error(s), first: %w", len(errs), errs[0])
	}
	return nil
}

// Close is Cleanup with a background context, for use in defers.
func (c *Container) Close() error {
	return c.Cleanup(context.Background())
}
