package gateway

import (
	"strings"

	authhttp "deptsite/internal/auth/adapter/http"
	"deptsite/internal/auth/domain/model"
	"deptsite/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// SectionPolicy gates one site section by path prefix. Matching is
// segment-aware: /reports matches /reports and /reports/monthly, never
// /reportsx.
type SectionPolicy struct {
	Prefix string
	Roles  []model.Role
}

// Allows reports whether the role may enter the section.
func (p SectionPolicy) Allows(role model.Role) bool {
	for _, allowed := range p.Roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// Config declares the guard's routing policy. The section table is
// configuration: adding a protected section means adding an entry, not code.
type Config struct {
	SignInPath    string
	DashboardPath string
	NotFoundPath  string

	// BypassPrefixes skip the guard entirely: the auth namespace handles its
	// own tokens and the API surfaces enforce their own authentication.
	BypassPrefixes []string

	Sections []SectionPolicy
}

// DefaultConfig returns the site's standard section policy.
func DefaultConfig() Config {
	return Config{
		SignInPath:    "/sign-in",
		DashboardPath: "/dashboard",
		NotFoundPath:  "/not-found",
		BypassPrefixes: []string{
			"/auth",
			"/api",
			"/sitemap.xml",
		},
		Sections: []SectionPolicy{
			{Prefix: "/activity-portal", Roles: []model.Role{model.RoleAdmin, model.RoleFaculty, model.RoleStaff}},
			{Prefix: "/website-updates", Roles: []model.Role{model.RoleAdmin, model.RoleStaff}},
			{Prefix: "/asset-management", Roles: []model.Role{model.RoleAdmin, model.RoleFaculty, model.RoleStaff}},
			{Prefix: "/reports", Roles: []model.Role{model.RoleAdmin}},
		},
	}
}

// RouteGuard decides, per navigation request, whether to pass, redirect to
// sign-in, redirect to the dashboard, or hide a section behind the not-found
// page.
type RouteGuard struct {
	auth *authhttp.AuthMiddleware
	cfg  Config
	log  logger.Logger
}

// NewRouteGuard creates the guard over the auth middleware's session
// resolution.
func NewRouteGuard(auth *authhttp.AuthMiddleware, cfg Config, log logger.Logger) *RouteGuard {
	return &RouteGuard{
		auth: auth,
		cfg:  cfg,
		log:  log.WithComponent("route_guard"),
	}
}

// Handler returns the guard as Fiber middleware. Rules apply in a fixed
// order; the first matching rule wins.
func (g *RouteGuard) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		for _, prefix := range g.cfg.BypassPrefixes {
			if matchesPrefix(path, prefix) {
				return c.Next()
			}
		}

		session := g.auth.ResolveSession(c)

		if path == "/" {
			if session != nil {
				return c.Redirect(g.cfg.DashboardPath, fiber.StatusFound)
			}
			return c.Next()
		}

		if session == nil {
			if path == g.cfg.SignInPath {
				return c.Next()
			}
			return c.Redirect(g.cfg.SignInPath, fiber.StatusFound)
		}

		if path == g.cfg.SignInPath {
			return c.Redirect(g.cfg.DashboardPath, fiber.StatusFound)
		}

		for _, section := range g.cfg.Sections {
			if !matchesPrefix(path, section.Prefix) {
				continue
			}
			if !section.Allows(session.Role) {
				// Same response as a missing route: the redirect must not
				// reveal that the section exists.
				g.log.Debugf("role %s denied for %s", session.Role, path)
				return c.Redirect(g.cfg.NotFoundPath, fiber.StatusFound)
			}
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Next()
		}

		return c.Next()
	}
}

// matchesPrefix reports whether the path equals the prefix or sits under it
// as a whole path segment.
func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
