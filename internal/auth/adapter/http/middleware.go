package http

import (
	"strings"
	"time"

	"deptsite/internal/auth/domain/model"
	"deptsite/internal/auth/usecase"
	"deptsite/internal/shared/contextkeys"
	"deptsite/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.AuthUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// CORS middleware with credentials support for the admin SPA
func (m *AuthMiddleware) CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// RateLimiter creates rate limiting middleware for auth endpoints
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// ResolveSession validates the request's token, if any, and returns the
// session. A nil session means the request is anonymous; an invalid token is
// treated the same as no token.
func (m *AuthMiddleware) ResolveSession(c *fiber.Ctx) *model.Session {
	token, err := m.extractToken(c)
	if err != nil || token == "" {
		return nil
	}

	claims, err := m.usecase.ValidateToken(c.Context(), token)
	if err != nil {
		return nil
	}

	return claims.Session()
}

// Protect returns middleware that requires a valid session
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		m.injectSession(c, claims.Session())
		return c.Next()
	}
}

// RequireRole returns middleware that requires one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		allowed := false
		for _, role := range roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		m.injectSession(c, claims.Session())
		return c.Next()
	}
}

// OptionalAuth middleware that resolves the session when present but never
// rejects the request
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session := m.ResolveSession(c); session != nil {
			m.injectSession(c, session)
		}
		return c.Next()
	}
}

// injectSession stores the session on both the fiber locals and the user
// context so that handlers and downstream usecases can read it.
func (m *AuthMiddleware) injectSession(c *fiber.Ctx, session *model.Session) {
	c.Locals("session", session)

	ctx := c.UserContext()
	ctx = utils.WithUserID(ctx, session.UserID)
	ctx = utils.WithUserEmail(ctx, session.Email)
	ctx = utils.WithUserRole(ctx, string(session.Role))
	c.SetUserContext(ctx)
}

// extractToken extracts the token from Authorization header or cookie
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}

	if token := c.Cookies(m.cookieName); token != "" {
		return token, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "No authentication token found")
}

// SessionFromCtx returns the session injected by Protect/OptionalAuth.
func SessionFromCtx(c *fiber.Ctx) (*model.Session, bool) {
	session, ok := c.Locals("session").(*model.Session)
	return session, ok && session != nil
}
