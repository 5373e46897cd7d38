package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/observability"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

const claimsKey = "auth_claims"

// AuthMiddleware attaches resolved sessions to requests and enforces access rules.
type AuthMiddleware struct {
	resolver *SessionResolver
	metrics  *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *SessionResolver, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, metrics: metrics}
}

// Resolver exposes the session resolver used by the middleware.
func (m *AuthMiddleware) Resolver() *SessionResolver {
	return m.resolver
}

// Gate runs the routing decision for page navigations. It always produces a decision:
// resolution problems fall back to the unauthenticated state.
func (m *AuthMiddleware) Gate(c *fiber.Ctx) error {
	claims := m.resolver.ResolveRequest(c)
	if claims != nil {
		c.Locals(claimsKey, claims)
	}

	class := Classify(c.Path())
	decision := Decide(StateOf(claims), class, c.OriginalURL())
	m.metrics.RecordGateDecision(string(class), decision.Allow)
	if !decision.Allow {
		return c.Redirect(decision.Redirect, http.StatusFound)
	}
	return c.Next()
}

// Handle enforces an authenticated session for API routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	claims := m.resolver.ResolveRequest(c)
	if claims == nil {
		return apperrors.NewAuthError("authentication required")
	}
	c.Locals(claimsKey, claims)
	return c.Next()
}

// Optional attaches the session when one is present and never rejects.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if claims := m.resolver.ResolveRequest(c); claims != nil {
		c.Locals(claimsKey, claims)
	}
	return c.Next()
}

// ClaimsFromContext retrieves the session attached by the middleware.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
