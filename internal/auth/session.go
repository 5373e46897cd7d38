package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionResolver turns the session cookie into claims. It is the only place that reads
// the cookie; the page gate, the API guards and the navigation endpoint all use it.
type SessionResolver struct {
	tokens     *TokenManager
	cookieName string
	logger     *zap.Logger
}

// NewSessionResolver constructs a resolver reading the named cookie.
func NewSessionResolver(tokens *TokenManager, cookieName string, logger *zap.Logger) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{tokens: tokens, cookieName: cookieName, logger: logger}
}

// CookieName returns the session cookie key.
func (r *SessionResolver) CookieName() string {
	return r.cookieName
}

// Resolve verifies a raw token. Every failure, including a panic while decoding, yields
// nil so that callers treat the request as unauthenticated.
func (r *SessionResolver) Resolve(token string) (claims *Claims) {
	if token == "" {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("session resolution panicked", zap.Any("panic", rec))
			claims = nil
		}
	}()
	return r.tokens.Verify(token)
}

// ResolveRequest resolves the session cookie of the request. A cookie that fails
// verification is expired on the response so the browser stops sending it.
func (r *SessionResolver) ResolveRequest(c *fiber.Ctx) *Claims {
	token := c.Cookies(r.cookieName)
	if token == "" {
		return nil
	}
	claims := r.Resolve(token)
	if claims == nil {
		r.ClearCookie(c)
	}
	return claims
}

// SetCookie stores the token as an HTTP-only, strict same-site, secure cookie.
func (r *SessionResolver) SetCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     r.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie.
func (r *SessionResolver) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     r.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
