package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/api/dto"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
)

// PageHandler serves the data context of pages. It runs behind the page gate, so the
// caller is already allowed on the path.
type PageHandler struct{}

// NewPageHandler constructs handler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Render returns {page, user}; user is null for anonymous visitors.
func (h *PageHandler) Render(c *fiber.Ctx) error {
	ctx := dto.PageContext{Page: c.Path()}
	if claims, ok := auth.ClaimsFromContext(c); ok {
		user := claims.SessionUser
		ctx.User = &user
	}
	return c.JSON(ctx)
}
