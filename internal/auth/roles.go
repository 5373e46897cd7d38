package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// RequireRole ensures the session carries one of the allowed roles. It must run after
// AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewAuthError("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[claims.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff allows moderators and admins.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleMod, domain.RoleAdmin)
}

// IsPrivileged reports whether the request session may see unpublished content.
func IsPrivileged(c *fiber.Ctx) bool {
	claims, ok := ClaimsFromContext(c)
	return ok && claims.Role.Privileged()
}
