package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/api/dto"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// AuthHandler exposes the credential and session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	resolver *auth.SessionResolver
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, resolver *auth.SessionResolver) *AuthHandler {
	return &AuthHandler{auth: authService, resolver: resolver}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Service:     req.Service,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProfileResponse(profile, false))
}

// Login handles POST /api/auth/login and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.resolver.SetCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(dto.LoginResponse{User: result.User, ExpiresAt: result.ExpiresAt})
}

// Logout handles POST /api/auth/logout. The cookie is cleared first; a failed backend
// session delete is still reported.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	h.resolver.ClearCookie(c)
	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/auth/me; ?refresh=true bypasses the session cache.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	profile, err := h.auth.CurrentProfile(c.UserContext(), claims, c.QueryBool("refresh", false))
	if err != nil {
		return err
	}
	verified := h.auth.IsEmailVerified(c.UserContext(), claims.UserID)
	return c.JSON(dto.NewProfileResponse(profile, verified))
}

// Route handles GET /api/auth/route?path=..., the navigation guard for client-side
// transitions. It applies the same decision as the page gate.
func (h *AuthHandler) Route(c *fiber.Ctx) error {
	path := c.Query("path", "/")
	return c.JSON(auth.DecidePath(h.resolver.ResolveRequest(c), path))
}

// VerificationStatus handles GET /api/auth/verification.
func (h *AuthHandler) VerificationStatus(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	return c.JSON(fiber.Map{"verified": h.auth.IsEmailVerified(c.UserContext(), claims.UserID)})
}

// SendVerification handles POST /api/auth/verification.
func (h *AuthHandler) SendVerification(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	if err := h.auth.SendVerificationEmail(c.UserContext(), claims.UserID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// ConfirmVerification handles PUT /api/auth/verification.
func (h *AuthHandler) ConfirmVerification(c *fiber.Ctx) error {
	var req dto.SecretRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ConfirmVerification(c.UserContext(), req.UserID, req.Secret); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"verified": true})
}

// RequestRecovery handles POST /api/auth/recovery.
func (h *AuthHandler) RequestRecovery(c *fiber.Ctx) error {
	var req dto.RecoveryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.RequestRecovery(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// ConfirmRecovery handles PUT /api/auth/recovery.
func (h *AuthHandler) ConfirmRecovery(c *fiber.Ctx) error {
	var req dto.RecoveryConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ConfirmRecovery(c.UserContext(), req.UserID, req.Secret, req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
