package dto

import (
	"time"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// RegisterRequest payload for sign-up.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Service     string `json:"service"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after the session cookie has been set.
type LoginResponse struct {
	User      domain.SessionUser `json:"user"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// SecretRequest confirms an emailed verification secret.
type SecretRequest struct {
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// RecoveryRequest starts password recovery.
type RecoveryRequest struct {
	Email string `json:"email"`
}

// RecoveryConfirmRequest sets a new password.
type RecoveryConfirmRequest struct {
	UserID   string `json:"userId"`
	Secret   string `json:"secret"`
	Password string `json:"password"`
}

// ProfileResponse is the current profile of the caller.
type ProfileResponse struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	FirstName     string      `json:"firstName"`
	MiddleName    string      `json:"middleName,omitempty"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	Gender        string      `json:"gender,omitempty"`
	DateOfBirth   string      `json:"dateOfBirth,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Service       string      `json:"service,omitempty"`
	Role          domain.Role `json:"role"`
	EmailVerified bool        `json:"emailVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewProfileResponse maps a profile.
func NewProfileResponse(p *domain.Profile, verified bool) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		FirstName:     p.FirstName,
		MiddleName:    p.MiddleName,
		LastName:      p.LastName,
		Email:         p.Email,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Phone:         p.Phone,
		Service:       p.Service,
		Role:          p.Role,
		EmailVerified: verified,
		CreatedAt:     p.CreatedAt,
	}
}

// PageContext is the data behind a rendered page.
type PageContext struct {
	Page string              `json:"page"`
	User *domain.SessionUser `json:"user"`
}
