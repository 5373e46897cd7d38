package domain

import "time"

// Role is the access role stored on a profile document. The empty role is valid and means
// no role has been assigned yet.
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleMod     Role = "mod"
	RoleAdmin   Role = "admin"
)

// Known reports whether r is one of the assignable roles.
func (r Role) Known() bool {
	switch r {
	case RoleStudent, RoleMod, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether r may see unpublished content and manage resources.
func (r Role) Privileged() bool {
	return r == RoleMod || r == RoleAdmin
}

// SessionUser is the profile snapshot embedded in a session token at login. It is not
// refreshed for the token's lifetime.
type SessionUser struct {
	UserID        string `json:"userId"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Gender        string `json:"gender,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Service       string `json:"service,omitempty"`
	Role          Role   `json:"role,omitempty"`
	RecordID      string `json:"recordId"`
	CollectionRef string `json:"collectionRef"`
}

// BackendSession is a session held by the identity backend.
type BackendSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccountTokenKind differentiates one-time secrets.
type AccountTokenKind string

const (
	AccountTokenVerification AccountTokenKind = "verification"
	AccountTokenRecovery     AccountTokenKind = "recovery"
)

// AccountToken is a one-time secret mailed to the account owner.
type AccountToken struct {
	ID        string
	AccountID string
	Kind      AccountTokenKind
	Secret    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
