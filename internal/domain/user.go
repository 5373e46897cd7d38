package domain

import "time"

// Account is an authentication identity held by the identity backend.
type Account struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the user document kept in the users collection.
type Profile struct {
	ID           string
	CollectionID string
	UserID       string
	FirstName    string
	MiddleName   string
	LastName     string
	Email        string
	Gender       string
	DateOfBirth  string
	Phone        string
	Service      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionUser copies the profile into the token claim set.
func (p *Profile) SessionUser() SessionUser {
	return SessionUser{
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
		RecordID:      p.ID,
		CollectionRef: p.CollectionID,
	}
}
