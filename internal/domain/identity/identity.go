package identity

import (
	"errors"
	"strings"
	"time"
)

// Role discriminates what an identity may do. Stored as a plain string column.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Identity is the common user shape shared by patients, doctors and admins.
// Kind-specific attributes live on the patient/doctor records that embed it.
type Identity struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	Gender       string    `json:"gender"`
	Bio          string    `json:"bio,omitempty"`
	ImageFile    string    `json:"imageFile"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultImage is stored when registration comes without an upload.
const DefaultImage = "default.png"

var (
	ErrNotFound       = errors.New("identity not found")
	ErrDuplicateEmail = errors.New("email already in use for this role")
)

// NormalizeEmail canonicalizes an address. Every path that stores or looks up
// an email goes through this, so "Jane@Example.com" at registration matches
// "jane@example.com" at login.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// UpdateProfileRequest covers the only mutable profile fields.
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName" binding:"required,min=1,max=50"`
	LastName    string `json:"lastName" binding:"required,min=1,max=50"`
	Email       string `json:"email" binding:"required,email,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"required,min=5,max=20"`
	Bio         string `json:"bio" binding:"omitempty,max=2000"`
}
