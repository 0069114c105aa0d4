package doctor

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/geocoder89/hospitalhub/internal/domain/identity"
)

// Doctor belongs to exactly one department.
type Doctor struct {
	identity.Identity
	DepartmentID string `json:"departmentId"`
	// denormalized for listings, filled by the repo joins
	DepartmentName string `json:"departmentName,omitempty"`
}

var ErrNotFound = errors.New("doctor not found")

// Doctors are admin-provisioned, there is no self-service sign up for them.
type CreateRequest struct {
	FirstName    string `json:"firstName" binding:"required,min=1,max=50"`
	LastName     string `json:"lastName" binding:"required,min=1,max=50"`
	Email        string `json:"email" binding:"required,email,max=100"`
	PhoneNumber  string `json:"phoneNumber" binding:"required,min=5,max=20"`
	Gender       string `json:"gender" binding:"required,max=10"`
	Password     string `json:"password" binding:"required,min=8"`
	Bio          string `json:"bio" binding:"omitempty,max=2000"`
	DepartmentID string `json:"departmentId" binding:"required,uuid"`
}

func NewFromCreateRequest(req CreateRequest, passwordHash string) Doctor {
	now := time.Now().UTC()
	return Doctor{
		Identity: identity.Identity{
			ID:           uuid.NewString(),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        identity.NormalizeEmail(req.Email),
			PhoneNumber:  req.PhoneNumber,
			Gender:       req.Gender,
			Bio:          req.Bio,
			ImageFile:    identity.DefaultImage,
			PasswordHash: passwordHash,
			Role:         identity.RoleDoctor,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		DepartmentID: req.DepartmentID,
	}
}
