package patient

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/geocoder89/hospitalhub/internal/domain/identity"
)

// Patient is an identity plus the clinical attributes the intake form collects.
type Patient struct {
	identity.Identity
	Age          int     `json:"age"`
	HealthStatus string  `json:"healthStatus"`
	BloodGroup   string  `json:"bloodGroup"`
	Height       float64 `json:"height"`
	Weight       float64 `json:"weight"`
}

var ErrNotFound = errors.New("patient not found")

type RegisterRequest struct {
	FirstName    string  `json:"firstName" binding:"required,min=1,max=50"`
	LastName     string  `json:"lastName" binding:"required,min=1,max=50"`
	Email        string  `json:"email" binding:"required,email,max=100"`
	PhoneNumber  string  `json:"phoneNumber" binding:"required,min=5,max=20"`
	Gender       string  `json:"gender" binding:"required,max=10"`
	Password     string  `json:"password" binding:"required,min=8"`
	Age          int     `json:"age" binding:"required,min=0,max=150"`
	HealthStatus string  `json:"healthStatus" binding:"required,max=50"`
	BloodGroup   string  `json:"bloodGroup" binding:"required,max=3"`
	Height       float64 `json:"height" binding:"required,gt=0"`
	Weight       float64 `json:"weight" binding:"required,gt=0"`
}

// A factory to build a Patient from the incoming DTO. The password hash is
// supplied by the caller, raw passwords never reach the domain type.
func NewFromRegisterRequest(req RegisterRequest, passwordHash string) Patient {
	now := time.Now().UTC()
	return Patient{
		Identity: identity.Identity{
			ID:           uuid.NewString(),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        identity.NormalizeEmail(req.Email),
			PhoneNumber:  req.PhoneNumber,
			Gender:       req.Gender,
			ImageFile:    identity.DefaultImage,
			PasswordHash: passwordHash,
			Role:         identity.RolePatient,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Age:          req.Age,
		HealthStatus: req.HealthStatus,
		BloodGroup:   req.BloodGroup,
		Height:       req.Height,
		Weight:       req.Weight,
	}
}
