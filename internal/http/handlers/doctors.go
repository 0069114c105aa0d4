package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/cache"
	"github.com/geocoder89/hospitalhub/internal/domain/department"
	"github.com/geocoder89/hospitalhub/internal/domain/doctor"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/security"
)

const doctorsDirectoryCacheKey = "doctors:directory:v1"

type DoctorStore interface {
	Create(ctx context.Context, d doctor.Doctor) error
	List(ctx context.Context) ([]doctor.Doctor, error)
}

// DepartmentGetter resolves a department before a doctor is attached to it.
type DepartmentGetter interface {
	GetByID(ctx context.Context, id string) (department.Department, error)
}

type DoctorsHandler struct {
	doctors     DoctorStore
	departments DepartmentGetter
	cache       *cache.Cache
}

func NewDoctorsHandler(doctors DoctorStore, departments DepartmentGetter, directoryCache *cache.Cache) *DoctorsHandler {
	return &DoctorsHandler{
		doctors:     doctors,
		departments: departments,
		cache:       directoryCache,
	}
}

// Create provisions a doctor account. Admin only; doctors never self-register.
func (h *DoctorsHandler) Create(ctx *gin.Context) {
	var req doctor.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// Resolve the department up front so a bad id fails before the identity
	// row is written. The FK mapping in the store stays as the backstop for
	// a department deleted between this check and the insert.
	if _, err := h.departments.GetByID(ctx.Request.Context(), req.DepartmentID); err != nil {
		if errors.Is(err, department.ErrNotFound) {
			RespondNotFound(ctx, "Department not found.")
			return
		}

		slog.Error("doctor_create_failed", "error", err)
		RespondInternal(ctx, "Could not create doctor")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	d := doctor.NewFromCreateRequest(req, hash)

	err = h.doctors.Create(ctx.Request.Context(), d)

	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateEmail):
			RespondConflict(ctx, "email_taken", "Email is already registered for this account type.")
		case errors.Is(err, department.ErrNotFound):
			RespondNotFound(ctx, "Department not found.")
		default:
			slog.Error("doctor_create_failed", "error", err)
			RespondInternal(ctx, "Could not create doctor")
		}
		return
	}

	if h.cache != nil {
		h.cache.Delete(doctorsDirectoryCacheKey)
	}

	ctx.JSON(http.StatusCreated, gin.H{"doctor": d})
}

// List is the admin view and includes contact details.
func (h *DoctorsHandler) List(ctx *gin.Context) {
	doctors, err := h.doctors.List(ctx.Request.Context())

	if err != nil {
		slog.Error("doctor_list_failed", "error", err)
		RespondInternal(ctx, "Could not load doctors")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

// DirectoryEntry is what the public booking page sees: no email, no phone.
type DirectoryEntry struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Bio            string `json:"bio,omitempty"`
	ImageFile      string `json:"imageFile"`
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
}

// Directory serves the public doctor listing behind a short TTL cache and an
// ETag so repeat visitors mostly get 304s.
func (h *DoctorsHandler) Directory(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(doctorsDirectoryCacheKey); ok {
			if entries, ok := cached.([]DirectoryEntry); ok {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{"doctors": entries})
				return
			}
		}
	}

	doctors, err := h.doctors.List(ctx.Request.Context())

	if err != nil {
		slog.Error("doctor_list_failed", "error", err)
		RespondInternal(ctx, "Could not load doctors")
		return
	}

	entries := make([]DirectoryEntry, 0, len(doctors))

	for _, d := range doctors {
		entries = append(entries, DirectoryEntry{
			ID:             d.ID,
			FirstName:      d.FirstName,
			LastName:       d.LastName,
			Bio:            d.Bio,
			ImageFile:      d.ImageFile,
			DepartmentID:   d.DepartmentID,
			DepartmentName: d.DepartmentName,
		})
	}

	if h.cache != nil {
		h.cache.Set(doctorsDirectoryCacheKey, entries)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"doctors": entries})
}
