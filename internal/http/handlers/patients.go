package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/domain/patient"
	"github.com/geocoder89/hospitalhub/internal/security"
)

type PatientStore interface {
	Create(ctx context.Context, p patient.Patient) error
	List(ctx context.Context) ([]patient.Patient, error)
}

type PatientsHandler struct {
	patients PatientStore
}

func NewPatientsHandler(patients PatientStore) *PatientsHandler {
	return &PatientsHandler{patients: patients}
}

// Create is the admin-side intake: same shape as self-registration but no
// session is started for the new account.
func (h *PatientsHandler) Create(ctx *gin.Context) {
	var req patient.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	p := patient.NewFromRegisterRequest(req, hash)

	err = h.patients.Create(ctx.Request.Context(), p)

	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			RespondConflict(ctx, "email_taken", "Email is already registered for this account type.")
			return
		}

		slog.Error("patient_create_failed", "error", err)
		RespondInternal(ctx, "Could not create patient")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"patient": p})
}

func (h *PatientsHandler) List(ctx *gin.Context) {
	patients, err := h.patients.List(ctx.Request.Context())

	if err != nil {
		slog.Error("patient_list_failed", "error", err)
		RespondInternal(ctx, "Could not load patients")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"patients": patients})
}
