package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/domain/doctor"
	"github.com/geocoder89/hospitalhub/internal/domain/patient"
	"github.com/geocoder89/hospitalhub/internal/domain/stats"
	"github.com/geocoder89/hospitalhub/internal/http/middlewares"
)

// topDepartmentsLimit is how many departments the admin dashboard ranks.
const topDepartmentsLimit = 4

type StatsReader interface {
	GenderCounts(ctx context.Context) (stats.GenderCounts, error)
	TopDepartments(ctx context.Context, limit int) ([]stats.DepartmentVolume, error)
	DoctorDailyHistogram(ctx context.Context, doctorID string) (map[string]int, error)
	Totals(ctx context.Context) (stats.Totals, error)
}

type PatientGetter interface {
	GetByID(ctx context.Context, id string) (patient.Patient, error)
}

type DoctorGetter interface {
	GetByID(ctx context.Context, id string) (doctor.Doctor, error)
}

type DashboardHandler struct {
	stats        StatsReader
	patients     PatientGetter
	doctors      DoctorGetter
	appointments AppointmentStore
}

func NewDashboardHandler(
	statsReader StatsReader,
	patients PatientGetter,
	doctors DoctorGetter,
	appointments AppointmentStore,
) *DashboardHandler {
	return &DashboardHandler{
		stats:        statsReader,
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
	}
}

// Admin aggregates the headline numbers: appointment counts per date split by
// patient gender, the busiest departments, and the overall totals. All three
// come back empty-but-present on a fresh database.
func (h *DashboardHandler) Admin(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	genderCounts, err := h.stats.GenderCounts(reqCtx)

	if err != nil {
		slog.Error("admin_dashboard_failed", "part", "gender_counts", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	topDepartments, err := h.stats.TopDepartments(reqCtx, topDepartmentsLimit)

	if err != nil {
		slog.Error("admin_dashboard_failed", "part", "top_departments", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	totals, err := h.stats.Totals(reqCtx)

	if err != nil {
		slog.Error("admin_dashboard_failed", "part", "totals", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"genderCounts":   genderCounts,
		"topDepartments": topDepartments,
		"totals":         totals,
	})
}

// Doctor shows the logged-in doctor their profile, their schedule and a
// per-date count of their appointments.
func (h *DashboardHandler) Doctor(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	reqCtx := ctx.Request.Context()

	doc, err := h.doctors.GetByID(reqCtx, userID)

	if err != nil {
		if errors.Is(err, doctor.ErrNotFound) {
			RespondNotFound(ctx, "Doctor not found.")
			return
		}

		slog.Error("doctor_dashboard_failed", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	appts, err := h.appointments.ListByDoctor(reqCtx, userID)

	if err != nil {
		slog.Error("doctor_dashboard_failed", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	dailyCounts, err := h.stats.DoctorDailyHistogram(reqCtx, userID)

	if err != nil {
		slog.Error("doctor_dashboard_failed", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctor":       doc,
		"appointments": appts,
		"dailyCounts":  dailyCounts,
	})
}

// Patient shows the logged-in patient their record and their appointments.
func (h *DashboardHandler) Patient(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	reqCtx := ctx.Request.Context()

	p, err := h.patients.GetByID(reqCtx, userID)

	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			RespondNotFound(ctx, "Patient not found.")
			return
		}

		slog.Error("patient_dashboard_failed", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	appts, err := h.appointments.ListByPatient(reqCtx, userID)

	if err != nil {
		slog.Error("patient_dashboard_failed", "error", err)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"patient":      p,
		"appointments": appts,
	})
}
