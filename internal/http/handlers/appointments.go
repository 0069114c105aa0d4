package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/domain/appointment"
	"github.com/geocoder89/hospitalhub/internal/http/middlewares"
	"github.com/geocoder89/hospitalhub/internal/observability"
	"github.com/geocoder89/hospitalhub/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type AppointmentStore interface {
	Book(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]appointment.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]appointment.Appointment, error)
	ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]appointment.Appointment, *string, bool, error)
}

type AppointmentsHandler struct {
	appointments AppointmentStore
	prom         *observability.Prom
}

func NewAppointmentsHandler(appointments AppointmentStore, prom *observability.Prom) *AppointmentsHandler {
	return &AppointmentsHandler{
		appointments: appointments,
		prom:         prom,
	}
}

// Book creates an appointment for the logged-in patient. The patient id is
// taken from the session, a body-supplied one is ignored.
func (h *AppointmentsHandler) Book(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	var req appointment.BookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.PatientID = userID

	if err := req.Validate(); err != nil {
		h.countBooking(req.Kind, "rejected")

		switch {
		case errors.Is(err, appointment.ErrMissingDateTime):
			RespondBadRequest(ctx, "missing_datetime", err.Error())
		case errors.Is(err, appointment.ErrBadDate):
			RespondBadRequest(ctx, "invalid_date", err.Error())
		case errors.Is(err, appointment.ErrBadTime):
			RespondBadRequest(ctx, "invalid_time", err.Error())
		default:
			RespondBadRequest(ctx, "invalid_request", err.Error())
		}
		return
	}

	appt := appointment.NewFromBookRequest(req)

	created, err := h.appointments.Book(ctx.Request.Context(), req.Kind, appt)

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrDoctorNotFound):
			h.countBooking(req.Kind, "rejected")
			RespondNotFound(ctx, "Doctor not found.")
		case errors.Is(err, appointment.ErrPatientNotFound):
			h.countBooking(req.Kind, "rejected")
			RespondNotFound(ctx, "Patient not found.")
		default:
			h.countBooking(req.Kind, "error")
			slog.Error("appointment_book_failed", "error", err)
			RespondInternal(ctx, "Could not book appointment")
		}
		return
	}

	h.countBooking(req.Kind, "created")

	ctx.JSON(http.StatusCreated, gin.H{"appointment": created})
}

// ListMine returns the logged-in patient's appointments.
func (h *AppointmentsHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	appts, err := h.appointments.ListByPatient(ctx.Request.Context(), userID)

	if err != nil {
		slog.Error("appointment_list_failed", "error", err)
		RespondInternal(ctx, "Could not load appointments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ListForDoctor returns the logged-in doctor's schedule.
func (h *AppointmentsHandler) ListForDoctor(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	appts, err := h.appointments.ListByDoctor(ctx.Request.Context(), userID)

	if err != nil {
		slog.Error("appointment_list_failed", "error", err)
		RespondInternal(ctx, "Could not load appointments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ListAll is the admin view: keyset-paginated over (created_at, id).
func (h *AppointmentsHandler) ListAll(ctx *gin.Context) {
	limit := defaultPageSize

	if rawLimit := ctx.Query("limit"); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)

		if err != nil || n < 1 {
			RespondBadRequest(ctx, "invalid_limit", "limit must be a positive integer")
			return
		}

		if n > maxPageSize {
			n = maxPageSize
		}

		limit = n
	}

	var afterCreatedAt time.Time
	var afterID string

	if rawCursor := ctx.Query("cursor"); rawCursor != "" {
		cur, err := utils.DecodeAppointmentCursor(rawCursor)

		if err != nil {
			RespondBadRequest(ctx, "invalid_cursor", "cursor is malformed")
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	items, nextCursor, hasMore, err := h.appointments.ListCursor(ctx.Request.Context(), limit, afterCreatedAt, afterID)

	if err != nil {
		slog.Error("appointment_list_failed", "error", err)
		RespondInternal(ctx, "Could not load appointments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	})
}

func (h *AppointmentsHandler) countBooking(kind, result string) {
	if h.prom == nil {
		return
	}

	if kind == "" {
		kind = "unknown"
	}

	h.prom.BookingsTotal.WithLabelValues(kind, result).Inc()
}
