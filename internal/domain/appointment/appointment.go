package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Booking kinds. Online bookings carry an explicit date and time, walk-ins are
// stamped with the moment of insertion.
const (
	KindOnline = "online"
	KindWalkIn = "walk-in"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment keeps date and time as the wire strings ("2006-01-02", "15:04").
// The store owns the DATE/TIME column types, handlers and aggregations only
// ever see the formatted values.
type Appointment struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PatientID string    `json:"patientId"`
	DoctorID  *string   `json:"doctorId,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// denormalized for listings, filled by the repo joins
	PatientName string `json:"patientName,omitempty"`
	DoctorName  string `json:"doctorName,omitempty"`
}

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrPatientNotFound = errors.New("appointment references a missing patient")
	ErrDoctorNotFound  = errors.New("appointment references a missing doctor")

	ErrMissingDateTime = errors.New("online bookings require a date and a time")
	ErrBadDate         = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrBadTime         = errors.New("time must be a valid 24-hour HH:MM time")
)

type BookRequest struct {
	// forced from the session identity, never taken from the body
	PatientID string  `json:"-"`
	DoctorID  *string `json:"doctorId" binding:"omitempty,uuid"`
	Kind      string  `json:"kind" binding:"required,oneof=online walk-in"`
	Date      string  `json:"date" binding:"omitempty"`
	Time      string  `json:"time" binding:"omitempty"`
	Comment   string  `json:"comment" binding:"omitempty,max=2000"`
}

// Validate applies the kind-specific date/time rules. Online bookings must
// parse strictly; past dates are accepted as-is. Walk-in input date/time is
// ignored entirely, the store stamps it at insert.
func (r BookRequest) Validate() error {
	if r.Kind != KindOnline {
		return nil
	}

	if r.Date == "" || r.Time == "" {
		return ErrMissingDateTime
	}

	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrBadDate
	}

	if _, err := time.Parse(TimeLayout, r.Time); err != nil {
		return ErrBadTime
	}

	return nil
}

// NewFromBookRequest builds the appointment row for an online booking. Walk-in
// date/time stay empty here; the insert fills them from the database clock.
func NewFromBookRequest(req BookRequest) Appointment {
	return Appointment{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Time:      req.Time,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
}
