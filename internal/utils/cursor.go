package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrBadCursor = errors.New("malformed cursor")

// AppointmentCursor is the opaque keyset token for the admin appointment
// list. It pins the (created_at, id) position of the last row served; both
// fields must be present for the keyset comparison to be total.
type AppointmentCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// EncodeAppointmentCursor serializes the position as URL-safe base64 so it
// can travel in a query parameter untouched.
func EncodeAppointmentCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(AppointmentCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeAppointmentCursor(cursor string) (AppointmentCursor, error) {
	if cursor == "" {
		return AppointmentCursor{}, ErrBadCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return AppointmentCursor{}, ErrBadCursor
	}

	var c AppointmentCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return AppointmentCursor{}, ErrBadCursor
	}

	if c.ID == "" || c.CreatedAt.IsZero() {
		return AppointmentCursor{}, ErrBadCursor
	}

	return c, nil
}
