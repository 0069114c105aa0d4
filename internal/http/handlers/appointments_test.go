package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geocoder89/hospitalhub/internal/auth"
	"github.com/geocoder89/hospitalhub/internal/domain/appointment"
	"github.com/geocoder89/hospitalhub/internal/http/handlers"
	"github.com/geocoder89/hospitalhub/internal/http/middlewares"
	"github.com/geocoder89/hospitalhub/internal/utils"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.AppointmentStore interface

type fakeAppointmentsRepo struct {
	bookFn          func(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error)
	listByPatientFn func(ctx context.Context, patientID string) ([]appointment.Appointment, error)
	listByDoctorFn  func(ctx context.Context, doctorID string) ([]appointment.Appointment, error)
	listCursorFn    func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]appointment.Appointment, *string, bool, error)
}

func (f *fakeAppointmentsRepo) Book(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
	if f.bookFn != nil {
		return f.bookFn(ctx, kind, appt)
	}

	return appt, nil
}

func (f *fakeAppointmentsRepo) ListByPatient(ctx context.Context, patientID string) ([]appointment.Appointment, error) {
	if f.listByPatientFn != nil {
		return f.listByPatientFn(ctx, patientID)
	}

	return []appointment.Appointment{}, nil
}

func (f *fakeAppointmentsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]appointment.Appointment, error) {
	if f.listByDoctorFn != nil {
		return f.listByDoctorFn(ctx, doctorID)
	}

	return []appointment.Appointment{}, nil
}

func (f *fakeAppointmentsRepo) ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]appointment.Appointment, *string, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, limit, afterCreatedAt, afterID)
	}

	return []appointment.Appointment{}, nil, false, nil
}

// test token plumbing: a real manager so RequireAuth sees real tokens

func testTokenManager() *auth.Manager {
	return auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func bearerFor(t *testing.T, mgr *auth.Manager, userID, role string) string {
	t.Helper()

	token, err := mgr.GenerateAccessToken(userID, role+"@example.com", role)

	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	return "Bearer " + token
}

func TestBookAppointment(t *testing.T) {
	patientID := newUUID()
	doctorID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeAppointmentsRepo)
		wantStatusCode int
	}{
		{
			name: "online_success",
			body: `{
				"kind": "online",
				"doctorId": "` + doctorID + `",
				"date": "2026-09-15",
				"time": "10:30",
				"comment": "checkup"
			}`,
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.bookFn = func(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
					if kind != appointment.KindOnline {
						return appointment.Appointment{}, errors.New("wrong kind")
					}
					if appt.PatientID != patientID {
						return appointment.Appointment{}, errors.New("patient id not taken from session")
					}
					return appt, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			// walk-ins may omit date and time entirely
			name: "walk_in_success_without_datetime",
			body: `{"kind": "walk-in"}`,
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.bookFn = func(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
					appt.Date = "2026-08-29"
					appt.Time = "14:05"
					return appt, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "online_missing_datetime",
			body:           `{"kind": "online"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "online_bad_date",
			body:           `{"kind": "online", "date": "2026-02-30", "time": "10:00"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "online_bad_time",
			body:           `{"kind": "online", "date": "2026-09-15", "time": "25:00"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_kind",
			body:           `{"kind": "telepathy"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "doctor_not_found",
			body: `{"kind": "online", "doctorId": "` + doctorID + `", "date": "2026-09-15", "time": "10:30"}`,
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.bookFn = func(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
					return appointment.Appointment{}, appointment.ErrDoctorNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			body: `{"kind": "walk-in"}`,
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.bookFn = func(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
					return appointment.Appointment{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	mgr := testTokenManager()
	authMW := middlewares.NewAuthMiddleware(mgr)

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeAppointmentsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewAppointmentsHandler(fakeRepo, nil)

			r := gin.New()
			r.POST("/appointments", authMW.RequireAuth(), h.Book)

			req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearerFor(t, mgr, patientID, "patient"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestBookAppointmentWithoutToken(t *testing.T) {
	mgr := testTokenManager()
	authMW := middlewares.NewAuthMiddleware(mgr)

	h := handlers.NewAppointmentsHandler(&fakeAppointmentsRepo{}, nil)

	r := gin.New()
	r.POST("/appointments", authMW.RequireAuth(), h.Book)

	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString(`{"kind":"walk-in"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestListAllAppointments(t *testing.T) {
	now := time.Now().UTC()

	validCursor, err := utils.EncodeAppointmentCursor(now.Add(-time.Minute), newUUID())

	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeAppointmentsRepo)
		wantStatusCode int
		wantItems      int
		wantHasMore    bool
	}{
		{
			name: "first_page_default_limit",
			url:  "/admin/appointments",
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]appointment.Appointment, *string, bool, error) {
					if limit != 20 {
						return nil, nil, false, errors.New("default limit not applied")
					}
					if !afterCreatedAt.IsZero() || afterID != "" {
						return nil, nil, false, errors.New("first page must start from zero cursor")
					}

					next := "next-cursor"
					return []appointment.Appointment{
						{ID: newUUID(), Date: "2026-08-29", Time: "09:00", PatientID: newUUID(), CreatedAt: now},
					}, &next, true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantItems:      1,
			wantHasMore:    true,
		},
		{
			name: "with_cursor",
			url:  "/admin/appointments?cursor=" + validCursor + "&limit=5",
			repoSetUp: func(f *fakeAppointmentsRepo) {
				f.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]appointment.Appointment, *string, bool, error) {
					if limit != 5 {
						return nil, nil, false, errors.New("limit not passed through")
					}
					if afterCreatedAt.IsZero() || afterID == "" {
						return nil, nil, false, errors.New("cursor not decoded")
					}
					return []appointment.Appointment{}, nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantItems:      0,
		},
		{
			name:           "malformed_cursor",
			url:            "/admin/appointments?cursor=!!!not-base64!!!",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_limit",
			url:            "/admin/appointments?limit=zero",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	mgr := testTokenManager()
	authMW := middlewares.NewAuthMiddleware(mgr)
	adminID := newUUID()

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeAppointmentsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewAppointmentsHandler(fakeRepo, nil)

			r := gin.New()
			r.GET("/admin/appointments", authMW.RequireAuth(), h.ListAll)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Authorization", bearerFor(t, mgr, adminID, "admin"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Items   []appointment.Appointment `json:"items"`
				HasMore bool                      `json:"hasMore"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}

			if len(resp.Items) != tt.wantItems {
				t.Fatalf("got %d items, want %d", len(resp.Items), tt.wantItems)
			}

			if resp.HasMore != tt.wantHasMore {
				t.Fatalf("got hasMore=%v, want %v", resp.HasMore, tt.wantHasMore)
			}
		})
	}
}
