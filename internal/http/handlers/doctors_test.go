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

	"github.com/geocoder89/hospitalhub/internal/cache"
	"github.com/geocoder89/hospitalhub/internal/domain/department"
	"github.com/geocoder89/hospitalhub/internal/domain/doctor"
	"github.com/geocoder89/hospitalhub/internal/http/handlers"
)

type fakeDoctorsRepo struct {
	createFn func(ctx context.Context, d doctor.Doctor) error
	listFn   func(ctx context.Context) ([]doctor.Doctor, error)

	createCalls int
	listCalls   int
}

func (f *fakeDoctorsRepo) Create(ctx context.Context, d doctor.Doctor) error {
	f.createCalls++

	if f.createFn != nil {
		return f.createFn(ctx, d)
	}

	return nil
}

type fakeDepartmentsRepo struct {
	getFn func(ctx context.Context, id string) (department.Department, error)
}

func (f *fakeDepartmentsRepo) GetByID(ctx context.Context, id string) (department.Department, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return department.Department{ID: id, Name: "Cardiology"}, nil
}

func (f *fakeDoctorsRepo) List(ctx context.Context) ([]doctor.Doctor, error) {
	f.listCalls++

	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []doctor.Doctor{}, nil
}

func sampleDoctor() doctor.Doctor {
	d := doctor.Doctor{DepartmentID: newUUID(), DepartmentName: "Cardiology"}
	d.ID = newUUID()
	d.FirstName = "Greg"
	d.LastName = "House"
	d.Email = "house@example.com"
	d.PhoneNumber = "555-0101"
	d.ImageFile = "default.png"

	return d
}

func TestCreateDoctor(t *testing.T) {
	validBody := `{
		"firstName": "Greg",
		"lastName": "House",
		"email": "house@example.com",
		"phoneNumber": "555-0101",
		"gender": "Male",
		"password": "supersecret",
		"departmentId": "` + newUUID() + `"
	}`

	tests := []struct {
		name            string
		body            string
		repoSetUp       func(*fakeDoctorsRepo)
		departmentsErr  error
		wantStatusCode  int
		wantCreateCalls int
	}{
		{
			name:            "success",
			body:            validBody,
			wantStatusCode:  http.StatusCreated,
			wantCreateCalls: 1,
		},
		{
			name:            "unknown_department",
			body:            validBody,
			departmentsErr:  department.ErrNotFound,
			wantStatusCode:  http.StatusNotFound,
			wantCreateCalls: 0,
		},
		{
			name:           "department_id_not_uuid",
			body:           `{"firstName":"Greg","lastName":"House","email":"house@example.com","phoneNumber":"555-0101","gender":"Male","password":"supersecret","departmentId":"cardiology"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: validBody,
			repoSetUp: func(f *fakeDoctorsRepo) {
				f.createFn = func(ctx context.Context, d doctor.Doctor) error {
					return errors.New("db error")
				}
			},
			wantStatusCode:  http.StatusInternalServerError,
			wantCreateCalls: 1,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeDoctorsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			departments := &fakeDepartmentsRepo{}

			if tt.departmentsErr != nil {
				departments.getFn = func(ctx context.Context, id string) (department.Department, error) {
					return department.Department{}, tt.departmentsErr
				}
			}

			h := handlers.NewDoctorsHandler(repo, departments, nil)

			r := gin.New()
			r.POST("/admin/doctors", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if repo.createCalls != tt.wantCreateCalls {
				t.Fatalf("got %d create calls, want %d", repo.createCalls, tt.wantCreateCalls)
			}
		})
	}
}

// The public directory must hide contact details, honor the cache and answer
// 304 to a matching If-None-Match.
func TestDoctorsDirectory(t *testing.T) {
	repo := &fakeDoctorsRepo{
		listFn: func(ctx context.Context) ([]doctor.Doctor, error) {
			return []doctor.Doctor{sampleDoctor()}, nil
		},
	}

	h := handlers.NewDoctorsHandler(repo, &fakeDepartmentsRepo{}, cache.New(time.Minute))

	r := gin.New()
	r.GET("/doctors", h.Directory)

	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	etag := w.Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	if bytes.Contains(w.Body.Bytes(), []byte("house@example.com")) {
		t.Fatal("directory must not expose doctor emails")
	}

	var resp struct {
		Doctors []handlers.DirectoryEntry `json:"doctors"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Doctors) != 1 || resp.Doctors[0].DepartmentName != "Cardiology" {
		t.Fatalf("unexpected directory: %+v", resp.Doctors)
	}

	// second hit is served from cache
	req = httptest.NewRequest(http.MethodGet, "/doctors", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("cached hit: got status %d", w.Code)
	}

	if repo.listCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", repo.listCalls)
	}

	// conditional request gets a 304
	req = httptest.NewRequest(http.MethodGet, "/doctors", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional hit: got status %d, want %d", w.Code, http.StatusNotModified)
	}
}

func TestDoctorsDirectoryListError(t *testing.T) {
	repo := &fakeDoctorsRepo{
		listFn: func(ctx context.Context) ([]doctor.Doctor, error) {
			return nil, errors.New("db error")
		},
	}

	h := handlers.NewDoctorsHandler(repo, &fakeDepartmentsRepo{}, nil)

	r := gin.New()
	r.GET("/doctors", h.Directory)

	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
