package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/db"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/repo/postgres"
	"github.com/geocoder89/hospitalhub/internal/utils"
)

// These tests run the real queries against Postgres. Point TEST_DB_DSN at a
// disposable database to enable them.

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	resetDB(t, pool)

	return pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	// identities cascades through patients, doctors and appointments
	_, err := pool.Exec(context.Background(),
		`TRUNCATE identities, departments RESTART IDENTITY CASCADE`)

	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func seedDepartment(t *testing.T, pool *pgxpool.Pool, id, name string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO departments (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, time.Now().UTC())

	if err != nil {
		t.Fatalf("seed department: %v", err)
	}
}

func seedIdentity(t *testing.T, pool *pgxpool.Pool, role identity.Role, gender string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO identities (id, first_name, last_name, email, phone_number, gender, bio, image_file, password_hash, role, created_at, updated_at)
		VALUES ($1, 'Test', 'User', $2, '555-0100', $3, '', 'default.png', 'x', $4, $5, $5)`,
		id, id+"@example.com", gender, role, now)

	if err != nil {
		t.Fatalf("seed identity: %v", err)
	}

	return id
}

func seedPatient(t *testing.T, pool *pgxpool.Pool, gender string) string {
	t.Helper()

	id := seedIdentity(t, pool, identity.RolePatient, gender)

	_, err := pool.Exec(context.Background(),
		`INSERT INTO patients (identity_id, age, health_status, blood_group, height, weight)
		VALUES ($1, 30, 'Good', 'A+', 1.7, 65)`,
		id)

	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	return id
}

func seedDoctor(t *testing.T, pool *pgxpool.Pool, departmentID string) string {
	t.Helper()

	id := seedIdentity(t, pool, identity.RoleDoctor, "Female")

	_, err := pool.Exec(context.Background(),
		`INSERT INTO doctors (identity_id, department_id) VALUES ($1, $2)`,
		id, departmentID)

	if err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	return id
}

func seedAppointment(t *testing.T, pool *pgxpool.Pool, patientID, doctorID, date string, createdAt time.Time) string {
	t.Helper()

	id := uuid.NewString()

	var doctorRef interface{}
	if doctorID != "" {
		doctorRef = doctorID
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO appointments (id, date, time, patient_id, doctor_id, comment, created_at)
		VALUES ($1, $2::date, '10:30'::time, $3, $4, '', $5)`,
		id, date, patientID, doctorRef, createdAt)

	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	return id
}

func TestStatsGenderCountsEmptyStore(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewStatsRepo(pool, nil)

	counts, err := repo.GenderCounts(context.Background())

	if err != nil {
		t.Fatalf("gender counts: %v", err)
	}

	if counts.Male == nil || counts.Female == nil {
		t.Fatalf("maps must be allocated even when empty: %+v", counts)
	}

	if len(counts.Male) != 0 || len(counts.Female) != 0 {
		t.Fatalf("expected empty maps, got %+v", counts)
	}
}

// The split matches the stored gender string exactly; anything that is not
// 'Male' or 'Female' lands in neither map.
func TestStatsGenderCountsExactMatch(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewStatsRepo(pool, nil)

	male := seedPatient(t, pool, "Male")
	female := seedPatient(t, pool, "Female")
	other := seedPatient(t, pool, "nonbinary")

	now := time.Now().UTC()
	seedAppointment(t, pool, male, "", "2026-09-01", now)
	seedAppointment(t, pool, male, "", "2026-09-01", now)
	seedAppointment(t, pool, female, "", "2026-09-02", now)
	seedAppointment(t, pool, other, "", "2026-09-03", now)

	counts, err := repo.GenderCounts(context.Background())

	if err != nil {
		t.Fatalf("gender counts: %v", err)
	}

	if counts.Male["2026-09-01"] != 2 {
		t.Fatalf("male counts: %+v", counts.Male)
	}

	if counts.Female["2026-09-02"] != 1 {
		t.Fatalf("female counts: %+v", counts.Female)
	}

	if len(counts.Male) != 1 || len(counts.Female) != 1 {
		t.Fatalf("unexpected extra buckets: %+v", counts)
	}
}

func TestStatsTopDepartmentsTieBreak(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewStatsRepo(pool, nil)

	// ids chosen so ascending order is known up front
	depA := "00000000-0000-0000-0000-00000000000a"
	depB := "00000000-0000-0000-0000-00000000000b"
	seedDepartment(t, pool, depB, "Radiology")
	seedDepartment(t, pool, depA, "Cardiology")

	docA := seedDoctor(t, pool, depA)
	docB := seedDoctor(t, pool, depB)
	patientID := seedPatient(t, pool, "Female")

	now := time.Now().UTC()

	// one appointment each, so the ranking must fall back to id order
	seedAppointment(t, pool, patientID, docB, "2026-09-01", now)
	seedAppointment(t, pool, patientID, docA, "2026-09-01", now)

	top, err := repo.TopDepartments(context.Background(), 4)

	if err != nil {
		t.Fatalf("top departments: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected 2 departments, got %+v", top)
	}

	if top[0].DepartmentID != depA || top[1].DepartmentID != depB {
		t.Fatalf("tie must break on department id ascending: %+v", top)
	}
}

func TestStatsTotals(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewStatsRepo(pool, nil)

	depID := uuid.NewString()
	seedDepartment(t, pool, depID, "Cardiology")

	patientID := seedPatient(t, pool, "Male")
	doctorID := seedDoctor(t, pool, depID)
	seedAppointment(t, pool, patientID, doctorID, "2026-09-01", time.Now().UTC())

	totals, err := repo.Totals(context.Background())

	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals.Patients != 1 || totals.Doctors != 1 || totals.Appointments != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

// The first admin page has no cursor; it must run without one and hand back a
// cursor that fetches the remainder.
func TestAppointmentsListCursorPagination(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewAppointmentsRepo(pool, nil)

	patientID := seedPatient(t, pool, "Female")

	base := time.Now().UTC().Truncate(time.Second)
	seedAppointment(t, pool, patientID, "", "2026-09-01", base)
	seedAppointment(t, pool, patientID, "", "2026-09-02", base.Add(time.Second))
	seedAppointment(t, pool, patientID, "", "2026-09-03", base.Add(2*time.Second))

	ctx := context.Background()

	items, nextCursor, hasMore, err := repo.ListCursor(ctx, 2, time.Time{}, "")

	if err != nil {
		t.Fatalf("first page: %v", err)
	}

	if len(items) != 2 || !hasMore || nextCursor == nil {
		t.Fatalf("first page: items=%d hasMore=%v cursor=%v", len(items), hasMore, nextCursor)
	}

	cur, err := utils.DecodeAppointmentCursor(*nextCursor)

	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}

	items, nextCursor, hasMore, err = repo.ListCursor(ctx, 2, cur.CreatedAt, cur.ID)

	if err != nil {
		t.Fatalf("second page: %v", err)
	}

	if len(items) != 1 || hasMore || nextCursor != nil {
		t.Fatalf("second page: items=%d hasMore=%v cursor=%v", len(items), hasMore, nextCursor)
	}

	if items[0].Date != "2026-09-03" {
		t.Fatalf("second page should hold the newest appointment, got %+v", items[0])
	}
}
