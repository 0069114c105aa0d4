package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/stats"
	"github.com/geocoder89/hospitalhub/internal/observability"
)

// StatsRepo is the read side of the dashboards. It never writes, and every
// query tolerates an empty database (empty maps, zero counts).
type StatsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStatsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StatsRepo {
	return &StatsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *StatsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *StatsRepo) countsByDate(ctx context.Context, op, gender string) (map[string]int, error) {
	var rows pgx.Rows
	var err error

	err = repo.observe(op, func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT to_char(a.date, 'YYYY-MM-DD') AS day, COUNT(a.id)
			FROM appointments a
			JOIN identities pi ON pi.id = a.patient_id
			WHERE pi.gender = $1
			GROUP BY a.date
		`, gender)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make(map[string]int)

	for rows.Next() {
		var day string
		var count int

		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}

		out[day] = count
	}

	return out, rows.Err()
}

// GenderCounts splits per-date appointment counts by the booking patient's
// gender. The match is exact 'Male' / 'Female' as the intake form stores it;
// any other value lands in neither map.
func (repo *StatsRepo) GenderCounts(ctx context.Context) (stats.GenderCounts, error) {
	male, err := repo.countsByDate(ctx, "stats.gender_counts.male", "Male")

	if err != nil {
		return stats.GenderCounts{}, err
	}

	female, err := repo.countsByDate(ctx, "stats.gender_counts.female", "Female")

	if err != nil {
		return stats.GenderCounts{}, err
	}

	return stats.GenderCounts{Male: male, Female: female}, nil
}

// TopDepartments ranks departments by appointment volume through their
// doctors. Ties break on department id ascending so repeated calls agree.
func (repo *StatsRepo) TopDepartments(ctx context.Context, limit int) (top []stats.DepartmentVolume, err error) {
	var rows pgx.Rows

	err = repo.observe("stats.top_departments", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT d.id, d.name, COUNT(a.id) AS appointments
			FROM departments d
			JOIN doctors doc ON doc.department_id = d.id
			JOIN appointments a ON a.doctor_id = doc.identity_id
			GROUP BY d.id, d.name
			ORDER BY COUNT(a.id) DESC, d.id ASC
			LIMIT $1
		`, limit)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	top = make([]stats.DepartmentVolume, 0, limit)

	for rows.Next() {
		var v stats.DepartmentVolume

		if e := rows.Scan(&v.DepartmentID, &v.Name, &v.Appointments); e != nil {
			err = e
			return
		}

		top = append(top, v)
	}

	err = rows.Err()
	return
}

// DoctorDailyHistogram counts one doctor's appointments per calendar date.
func (repo *StatsRepo) DoctorDailyHistogram(ctx context.Context, doctorID string) (map[string]int, error) {
	var rows pgx.Rows
	var err error

	err = repo.observe("stats.doctor_daily_histogram", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT to_char(date, 'YYYY-MM-DD') AS day, COUNT(id)
			FROM appointments
			WHERE doctor_id = $1
			GROUP BY date
		`, doctorID)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make(map[string]int)

	for rows.Next() {
		var day string
		var count int

		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}

		out[day] = count
	}

	return out, rows.Err()
}

func (repo *StatsRepo) count(ctx context.Context, op, query string) (int, error) {
	var total int
	err := repo.observe(op, func() error {
		return repo.pool.QueryRow(ctx, query).Scan(&total)
	})
	return total, err
}

func (repo *StatsRepo) TotalPatients(ctx context.Context) (int, error) {
	return repo.count(ctx, "stats.total_patients", `SELECT COUNT(*) FROM patients`)
}

func (repo *StatsRepo) TotalDoctors(ctx context.Context) (int, error) {
	return repo.count(ctx, "stats.total_doctors", `SELECT COUNT(*) FROM doctors`)
}

func (repo *StatsRepo) TotalAppointments(ctx context.Context) (int, error) {
	return repo.count(ctx, "stats.total_appointments", `SELECT COUNT(*) FROM appointments`)
}

// Totals bundles the three headline counters for the admin dashboard.
func (repo *StatsRepo) Totals(ctx context.Context) (stats.Totals, error) {
	patients, err := repo.TotalPatients(ctx)
	if err != nil {
		return stats.Totals{}, err
	}

	doctors, err := repo.TotalDoctors(ctx)
	if err != nil {
		return stats.Totals{}, err
	}

	appointments, err := repo.TotalAppointments(ctx)
	if err != nil {
		return stats.Totals{}, err
	}

	return stats.Totals{
		Patients:     patients,
		Doctors:      doctors,
		Appointments: appointments,
	}, nil
}
