package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/appointment"
	"github.com/geocoder89/hospitalhub/internal/observability"
	"github.com/geocoder89/hospitalhub/internal/utils"
)

type AppointmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAppointmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AppointmentsRepo {
	return &AppointmentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *AppointmentsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Book inserts one appointment row. Online bookings store the provided
// date/time verbatim; walk-ins are stamped from the database clock at insert,
// never from process start. Concurrent bookings of the same doctor/slot are
// not serialized here, the system accepts double booking.
func (repo *AppointmentsRepo) Book(ctx context.Context, kind string, appt appointment.Appointment) (appointment.Appointment, error) {
	var query string
	var args []interface{}

	if kind == appointment.KindWalkIn {
		query = `
			INSERT INTO appointments (id, date, time, patient_id, doctor_id, comment, created_at)
			VALUES ($1, now()::date, now()::time(0), $2, $3, $4, $5)
			RETURNING to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI')`
		args = []interface{}{appt.ID, appt.PatientID, appt.DoctorID, appt.Comment, appt.CreatedAt}
	} else {
		query = `
			INSERT INTO appointments (id, date, time, patient_id, doctor_id, comment, created_at)
			VALUES ($1, $2::date, $3::time, $4, $5, $6, $7)
			RETURNING to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI')`
		args = []interface{}{appt.ID, appt.Date, appt.Time, appt.PatientID, appt.DoctorID, appt.Comment, appt.CreatedAt}
	}

	err := repo.observe("appointments.book", func() error {
		return repo.pool.QueryRow(ctx, query, args...).Scan(&appt.Date, &appt.Time)
	})

	if err != nil {
		// FK failures say which reference was dangling
		if IsForeignKeyViolation(err, "appointments_patient_fk") {
			return appointment.Appointment{}, appointment.ErrPatientNotFound
		}
		if IsForeignKeyViolation(err, "appointments_doctor_fk") {
			return appointment.Appointment{}, appointment.ErrDoctorNotFound
		}

		return appointment.Appointment{}, err
	}

	return appt, nil
}

const appointmentSelect = `
	SELECT a.id, to_char(a.date, 'YYYY-MM-DD'), to_char(a.time, 'HH24:MI'), a.patient_id, a.doctor_id, a.comment, a.created_at,
		pi.first_name || ' ' || pi.last_name,
		COALESCE(di.first_name || ' ' || di.last_name, '')
	FROM appointments a
	JOIN identities pi ON pi.id = a.patient_id
	LEFT JOIN identities di ON di.id = a.doctor_id
`

func scanAppointment(rows pgx.Rows) (appointment.Appointment, error) {
	var a appointment.Appointment

	err := rows.Scan(
		&a.ID, &a.Date, &a.Time, &a.PatientID, &a.DoctorID, &a.Comment, &a.CreatedAt,
		&a.PatientName, &a.DoctorName,
	)

	return a, err
}

func (repo *AppointmentsRepo) listWhere(ctx context.Context, op, where string, args ...interface{}) (appts []appointment.Appointment, err error) {
	var rows pgx.Rows

	err = repo.observe(op, func() error {
		rows, err = repo.pool.Query(ctx,
			appointmentSelect+where+` ORDER BY a.date ASC, a.time ASC, a.id ASC`,
			args...,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	appts = make([]appointment.Appointment, 0)

	for rows.Next() {
		a, e := scanAppointment(rows)

		if e != nil {
			err = e
			return
		}
		appts = append(appts, a)
	}

	err = rows.Err()
	return
}

func (repo *AppointmentsRepo) ListByPatient(ctx context.Context, patientID string) ([]appointment.Appointment, error) {
	return repo.listWhere(ctx, "appointments.list_by_patient", ` WHERE a.patient_id = $1`, patientID)
}

func (repo *AppointmentsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]appointment.Appointment, error) {
	return repo.listWhere(ctx, "appointments.list_by_doctor", ` WHERE a.doctor_id = $1`, doctorID)
}

// ListCursor is the keyset-paginated admin view over all appointments.
func (repo *AppointmentsRepo) ListCursor(
	ctx context.Context,
	limit int,
	afterCreatedAt time.Time,
	afterID string,
) (items []appointment.Appointment, nextCursor *string, hasMore bool, err error) {
	op := "appointments.list_cursor"

	// One extra row tells us whether another page exists.
	limitPlusOne := limit + 1

	// The first page has no cursor; an empty afterID must never reach the
	// query because it cannot be parsed as a uuid.
	q := appointmentSelect + `
		ORDER BY a.created_at ASC, a.id ASC
		LIMIT $1
	`
	args := []interface{}{limitPlusOne}

	if afterID != "" {
		q = appointmentSelect + `
			WHERE (a.created_at, a.id) > ($1, $2)
			ORDER BY a.created_at ASC, a.id ASC
			LIMIT $3
		`
		args = []interface{}{afterCreatedAt, afterID, limitPlusOne}
	}

	var rows pgx.Rows
	err = repo.observe(op, func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]appointment.Appointment, 0, limit)

	for rows.Next() {
		a, scanErr := scanAppointment(rows)
		if scanErr != nil {
			return nil, nil, false, scanErr
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if len(out) > limit {
		hasMore = true
		out = out[:limit]
		last := out[len(out)-1]
		cur, encErr := utils.EncodeAppointmentCursor(last.CreatedAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}
