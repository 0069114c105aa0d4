package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/patient"
)

type PatientsRepo struct {
	pool       *pgxpool.Pool
	identities *IdentitiesRepo
}

func NewPatientsRepo(pool *pgxpool.Pool, identities *IdentitiesRepo) *PatientsRepo {
	return &PatientsRepo{
		pool:       pool,
		identities: identities,
	}
}

// Create inserts the identity row and the clinical row in one transaction.
func (r *PatientsRepo) Create(ctx context.Context, p patient.Patient) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = r.identities.CreateTx(ctx, tx, p.Identity)

	if err != nil {
		return
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO patients (identity_id, age, health_status, blood_group, height, weight)
		VALUES ($1,$2,$3,$4,$5,$6)
		`,
		p.ID, p.Age, p.HealthStatus, p.BloodGroup, p.Height, p.Weight,
	)

	if err != nil {
		return
	}

	return tx.Commit(ctx)
}

const patientSelect = `
	SELECT i.id, i.first_name, i.last_name, i.email, i.phone_number, i.gender, i.bio, i.image_file, i.password_hash, i.role, i.created_at, i.updated_at,
		p.age, p.health_status, p.blood_group, p.height, p.weight
	FROM patients p
	JOIN identities i ON i.id = p.identity_id
`

func scanPatient(row pgx.Row) (patient.Patient, error) {
	var p patient.Patient

	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.Gender, &p.Bio,
		&p.ImageFile, &p.PasswordHash, &p.Role, &p.CreatedAt, &p.UpdatedAt,
		&p.Age, &p.HealthStatus, &p.BloodGroup, &p.Height, &p.Weight,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return patient.Patient{}, patient.ErrNotFound
		}

		return patient.Patient{}, err
	}

	return p, nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patient.Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, patientSelect+` WHERE p.identity_id = $1`, id))
}

func (r *PatientsRepo) List(ctx context.Context) ([]patient.Patient, error) {
	rows, err := r.pool.Query(ctx, patientSelect+` ORDER BY i.created_at ASC, i.id ASC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]patient.Patient, 0)

	for rows.Next() {
		p, err := scanPatient(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}
