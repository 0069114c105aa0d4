package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/department"
	"github.com/geocoder89/hospitalhub/internal/domain/doctor"
)

type DoctorsRepo struct {
	pool       *pgxpool.Pool
	identities *IdentitiesRepo
}

func NewDoctorsRepo(pool *pgxpool.Pool, identities *IdentitiesRepo) *DoctorsRepo {
	return &DoctorsRepo{
		pool:       pool,
		identities: identities,
	}
}

// Create inserts the identity row and the doctor row in one transaction. A
// dangling department id surfaces as department.ErrNotFound via the FK.
func (r *DoctorsRepo) Create(ctx context.Context, d doctor.Doctor) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = r.identities.CreateTx(ctx, tx, d.Identity)

	if err != nil {
		return
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO doctors (identity_id, department_id)
		VALUES ($1,$2)
		`,
		d.ID, d.DepartmentID,
	)

	if err != nil {
		if IsForeignKeyViolation(err, "doctors_department_fk") {
			err = department.ErrNotFound
		}
		return
	}

	return tx.Commit(ctx)
}

const doctorSelect = `
	SELECT i.id, i.first_name, i.last_name, i.email, i.phone_number, i.gender, i.bio, i.image_file, i.password_hash, i.role, i.created_at, i.updated_at,
		d.department_id, dep.name
	FROM doctors d
	JOIN identities i ON i.id = d.identity_id
	JOIN departments dep ON dep.id = d.department_id
`

func scanDoctor(row pgx.Row) (doctor.Doctor, error) {
	var d doctor.Doctor

	err := row.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.PhoneNumber, &d.Gender, &d.Bio,
		&d.ImageFile, &d.PasswordHash, &d.Role, &d.CreatedAt, &d.UpdatedAt,
		&d.DepartmentID, &d.DepartmentName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doctor.Doctor{}, doctor.ErrNotFound
		}

		return doctor.Doctor{}, err
	}

	return d, nil
}

func (r *DoctorsRepo) GetByID(ctx context.Context, id string) (doctor.Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, doctorSelect+` WHERE d.identity_id = $1`, id))
}

func (r *DoctorsRepo) List(ctx context.Context) ([]doctor.Doctor, error) {
	rows, err := r.pool.Query(ctx, doctorSelect+` ORDER BY i.created_at ASC, i.id ASC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]doctor.Doctor, 0)

	for rows.Next() {
		d, err := scanDoctor(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, d)
	}

	return out, rows.Err()
}
