package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/department"
)

type DepartmentsRepo struct {
	pool *pgxpool.Pool
}

func NewDepartmentsRepo(pool *pgxpool.Pool) *DepartmentsRepo {
	return &DepartmentsRepo{pool: pool}
}

func (r *DepartmentsRepo) Create(ctx context.Context, dep department.Department) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO departments (id, name, created_at) VALUES ($1,$2,$3)`,
		dep.ID, dep.Name, dep.CreatedAt,
	)

	return err
}

func (r *DepartmentsRepo) GetByID(ctx context.Context, id string) (department.Department, error) {
	var dep department.Department

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM departments WHERE id = $1`,
		id,
	).Scan(&dep.ID, &dep.Name, &dep.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrNotFound
		}

		return department.Department{}, err
	}

	return dep, nil
}

func (r *DepartmentsRepo) List(ctx context.Context) ([]department.Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM departments ORDER BY created_at ASC, id ASC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]department.Department, 0)

	for rows.Next() {
		var dep department.Department

		if err := rows.Scan(&dep.ID, &dep.Name, &dep.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, dep)
	}

	return out, rows.Err()
}
