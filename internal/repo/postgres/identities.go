package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/domain/identity"
)

const identityColumns = `id, first_name, last_name, email, phone_number, gender, bio, image_file, password_hash, role, created_at, updated_at`

type IdentitiesRepo struct {
	pool *pgxpool.Pool
}

func NewIdentitiesRepo(pool *pgxpool.Pool) *IdentitiesRepo {
	return &IdentitiesRepo{pool: pool}
}

func scanIdentity(row pgx.Row) (identity.Identity, error) {
	var ident identity.Identity

	err := row.Scan(
		&ident.ID,
		&ident.FirstName,
		&ident.LastName,
		&ident.Email,
		&ident.PhoneNumber,
		&ident.Gender,
		&ident.Bio,
		&ident.ImageFile,
		&ident.PasswordHash,
		&ident.Role,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Identity{}, identity.ErrNotFound
		}

		return identity.Identity{}, err
	}

	return ident, nil
}

// GetByEmail is role-scoped on purpose: each login entry point only searches
// its own kind, and email uniqueness is per role.
func (r *IdentitiesRepo) GetByEmail(ctx context.Context, role identity.Role, email string) (identity.Identity, error) {
	return scanIdentity(r.pool.QueryRow(
		ctx,
		`SELECT `+identityColumns+`
		 FROM identities
		 WHERE role = $1 AND email = $2`,
		role, email,
	))
}

// GetByID resolves any kind; ids are unique across the whole table.
func (r *IdentitiesRepo) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	return scanIdentity(r.pool.QueryRow(
		ctx,
		`SELECT `+identityColumns+`
		 FROM identities
		 WHERE id = $1`,
		id,
	))
}

// CreateTx inserts the common identity row inside the caller's transaction so
// kind-specific rows land atomically with it.
func (r *IdentitiesRepo) CreateTx(ctx context.Context, tx pgx.Tx, ident identity.Identity) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO identities (`+identityColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
		ident.ID, ident.FirstName, ident.LastName, ident.Email, ident.PhoneNumber, ident.Gender,
		ident.Bio, ident.ImageFile, ident.PasswordHash, ident.Role, ident.CreatedAt, ident.UpdatedAt,
	)

	if err != nil && IsUniqueViolation(err) {
		return identity.ErrDuplicateEmail
	}

	return err
}

// Create is the single-row variant for admins, who carry no kind table.
func (r *IdentitiesRepo) Create(ctx context.Context, ident identity.Identity) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = r.CreateTx(ctx, tx, ident)

	if err != nil {
		return
	}

	return tx.Commit(ctx)
}

// UpdateProfile mutates the only fields the profile form exposes.
func (r *IdentitiesRepo) UpdateProfile(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.Identity, error) {
	ident, err := scanIdentity(r.pool.QueryRow(
		ctx,
		`UPDATE identities
			SET first_name = $2,
					last_name = $3,
					email = $4,
					phone_number = $5,
					bio = $6,
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+identityColumns,
		id, req.FirstName, req.LastName, req.Email, req.PhoneNumber, req.Bio,
	))

	if err != nil && IsUniqueViolation(err) {
		return identity.Identity{}, identity.ErrDuplicateEmail
	}

	return ident, err
}

// SetImage stores the blob reference returned by the upload helper.
func (r *IdentitiesRepo) SetImage(ctx context.Context, id, imageRef string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE identities SET image_file = $2, updated_at = NOW() WHERE id = $1`,
		id, imageRef,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return identity.ErrNotFound
	}

	return nil
}
