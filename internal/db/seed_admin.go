package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/hospitalhub/internal/config"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/security"
)

// EnsureAdminIdentity bootstraps the first admin from env so a fresh install
// has someone able to provision doctors and departments.
func EnsureAdminIdentity(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := identity.NormalizeEmail(cfg.AdminEmail)

	// check if the admin exists

	var dummy string

	err := pool.QueryRow(ctx,
		`SELECT id FROM identities WHERE role = $1 AND email = $2`,
		identity.RoleAdmin, email,
	).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	admin := identity.Identity{
		ID:           uuid.NewString(),
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		Email:        email,
		PhoneNumber:  "n/a",
		Gender:       "unspecified",
		ImageFile:    identity.DefaultImage,
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO identities (id, first_name, last_name, email, phone_number, gender, bio, image_file, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
		admin.ID, admin.FirstName, admin.LastName, admin.Email, admin.PhoneNumber, admin.Gender,
		admin.Bio, admin.ImageFile, admin.PasswordHash, admin.Role, admin.CreatedAt, admin.UpdatedAt,
	)

	return err
}
