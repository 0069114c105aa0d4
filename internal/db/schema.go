package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so restarting the
// process against an existing database is safe.
//
// Identities for all three kinds live in one table with a role discriminator;
// patient/doctor specifics hang off it keyed by identity_id. Email uniqueness
// is per role, a patient and a doctor may share an email.
const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id            UUID PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone_number  TEXT NOT NULL,
	gender        TEXT NOT NULL,
	bio           TEXT NOT NULL DEFAULT '',
	image_file    TEXT NOT NULL DEFAULT 'default.png',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('patient','doctor','admin')),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	CONSTRAINT identities_role_email_uniq UNIQUE (role, email)
);

CREATE TABLE IF NOT EXISTS departments (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS doctors (
	identity_id   UUID PRIMARY KEY REFERENCES identities(id),
	department_id UUID NOT NULL CONSTRAINT doctors_department_fk REFERENCES departments(id)
);

CREATE TABLE IF NOT EXISTS patients (
	identity_id   UUID PRIMARY KEY REFERENCES identities(id),
	age           INT NOT NULL,
	health_status TEXT NOT NULL,
	blood_group   TEXT NOT NULL,
	height        DOUBLE PRECISION NOT NULL,
	weight        DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	id         UUID PRIMARY KEY,
	date       DATE NOT NULL,
	time       TIME NOT NULL,
	patient_id UUID NOT NULL CONSTRAINT appointments_patient_fk REFERENCES patients(identity_id),
	doctor_id  UUID CONSTRAINT appointments_doctor_fk REFERENCES doctors(identity_id),
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS appointments_doctor_idx  ON appointments (doctor_id);
CREATE INDEX IF NOT EXISTS appointments_patient_idx ON appointments (patient_id);
CREATE INDEX IF NOT EXISTS appointments_cursor_idx  ON appointments (created_at, id);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id          UUID PRIMARY KEY,
	user_id     UUID NOT NULL REFERENCES identities(id),
	token_hash  TEXT NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL,
	revoked_at  TIMESTAMPTZ,
	replaced_by UUID,
	created_at  TIMESTAMPTZ NOT NULL
);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
