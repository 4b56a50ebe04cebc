package db

import (
	"context"
	"fmt"
	"time"
)

// Idempotent DDL applied at startup. Full migration tooling is out of
// scope; table names follow the historical schema.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	moderator     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS softwares (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	version     TEXT NOT NULL,
	description TEXT NOT NULL,
	source      TEXT NOT NULL,
	logo        TEXT,
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tags (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS softwares_tags (
	software_id BIGINT NOT NULL REFERENCES softwares(id),
	tag_id      BIGINT NOT NULL REFERENCES tags(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (software_id, tag_id)
);

CREATE TABLE IF NOT EXISTS requests (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL REFERENCES users(id),
	moderator_id BIGINT REFERENCES users(id),
	status       TEXT NOT NULL DEFAULT 'created',
	ssh_address  TEXT,
	ssh_password TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS requests_softwares (
	request_id  BIGINT NOT NULL REFERENCES requests(id),
	software_id BIGINT NOT NULL REFERENCES softwares(id),
	to_install  BOOLEAN NOT NULL DEFAULT TRUE,
	status      TEXT NOT NULL DEFAULT 'new',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (request_id, software_id)
);

CREATE INDEX IF NOT EXISTS idx_requests_user_status ON requests (user_id, status);
CREATE INDEX IF NOT EXISTS idx_softwares_active ON softwares (active);
`

// InitSchema applies the schema DDL. Safe to run on every startup.
func InitSchema(db *DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
