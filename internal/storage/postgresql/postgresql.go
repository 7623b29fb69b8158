package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	// tables
	UsersTable    = "users"
	ImagesTable   = "images"
	CommentsTable = "comments"

	// AdminRoleIndex keeps the single-admin rule in the database.
	AdminRoleIndex = "users_single_admin_idx"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	password   BYTEA NOT NULL,
	role       TEXT NOT NULL,
	seq        BIGSERIAL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin_idx ON users (role) WHERE role = 'admin';

CREATE TABLE IF NOT EXISTS images (
	id           UUID PRIMARY KEY,
	file_name    TEXT NOT NULL,
	url          TEXT NOT NULL,
	uploaded_by  TEXT NOT NULL,
	upload_time  TEXT NOT NULL,
	size         BIGINT NOT NULL DEFAULT 0,
	mime_type    TEXT NOT NULL DEFAULT '',
	storage_name TEXT NOT NULL,
	seq          BIGSERIAL
);

CREATE TABLE IF NOT EXISTS comments (
	id         UUID PRIMARY KEY,
	image_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	user_name  TEXT NOT NULL,
	user_role  TEXT NOT NULL,
	text       TEXT NOT NULL,
	timestamp  TEXT NOT NULL,
	seq        BIGSERIAL
);
`

type Storage struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Storage{db: db}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgresql.Migrate"

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.db
}

func (s *Storage) Stop() {
	s.db.Close()
}
