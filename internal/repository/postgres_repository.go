package repository

import (
	"context"
	"fmt"

	models "github.com/fathima-sithara/media-service/internal/media"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"github.com/jackc/pgx/v5/pgxpool"
)

const videosSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	public_id       TEXT NOT NULL UNIQUE,
	original_size   TEXT NOT NULL DEFAULT '',
	compressed_size TEXT NOT NULL DEFAULT '',
	duration        DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertVideo = `
INSERT INTO videos (id, title, description, public_id, original_size, compressed_size, duration)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at
`

// PostgresVideoStore persists videos to a Postgres table through a pgx pool.
type PostgresVideoStore struct {
	pool *pgxpool.Pool
}

// NewPostgresVideoStore opens a pool using the provided DSN.
func NewPostgresVideoStore(ctx context.Context, dsn string) (*PostgresVideoStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &PostgresVideoStore{pool: pool}, nil
}

// EnsureSchema creates the videos table when it does not exist.
func (s *PostgresVideoStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, videosSchema); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	return nil
}

func (s *PostgresVideoStore) Acquire(ctx context.Context) (Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire postgres conn: %w", err)
	}
	return &pgConn{conn: conn}, nil
}

// Close releases the pool resources.
func (s *PostgresVideoStore) Close(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

type pgConn struct {
	conn *pgxpool.Conn
}

func (c *pgConn) InsertVideo(ctx context.Context, v *models.Video) error {
	id := v.ID
	if id == "" {
		id = utils.NewID()
	}
	row := c.conn.QueryRow(ctx, insertVideo,
		id, v.Title, v.Description, v.PublicID, v.OriginalSize, v.CompressedSize, v.Duration)
	if err := row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (c *pgConn) Release(context.Context) {
	c.conn.Release()
}
