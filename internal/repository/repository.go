package repository

import (
	"context"

	models "github.com/fathima-sithara/media-service/internal/media"
)

// Conn is a connection held for a single write. Callers must Release it.
type Conn interface {
	InsertVideo(ctx context.Context, v *models.Video) error
	Release(ctx context.Context)
}

type Store interface {
	Acquire(ctx context.Context) (Conn, error)
}
