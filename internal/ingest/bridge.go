package ingest

import (
	"context"
	"errors"
	"fmt"

	utils "github.com/fathima-sithara/media-service/internal/utis"
)

// Bridge correlates one upload stream with its completion callback.
type Bridge struct {
	uploader Uploader
	folders  Folders
}

func NewBridge(u Uploader, folders Folders) *Bridge {
	return &Bridge{uploader: u, folders: folders}
}

// Ingest writes payload to a fresh upload stream and blocks until the remote
// service reports the result. Every failure wraps utils.ErrUpstream. Nothing
// is retried.
func (b *Bridge) Ingest(ctx context.Context, payload []byte, kind Kind) (*Asset, error) {
	f := newFuture()
	w, err := b.uploader.UploadStream(ctx, OptionsFor(kind, b.folders), f.resolve)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s stream: %v", utils.ErrUpstream, kind, err)
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%w: write %s stream: %v", utils.ErrUpstream, kind, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: close %s stream: %v", utils.ErrUpstream, kind, err)
	}

	asset, err := f.wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s ingestion: %v", utils.ErrUpstream, kind, err)
	}
	if asset == nil || asset.PublicID == "" {
		return nil, fmt.Errorf("%w: %s ingestion: %v", utils.ErrUpstream, kind, errors.New("empty result"))
	}
	return asset, nil
}
