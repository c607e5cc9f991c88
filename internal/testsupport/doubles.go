// Package testsupport holds in-memory doubles for the upload pipeline.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/fathima-sithara/media-service/internal/events"
	"github.com/fathima-sithara/media-service/internal/ingest"
	models "github.com/fathima-sithara/media-service/internal/media"
	"github.com/fathima-sithara/media-service/internal/repository"
)

// Ingester returns a fresh asset per call, or Err when set.
type Ingester struct {
	mu       sync.Mutex
	Calls    int
	Kinds    []ingest.Kind
	Payloads [][]byte
	Err      error
	// Asset overrides the generated asset when set.
	Asset *ingest.Asset
}

func (f *Ingester) Ingest(_ context.Context, payload []byte, kind ingest.Kind) (*ingest.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Kinds = append(f.Kinds, kind)
	f.Payloads = append(f.Payloads, payload)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Asset != nil {
		a := *f.Asset
		return &a, nil
	}
	return &ingest.Asset{PublicID: fmt.Sprintf("asset-%d", f.Calls), Bytes: int64(len(payload))}, nil
}

// Store counts Acquire and Release calls and keeps inserted videos.
type Store struct {
	mu         sync.Mutex
	Opened     int
	Released   int
	Videos     []*models.Video
	AcquireErr error
	InsertErr  error
	// PanicOnInsert makes InsertVideo panic.
	PanicOnInsert bool
}

func (s *Store) Acquire(context.Context) (repository.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	s.Opened++
	return &conn{store: s}, nil
}

// Open reports connections acquired and not yet released.
func (s *Store) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Opened - s.Released
}

type conn struct {
	store *Store
}

func (c *conn) InsertVideo(_ context.Context, v *models.Video) error {
	s := c.store
	if s.PanicOnInsert {
		panic("insert exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	v.ID = fmt.Sprintf("video-%d", len(s.Videos)+1)
	s.Videos = append(s.Videos, v)
	return nil
}

func (c *conn) Release(context.Context) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.Released++
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []events.VideoUploadedEvent
	Err    error
}

func (p *Publisher) PublishVideoUploaded(_ context.Context, ev events.VideoUploadedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}
