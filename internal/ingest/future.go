package ingest

import (
	"context"
	"sync"
)

type outcome struct {
	asset *Asset
	err   error
}

// future resolves once, either with an asset or with an error. Later
// resolutions are dropped.
type future struct {
	once sync.Once
	ch   chan outcome
}

func newFuture() *future {
	return &future{ch: make(chan outcome, 1)}
}

func (f *future) resolve(asset *Asset, err error) {
	f.once.Do(func() {
		f.ch <- outcome{asset: asset, err: err}
	})
}

func (f *future) wait(ctx context.Context) (*Asset, error) {
	select {
	case o := <-f.ch:
		return o.asset, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
