// Package ingest hands buffered uploads to a remote ingestion service and
// waits for its single completion callback.
package ingest

import (
	"context"
	"io"
)

type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// Asset is what the ingestion service reports about a stored object.
type Asset struct {
	PublicID string
	Bytes    int64
	Duration float64
}

type Transformation struct {
	Quality string
	Format  string
}

// Options parameterize one upload stream.
type Options struct {
	Folder         string
	ResourceType   string
	Transformation *Transformation
}

// Callback receives the outcome of an upload stream. Uploaders call it
// exactly once.
type Callback func(asset *Asset, err error)

// Uploader opens a streaming upload. Bytes written to the returned writer are
// forwarded to the remote service; Close signals end of input. The outcome is
// delivered asynchronously through done.
type Uploader interface {
	UploadStream(ctx context.Context, opts Options, done Callback) (io.WriteCloser, error)
}

// Folders names the destination folder per kind.
type Folders struct {
	Image string
	Video string
}

const (
	DefaultImageFolder = "next-cloudinary-uploader"
	DefaultVideoFolder = "video-uploads"
)

// OptionsFor returns the upload parameters for kind.
func OptionsFor(kind Kind, folders Folders) Options {
	if kind == KindVideo {
		folder := folders.Video
		if folder == "" {
			folder = DefaultVideoFolder
		}
		return Options{
			Folder:         folder,
			ResourceType:   "video",
			Transformation: &Transformation{Quality: "auto", Format: "mp4"},
		}
	}
	folder := folders.Image
	if folder == "" {
		folder = DefaultImageFolder
	}
	return Options{Folder: folder}
}
