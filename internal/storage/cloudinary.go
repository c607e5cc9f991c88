package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/fathima-sithara/media-service/internal/ingest"
)

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader streams uploads into the Cloudinary upload API.
type CloudinaryUploader struct {
	api cloudinaryAPI
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{api: &cld.Upload}, nil
}

func (u *CloudinaryUploader) UploadStream(ctx context.Context, opts ingest.Options, done ingest.Callback) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	params := uploadParams(opts)
	go func() {
		res, err := u.api.Upload(ctx, pr, params)
		if err == nil && res != nil && res.Error.Message != "" {
			err = errors.New(res.Error.Message)
		}
		if err == nil && res == nil {
			err = errors.New("cloudinary returned no result")
		}
		// unblock a writer still feeding the pipe
		if err != nil {
			_ = pr.CloseWithError(err)
			done(nil, err)
			return
		}
		_ = pr.Close()
		done(&ingest.Asset{
			PublicID: res.PublicID,
			Bytes:    int64(res.Bytes),
			Duration: durationOf(res),
		}, nil)
	}()
	return pw, nil
}

func uploadParams(opts ingest.Options) uploader.UploadParams {
	p := uploader.UploadParams{
		Folder:       opts.Folder,
		ResourceType: opts.ResourceType,
	}
	if t := opts.Transformation; t != nil {
		p.Transformation = fmt.Sprintf("q_%s,f_%s", t.Quality, t.Format)
	}
	return p
}

// durationOf reads "duration" from the raw response; the typed result does
// not carry it. The SDK stores the decoded body behind a pointer.
func durationOf(res *uploader.UploadResult) float64 {
	var raw map[string]interface{}
	switch r := res.Response.(type) {
	case *map[string]interface{}:
		if r != nil {
			raw = *r
		}
	case map[string]interface{}:
		raw = r
	}
	switch d := raw["duration"].(type) {
	case float64:
		return d
	case int:
		return float64(d)
	}
	return 0
}
