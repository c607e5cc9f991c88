package storage

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fathima-sithara/media-service/internal/ingest"
	utils "github.com/fathima-sithara/media-service/internal/utis"
)

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Uploader stores uploads as S3 objects. No transcoding happens, so
// assets never carry a duration.
type S3Uploader struct {
	uploader objectUploader
	bucket   string
}

func NewS3Uploader(ctx context.Context, region, bucket, endpoint string) (*S3Uploader, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// custom endpoint (MinIO)
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{uploader: manager.NewUploader(client), bucket: bucket}, nil
}

func (s *S3Uploader) UploadStream(ctx context.Context, opts ingest.Options, done ingest.Callback) (io.WriteCloser, error) {
	key := opts.Folder + "/" + utils.NewID()
	pr, pw := io.Pipe()
	body := &countingReader{r: pr}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ResourceType == "video" {
		input.ContentType = aws.String("video/mp4")
	}
	go func() {
		if _, err := s.uploader.Upload(ctx, input); err != nil {
			_ = pr.CloseWithError(err)
			done(nil, err)
			return
		}
		_ = pr.Close()
		done(&ingest.Asset{PublicID: key, Bytes: body.n.Load()}, nil)
	}()
	return pw, nil
}

type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}
