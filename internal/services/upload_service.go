package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fathima-sithara/media-service/internal/events"
	"github.com/fathima-sithara/media-service/internal/ingest"
	models "github.com/fathima-sithara/media-service/internal/media"
	"github.com/fathima-sithara/media-service/internal/metrics"
	"github.com/fathima-sithara/media-service/internal/repository"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"go.uber.org/zap"
)

type Ingester interface {
	Ingest(ctx context.Context, payload []byte, kind ingest.Kind) (*ingest.Asset, error)
}

type EventPublisher interface {
	PublishVideoUploaded(ctx context.Context, ev events.VideoUploadedEvent) error
}

type UploadService struct {
	ingester Ingester
	store    repository.Store
	metrics  *metrics.Recorder
	events   EventPublisher
	log      *zap.SugaredLogger
}

// NewUploadService wires the pipeline. A nil ingester means the ingestion
// service is not configured; every upload then fails with
// utils.ErrMissingConfiguration. metrics and events may be nil.
func NewUploadService(ing Ingester, store repository.Store, rec *metrics.Recorder, ev EventPublisher, log *zap.SugaredLogger) *UploadService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &UploadService{ingester: ing, store: store, metrics: rec, events: ev, log: log}
}

// Configured reports whether uploads can reach an ingestion service.
func (s *UploadService) Configured() bool {
	return s.ingester != nil
}

// UploadImage ingests an image. Nothing is persisted.
func (s *UploadService) UploadImage(ctx context.Context, req *models.UploadRequest) (*ingest.Asset, error) {
	asset, err := s.ingest(ctx, req.Payload, ingest.KindImage)
	if err != nil {
		return nil, err
	}
	s.metrics.Upload(ingest.KindImage.String(), "success")
	return asset, nil
}

// UploadVideo ingests a video and records it once ingestion has completed.
func (s *UploadService) UploadVideo(ctx context.Context, req *models.UploadRequest) (*models.Video, error) {
	asset, err := s.ingest(ctx, req.Payload, ingest.KindVideo)
	if err != nil {
		return nil, err
	}
	video, err := s.Persist(ctx, asset, req.Fields)
	if err != nil {
		s.metrics.Upload(ingest.KindVideo.String(), "persistence_error")
		return nil, err
	}
	s.metrics.Upload(ingest.KindVideo.String(), "success")

	if s.events != nil {
		if err := s.events.PublishVideoUploaded(ctx, events.NewVideoUploadedEvent(req.UserID, video)); err != nil {
			s.log.Warnw("publish video.uploaded failed", "video_id", video.ID, "error", err)
		}
	}
	return video, nil
}

// Persist writes one video record for asset. The store connection is
// released on every path.
func (s *UploadService) Persist(ctx context.Context, asset *ingest.Asset, fields models.Fields) (*models.Video, error) {
	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire: %v", utils.ErrPersistence, err)
	}
	defer conn.Release(context.WithoutCancel(ctx))

	video := NewVideoRecord(asset, fields)
	if err := conn.InsertVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("%w: insert: %v", utils.ErrPersistence, err)
	}
	return video, nil
}

// NewVideoRecord maps an ingested asset and its form fields to a record.
func NewVideoRecord(asset *ingest.Asset, fields models.Fields) *models.Video {
	return &models.Video{
		Title:          fields.Title,
		Description:    fields.Description,
		PublicID:       asset.PublicID,
		OriginalSize:   fields.OriginalSize,
		CompressedSize: strconv.FormatInt(asset.Bytes, 10),
		Duration:       asset.Duration,
	}
}

func (s *UploadService) ingest(ctx context.Context, payload []byte, kind ingest.Kind) (*ingest.Asset, error) {
	if s.ingester == nil {
		return nil, utils.ErrMissingConfiguration
	}
	start := time.Now()
	asset, err := s.ingester.Ingest(ctx, payload, kind)
	s.metrics.Ingest(kind.String(), time.Since(start))
	if err != nil {
		s.metrics.Upload(kind.String(), "upstream_error")
		return nil, err
	}
	return asset, nil
}
