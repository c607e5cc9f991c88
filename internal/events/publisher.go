package events

import (
	"context"
	"encoding/json"
	"time"

	models "github.com/fathima-sithara/media-service/internal/media"
	"github.com/segmentio/kafka-go"
)

type VideoUploadedEvent struct {
	VideoID        string  `json:"video_id"`
	UserID         string  `json:"user_id"`
	PublicID       string  `json:"public_id"`
	Title          string  `json:"title"`
	OriginalSize   string  `json:"original_size"`
	CompressedSize string  `json:"compressed_size"`
	Duration       float64 `json:"duration"`
}

func NewVideoUploadedEvent(userID string, v *models.Video) VideoUploadedEvent {
	return VideoUploadedEvent{
		VideoID:        v.ID,
		UserID:         userID,
		PublicID:       v.PublicID,
		Title:          v.Title,
		OriginalSize:   v.OriginalSize,
		CompressedSize: v.CompressedSize,
		Duration:       v.Duration,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends video events to Kafka. A nil Publisher drops events.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: w}
}

func (p *Publisher) PublishVideoUploaded(ctx context.Context, ev VideoUploadedEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.VideoID), Value: b, Time: time.Now()})
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
