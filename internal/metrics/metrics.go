package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts upload outcomes and ingestion latency.
type Recorder struct {
	uploads  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Uploads by media kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "media_ingest_duration_seconds",
			Help:    "Time spent waiting on the ingestion service.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"kind"}),
		gatherer: reg,
	}
	reg.MustRegister(r.uploads, r.duration)
	return r
}

func (r *Recorder) Upload(kind, outcome string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) Ingest(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// Handler serves the registry for Prometheus scraping
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
}
