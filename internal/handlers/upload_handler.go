package handlers

import (
	"github.com/fathima-sithara/media-service/internal/auth"
	"github.com/fathima-sithara/media-service/internal/ingest"
	models "github.com/fathima-sithara/media-service/internal/media"
	service "github.com/fathima-sithara/media-service/internal/services"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	gate auth.Gate
	svc  *service.UploadService
	log  *zap.SugaredLogger
}

func NewHandler(gate auth.Gate, svc *service.UploadService, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{gate: gate, svc: svc, log: log}
}

// Register mounts the upload routes. extra (rate limiting) runs after the
// identity check and before the upload handler, so rejected callers cause no
// side effects.
func (h *Handler) Register(r fiber.Router, extra ...fiber.Handler) {
	api := r.Group("/api")
	api.Post("/image-upload", chain(h.authenticate(ingest.KindImage), extra, h.UploadImage)...)
	api.Post("/video-upload", chain(h.authenticate(ingest.KindVideo), extra, h.UploadVideo)...)
}

func chain(first fiber.Handler, extra []fiber.Handler, last fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(extra)+2)
	out = append(out, first)
	out = append(out, extra...)
	return append(out, last)
}

func (h *Handler) authenticate(kind ingest.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := h.identity(c)
		if !ok {
			return h.fail(c, kind, utils.ErrUnauthenticated)
		}
		auth.Store(c, id)
		return c.Next()
	}
}

func (h *Handler) identity(c *fiber.Ctx) (auth.Identity, bool) {
	if id, ok := auth.FromLocals(c); ok {
		return id, true
	}
	return h.gate.Check(c)
}

// POST /api/image-upload (multipart/form-data 'file')
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	req, err := h.admit(c, ingest.KindImage)
	if err != nil {
		return h.fail(c, ingest.KindImage, err)
	}
	asset, err := h.svc.UploadImage(c.UserContext(), req)
	if err != nil {
		return h.fail(c, ingest.KindImage, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"publicId": asset.PublicID})
}

// POST /api/video-upload (multipart/form-data 'file', 'title', 'description', 'originalSize')
func (h *Handler) UploadVideo(c *fiber.Ctx) error {
	req, err := h.admit(c, ingest.KindVideo)
	if err != nil {
		return h.fail(c, ingest.KindVideo, err)
	}
	video, err := h.svc.UploadVideo(c.UserContext(), req)
	if err != nil {
		return h.fail(c, ingest.KindVideo, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"video": video})
}

// admit runs the checks that precede ingestion: caller identity, ingestion
// configuration, then the payload. The body is untouched until both checks pass.
func (h *Handler) admit(c *fiber.Ctx, kind ingest.Kind) (*models.UploadRequest, error) {
	id, ok := h.identity(c)
	if !ok {
		return nil, utils.ErrUnauthenticated
	}
	if !h.svc.Configured() {
		return nil, utils.ErrMissingConfiguration
	}
	req, err := extractPayload(c)
	if err != nil {
		return nil, err
	}
	req.UserID = id.UserID
	h.log.Debugw("upload received", "kind", kind.String(), "user_id", id.UserID, "bytes", len(req.Payload))
	return req, nil
}
