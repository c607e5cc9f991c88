package handlers

import (
	"errors"

	"github.com/fathima-sithara/media-service/internal/ingest"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"github.com/gofiber/fiber/v2"
)

const (
	msgUnauthorized  = "Unauthorized"
	msgMissingConfig = "Cloudinary configuration is missing"
	msgNoFile        = "No file provided"
	msgImageFailed   = "Image upload failed"
	msgVideoFailed   = "Upload Video failed"
)

func failedMessage(kind ingest.Kind) string {
	if kind == ingest.KindVideo {
		return msgVideoFailed
	}
	return msgImageFailed
}

// fail logs err and writes the fixed response for its category. The cause
// never reaches the client.
func (h *Handler) fail(c *fiber.Ctx, kind ingest.Kind, err error) error {
	switch {
	case errors.Is(err, utils.ErrUnauthenticated):
		h.log.Infow("upload rejected", "kind", kind.String(), "ip", c.IP())
		return utils.JSONError(c, fiber.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, utils.ErrMissingConfiguration):
		h.log.Errorw("ingestion not configured", "kind", kind.String())
		return utils.JSONError(c, fiber.StatusInternalServerError, msgMissingConfig)
	case errors.Is(err, utils.ErrMissingFile):
		h.log.Infow("upload without file", "kind", kind.String(), "error", err)
		return utils.JSONError(c, fiber.StatusBadRequest, msgNoFile)
	}
	h.log.Errorw("upload failed", "kind", kind.String(), "error", err)
	return utils.JSONError(c, fiber.StatusInternalServerError, failedMessage(kind))
}
