package handlers

import (
	"fmt"
	"io"

	models "github.com/fathima-sithara/media-service/internal/media"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"github.com/gofiber/fiber/v2"
)

const (
	fieldFile         = "file"
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldOriginalSize = "originalSize"
)

// extractPayload reads the multipart "file" part into memory along with the
// optional text fields. A body that is not multipart counts as having no file.
func extractPayload(c *fiber.Ctx) (*models.UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrMissingFile, err)
	}
	files := form.File[fieldFile]
	if len(files) == 0 {
		return nil, utils.ErrMissingFile
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s part: %w", fieldFile, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s part: %w", fieldFile, err)
	}

	first := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return &models.UploadRequest{
		Payload: data,
		Fields: models.Fields{
			Title:        first(fieldTitle),
			Description:  first(fieldDescription),
			OriginalSize: first(fieldOriginalSize),
		},
	}, nil
}
