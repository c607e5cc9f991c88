package middleware

import (
	"time"

	"github.com/fathima-sithara/media-service/internal/auth"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger writes one line per request. Upload failures are already
// logged with their cause by the handlers, so this only records the outcome.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []interface{}{
			"method", c.Method(),
			"route", c.Route().Path,
			"ip", c.IP(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		}
		if id, ok := auth.FromLocals(c); ok {
			fields = append(fields, "user_id", id.UserID)
		}
		if err != nil {
			// fiber's error handler has not written the status yet
			fields = append(fields, "error", err)
		}
		logger.Infow("request", fields...)
		return err
	}
}
