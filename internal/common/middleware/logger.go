package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger logs one structured line per request.
func Logger(logger *zap.Logger) fiber.Handler {
	logger = logger.Named("http")
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Duration("latency", time.Since(start)),
			zap.String("content_type", c.Get("Content-Type")),
		}
		if err != nil {
			logger.Warn("request failed", append(fields, zap.Error(err))...)
			return err
		}
		logger.Info("request", fields...)
		return nil
	}
}
