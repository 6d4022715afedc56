package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys for the comparison outcome, read back by Logger
const (
	localCandidates = "iris.candidates"
	localMatches    = "iris.matches"
)

// SetComparisonOutcome records what a comparison produced so the request
// log line carries it
func SetComparisonOutcome(c *fiber.Ctx, candidates, matches int) {
	c.Locals(localCandidates, candidates)
	c.Locals(localMatches, matches)
}

func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		latency := time.Since(start)

		// The error handler has not run yet; derive the status it will write.
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFromError(err)
		}

		logLevel := slog.LevelInfo
		if status >= 500 {
			logLevel = slog.LevelError
		} else if status >= 400 {
			logLevel = slog.LevelWarn
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
			slog.String("request_id", requestID(c)),
		}
		if candidates, ok := c.Locals(localCandidates).(int); ok {
			matches, _ := c.Locals(localMatches).(int)
			attrs = append(attrs, slog.Int("candidates", candidates), slog.Int("matches", matches))
		}

		logger.Log(c.Context(), logLevel, "http request", attrs...)

		return err
	}
}
