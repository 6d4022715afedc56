package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
)

// EventFaceCompared marks one finished comparison request
const EventFaceCompared = "FACE_COMPARED"

// SlogLogger writes comparison audits to the structured log instead of a
// database. It satisfies the same Create contract as the Postgres repository.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Create records an audit event
func (l *SlogLogger) Create(ctx context.Context, audit *domain.ComparisonAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(audit)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", EventFaceCompared),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", audit.ID.String()),
		slog.String("event_type", EventFaceCompared),
		slog.String("engine", audit.Engine),
		slog.Bool("success", audit.TargetStatus == "ok"),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}
