package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
)

type ComparisonAuditRepository struct {
	pool PgxPool
}

func NewComparisonAuditRepository(pool PgxPool) *ComparisonAuditRepository {
	return &ComparisonAuditRepository{pool: pool}
}

// Create inserts a new comparison audit record
func (r *ComparisonAuditRepository) Create(ctx context.Context, audit *domain.ComparisonAudit) error {
	query := `
		INSERT INTO comparison_audits (
			id, target_status, candidates_count, matches_count, skipped_count,
			top_match_name, top_match_probability, threshold, engine, latency_ms, client_ip, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING created_at
	`

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		audit.ID,
		audit.TargetStatus,
		audit.CandidatesCount,
		audit.MatchesCount,
		audit.SkippedCount,
		audit.TopMatchName,
		audit.TopMatchProbability,
		audit.Threshold,
		audit.Engine,
		audit.LatencyMs,
		audit.ClientIP,
	).Scan(&audit.CreatedAt)

	if err != nil {
		return fmt.Errorf("create comparison audit: %w", err)
	}

	return nil
}

// DeleteOlderThan removes audit records created before cutoff and returns
// how many were deleted
func (r *ComparisonAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comparison_audits WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete comparison audits: %w", err)
	}
	return tag.RowsAffected(), nil
}
