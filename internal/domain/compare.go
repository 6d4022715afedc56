package domain

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is one person to compare against the target. Name is opaque
// and passed through to the result unchanged.
type Candidate struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ComparisonRequest is the body of POST /compare.
type ComparisonRequest struct {
	TargetURL string      `json:"target_url"`
	People    []Candidate `json:"people"`
}

// MatchResult is a candidate whose score passed the match threshold.
// Probability is an integral value in [0, 100].
type MatchResult struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// ComparisonResponse lists matches ordered by probability, highest first.
// Ties have no defined order.
type ComparisonResponse struct {
	Matches []MatchResult `json:"matches"`
}

// SkipReason classifies why an image did not contribute to the result.
type SkipReason string

const (
	SkipFetchFailed      SkipReason = "fetch_failed"
	SkipNoFace           SkipReason = "no_face"
	SkipExtractionFailed SkipReason = "extraction_failed"
	SkipScoreFailed      SkipReason = "score_failed"
	SkipBelowThreshold   SkipReason = "below_threshold"
	SkipCancelled        SkipReason = "cancelled"
)

// ComparisonAudit is a persisted summary of one comparison. It never holds
// images or signatures. SkippedCount excludes candidates that were scored
// but fell below the threshold.
type ComparisonAudit struct {
	ID                  uuid.UUID `json:"id"`
	TargetStatus        string    `json:"target_status"`
	CandidatesCount     int       `json:"candidates_count"`
	MatchesCount        int       `json:"matches_count"`
	SkippedCount        int       `json:"skipped_count"`
	TopMatchName        *string   `json:"top_match_name,omitempty"`
	TopMatchProbability *float64  `json:"top_match_probability,omitempty"`
	Threshold           float64   `json:"threshold"`
	Engine              string    `json:"engine"`
	LatencyMs           int64     `json:"latency_ms"`
	ClientIP            string    `json:"client_ip"`
	CreatedAt           time.Time `json:"created_at"`
}
