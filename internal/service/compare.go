package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/face"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

type ImageFetcher interface {
	FetchAndDecode(ctx context.Context, rawURL string) (image.Image, error)
}

type SignatureExtractor interface {
	Extract(ctx context.Context, img image.Image) (provider.Signature, error)
}

type SignatureComparator interface {
	Score(a, b provider.Signature) (float64, error)
	IsMatch(score float64) bool
	Threshold() float64
}

type ComparisonAuditRepository interface {
	Create(ctx context.Context, audit *domain.ComparisonAudit) error
}

const (
	defaultConcurrency   = 4
	defaultMaxCandidates = 100
	defaultTimeout       = 60 * time.Second
	auditTimeout         = 5 * time.Second
)

// targetStatusOK marks a comparison whose target produced a signature
const targetStatusOK = "ok"

type CompareService struct {
	fetcher       ImageFetcher
	extractor     SignatureExtractor
	comparator    SignatureComparator
	logger        *slog.Logger
	auditRepo     ComparisonAuditRepository
	engineName    string
	concurrency   int
	maxCandidates int
	timeout       time.Duration
}

func NewCompareService(
	fetcher ImageFetcher,
	extractor SignatureExtractor,
	comparator SignatureComparator,
	logger *slog.Logger,
) *CompareService {
	return &CompareService{
		fetcher:       fetcher,
		extractor:     extractor,
		comparator:    comparator,
		logger:        logger,
		concurrency:   defaultConcurrency,
		maxCandidates: defaultMaxCandidates,
		timeout:       defaultTimeout,
	}
}

// WithConcurrency bounds how many candidates are processed at once. Engine
// access stays serialized regardless.
func (s *CompareService) WithConcurrency(n int) *CompareService {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

func (s *CompareService) WithMaxCandidates(n int) *CompareService {
	if n > 0 {
		s.maxCandidates = n
	}
	return s
}

// WithTimeout sets the overall deadline of one comparison. Zero disables it.
func (s *CompareService) WithTimeout(d time.Duration) *CompareService {
	s.timeout = d
	return s
}

// WithAudit enables best-effort persistence of comparison summaries
func (s *CompareService) WithAudit(repo ComparisonAuditRepository, engineName string) *CompareService {
	s.auditRepo = repo
	s.engineName = engineName
	return s
}

// candidateOutcome is the per-slot result of one candidate
type candidateOutcome struct {
	match  *domain.MatchResult
	reason domain.SkipReason
}

// Compare ranks req.People by similarity to the face in req.TargetURL.
// Item-level failures never fail the call: the item is left out and logged.
// The only error is a request with more people than allowed.
func (s *CompareService) Compare(ctx context.Context, req *domain.ComparisonRequest, clientIP string) (*domain.ComparisonResponse, error) {
	if len(req.People) > s.maxCandidates {
		return nil, domain.ErrTooManyCandidates.WithError(
			fmt.Errorf("got %d people, limit is %d", len(req.People), s.maxCandidates))
	}

	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp := &domain.ComparisonResponse{Matches: []domain.MatchResult{}}

	target, reason, err := s.signatureFor(ctx, req.TargetURL)
	if err != nil {
		s.logger.Warn("target skipped, returning no matches",
			"reason", reason,
			"url", req.TargetURL,
			"candidates", len(req.People),
			"error", err,
		)
		s.finish(ctx, req, resp, string(reason), len(req.People), start, clientIP)
		return resp, nil
	}

	outcomes := make([]candidateOutcome, len(req.People))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, candidate := range req.People {
		g.Go(func() error {
			outcomes[i] = s.evaluate(ctx, i, candidate, target)
			return nil
		})
	}
	_ = g.Wait()

	skipped := 0
	for _, outcome := range outcomes {
		switch {
		case outcome.match != nil:
			resp.Matches = append(resp.Matches, *outcome.match)
		case outcome.reason != domain.SkipBelowThreshold:
			skipped++
		}
	}

	sort.SliceStable(resp.Matches, func(i, j int) bool {
		return resp.Matches[i].Probability > resp.Matches[j].Probability
	})

	s.finish(ctx, req, resp, targetStatusOK, skipped, start, clientIP)
	return resp, nil
}

// evaluate runs one candidate through fetch, extract, score and threshold
func (s *CompareService) evaluate(ctx context.Context, index int, candidate domain.Candidate, target provider.Signature) candidateOutcome {
	if ctx.Err() != nil {
		s.skip(index, candidate, domain.SkipCancelled, ctx.Err())
		return candidateOutcome{reason: domain.SkipCancelled}
	}

	sig, reason, err := s.signatureFor(ctx, candidate.ImageURL)
	if err != nil {
		s.skip(index, candidate, reason, err)
		return candidateOutcome{reason: reason}
	}

	score, err := s.comparator.Score(target, sig)
	if err != nil {
		s.skip(index, candidate, domain.SkipScoreFailed, err)
		return candidateOutcome{reason: domain.SkipScoreFailed}
	}

	if !s.comparator.IsMatch(score) {
		s.logger.Debug("candidate below threshold",
			"index", index,
			"name", candidate.Name,
			"score", score,
			"threshold", s.comparator.Threshold(),
		)
		return candidateOutcome{reason: domain.SkipBelowThreshold}
	}

	return candidateOutcome{
		match: &domain.MatchResult{
			Name:        candidate.Name,
			Probability: face.Probability(score),
		},
	}
}

// signatureFor fetches and extracts one image, classifying any failure
func (s *CompareService) signatureFor(ctx context.Context, rawURL string) (provider.Signature, domain.SkipReason, error) {
	img, err := s.fetcher.FetchAndDecode(ctx, rawURL)
	if err != nil {
		return nil, skipReason(ctx, err, domain.SkipFetchFailed), err
	}

	sig, err := s.extractor.Extract(ctx, img)
	if err != nil {
		if errors.Is(err, domain.ErrNoFaceDetected) {
			return nil, domain.SkipNoFace, err
		}
		return nil, skipReason(ctx, err, domain.SkipExtractionFailed), err
	}

	return sig, "", nil
}

func skipReason(ctx context.Context, err error, fallback domain.SkipReason) domain.SkipReason {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.SkipCancelled
	}
	return fallback
}

func (s *CompareService) skip(index int, candidate domain.Candidate, reason domain.SkipReason, err error) {
	level := slog.LevelWarn
	if reason == domain.SkipNoFace {
		level = slog.LevelInfo
	}

	s.logger.Log(context.Background(), level, "candidate skipped",
		"index", index,
		"name", candidate.Name,
		"url", candidate.ImageURL,
		"reason", reason,
		"error", err,
	)
}

// finish logs the summary and records the audit entry
func (s *CompareService) finish(
	ctx context.Context,
	req *domain.ComparisonRequest,
	resp *domain.ComparisonResponse,
	targetStatus string,
	skipped int,
	start time.Time,
	clientIP string,
) {
	latency := time.Since(start)

	s.logger.Info("comparison completed",
		"target_status", targetStatus,
		"candidates", len(req.People),
		"matches", len(resp.Matches),
		"skipped", skipped,
		"latency_ms", latency.Milliseconds(),
	)

	if s.auditRepo == nil {
		return
	}

	audit := &domain.ComparisonAudit{
		ID:              uuid.New(),
		TargetStatus:    targetStatus,
		CandidatesCount: len(req.People),
		MatchesCount:    len(resp.Matches),
		SkippedCount:    skipped,
		Threshold:       s.comparator.Threshold(),
		Engine:          s.engineName,
		LatencyMs:       latency.Milliseconds(),
		ClientIP:        clientIP,
	}
	if len(resp.Matches) > 0 {
		top := resp.Matches[0]
		audit.TopMatchName = &top.Name
		audit.TopMatchProbability = &top.Probability
	}

	// The comparison deadline may already be spent; the audit gets its own.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := s.auditRepo.Create(auditCtx, audit); err != nil {
		s.logger.Error("failed to record comparison audit",
			"audit_id", audit.ID,
			"error", err,
		)
	}
}
