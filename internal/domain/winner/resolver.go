// Package winner determines the winning submission of a completed F2F challenge.
package winner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
	"github.com/topcoder-platform/playoff-processor/pkg/tracing"
)

// Default resolver configuration.
const (
	defaultReviewTypeName = "Virus Scan"
	defaultWinScore       = 100
	defaultPageSize       = 100
)

// ReviewSource exposes the review queries used to recognise a winner.
type ReviewSource interface {
	// FindReviewType returns the id of the named review type; ok is false when none exists.
	FindReviewType(ctx context.Context, name string) (id string, ok bool, err error)
	ListReviews(ctx context.Context, submissionID, typeID string, score float64) ([]model.Review, error)
}

// Platform is everything the resolver reads.
type Platform interface {
	SubmissionLister
	ReviewSource
}

// Resolver finds the first submission holding a winning review.
type Resolver struct {
	platform       Platform
	reviewTypeName string
	winScore       float64
	pageSize       int
	logger         logger.Logger
}

// NewResolver creates a resolver over the given platform client.
func NewResolver(platform Platform, opts ...Option) *Resolver {
	r := &Resolver{
		platform:       platform,
		reviewTypeName: defaultReviewTypeName,
		winScore:       defaultWinScore,
		pageSize:       defaultPageSize,
		logger:         logger.Get().Named("winner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the winning submission of challengeID.
//
// Submissions are checked in retrieval order and the search stops at the
// first one with a review of the configured type and winning score; if more
// than one submission qualifies, the first one seen wins.
func (r *Resolver) Resolve(ctx context.Context, challengeID int64) (sub model.Submission, err error) {
	ctx, span := tracing.Start(ctx, "winner.Resolve", attribute.Int64("challenge.id", challengeID))
	start := time.Now()
	defer func() {
		metrics.RecordWinnerResolutionLatency(float64(time.Since(start).Milliseconds()))
		tracing.End(span, err)
	}()

	typeID, ok, err := r.platform.FindReviewType(ctx, r.reviewTypeName)
	if err != nil {
		return model.Submission{}, fmt.Errorf("find review type %q: %w", r.reviewTypeName, err)
	}
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: %s", ErrReviewTypeNotFound, r.reviewTypeName)
	}

	submissions, err := CollectSubmissions(ctx, r.platform, challengeID, r.pageSize)
	if err != nil {
		return model.Submission{}, err
	}
	r.logger.Debug(ctx, "fetched challenge submissions",
		logger.Int64("challengeId", challengeID),
		logger.Int("count", len(submissions)),
	)

	for _, s := range submissions {
		reviews, err := r.platform.ListReviews(ctx, s.ID, typeID, r.winScore)
		if err != nil {
			return model.Submission{}, fmt.Errorf("list reviews of submission %s: %w", s.ID, err)
		}
		if len(reviews) > 0 {
			if s.MemberID == "" {
				return model.Submission{}, fmt.Errorf("%w: submission %s of challenge %d", ErrMissingMember, s.ID, challengeID)
			}
			span.SetAttributes(attribute.String("submission.id", s.ID), attribute.String("member.id", s.MemberID))
			return s, nil
		}
	}
	return model.Submission{}, fmt.Errorf("%w for challenge %d", ErrNoWinner, challengeID)
}
