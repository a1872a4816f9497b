package winner

import "github.com/topcoder-platform/playoff-processor/pkg/logger"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithReviewTypeName sets the review type whose reviews mark a winner.
func WithReviewTypeName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.reviewTypeName = name
		}
	}
}

// WithWinScore sets the score a review must carry to mark a winner.
func WithWinScore(score float64) Option {
	return func(r *Resolver) {
		r.winScore = score
	}
}

// WithPageSize sets the submissions page size.
func WithPageSize(size int) Option {
	return func(r *Resolver) {
		r.pageSize = size
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
