package winner

import (
	"context"
	"fmt"
	"iter"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
)

// SubmissionLister fetches one 1-indexed page of a challenge's submissions.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, challengeID int64, page, pageSize int) ([]model.Submission, error)
}

// Pages returns the submission pages of a challenge in increasing page order.
// The sequence ends after the first page holding fewer than pageSize items
// (an empty page included) or after the first error, which is yielded once.
// Pages is lazy and restartable: each range starts again from page 1.
func Pages(ctx context.Context, lister SubmissionLister, challengeID int64, pageSize int) iter.Seq2[[]model.Submission, error] {
	return func(yield func([]model.Submission, error) bool) {
		if pageSize < 1 {
			yield(nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize))
			return
		}
		for page := 1; ; page++ {
			items, err := lister.ListSubmissions(ctx, challengeID, page, pageSize)
			if err != nil {
				yield(nil, fmt.Errorf("list submissions of challenge %d page %d: %w", challengeID, page, err))
				return
			}
			if !yield(items, nil) || len(items) < pageSize {
				return
			}
		}
	}
}

// CollectSubmissions concatenates every page in retrieval order.
func CollectSubmissions(ctx context.Context, lister SubmissionLister, challengeID int64, pageSize int) ([]model.Submission, error) {
	var all []model.Submission
	for items, err := range Pages(ctx, lister, challengeID, pageSize) {
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}
