package winner_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/internal/domain/winner"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakePlatform serves pre-split submission pages and a set of winning submission ids.
type fakePlatform struct {
	pages        [][]model.Submission
	reviewTypeID string
	winners      map[string]bool
	pageErr      error
	reviewErr    error

	pageRequests   []int
	reviewRequests []string
	reviewTypeName string
	reviewTypeArg  string
	scoreArg       float64
}

func (f *fakePlatform) ListSubmissions(_ context.Context, _ int64, page, _ int) ([]model.Submission, error) {
	f.pageRequests = append(f.pageRequests, page)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	if page-1 < len(f.pages) {
		return f.pages[page-1], nil
	}
	return nil, nil
}

func (f *fakePlatform) FindReviewType(_ context.Context, name string) (string, bool, error) {
	f.reviewTypeName = name
	if f.reviewTypeID == "" {
		return "", false, nil
	}
	return f.reviewTypeID, true, nil
}

func (f *fakePlatform) ListReviews(_ context.Context, submissionID, typeID string, score float64) ([]model.Review, error) {
	f.reviewRequests = append(f.reviewRequests, submissionID)
	f.reviewTypeArg, f.scoreArg = typeID, score
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	if f.winners[submissionID] {
		return []model.Review{{SubmissionID: submissionID, TypeID: typeID, Score: score}}, nil
	}
	return nil, nil
}

func makePage(prefix string, n int) []model.Submission {
	page := make([]model.Submission, n)
	for i := range page {
		page[i] = model.Submission{ID: fmt.Sprintf("%s%d", prefix, i), MemberID: fmt.Sprintf("M%s%d", prefix, i)}
	}
	return page
}

func TestPages(t *testing.T) {
	ctx := context.Background()

	Convey("Given pages of sizes [pageSize, pageSize, k] with k < pageSize", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("a", 3), makePage("b", 3), makePage("c", 2)}}

		all, err := winner.CollectSubmissions(ctx, f, 1, 3)

		Convey("Then exactly three pages are requested in order", func() {
			So(err, ShouldBeNil)
			So(f.pageRequests, ShouldResemble, []int{1, 2, 3})
			So(len(all), ShouldEqual, 8)
			So(all[0].ID, ShouldEqual, "a0")
			So(all[7].ID, ShouldEqual, "c1")
		})
	})

	Convey("Given a short first page", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("a", 2)}}

		all, err := winner.CollectSubmissions(ctx, f, 1, 3)

		Convey("Then exactly one page is requested", func() {
			So(err, ShouldBeNil)
			So(f.pageRequests, ShouldResemble, []int{1})
			So(len(all), ShouldEqual, 2)
		})
	})

	Convey("Given full pages followed by an empty page", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("a", 2), makePage("b", 2)}}

		all, err := winner.CollectSubmissions(ctx, f, 1, 2)

		Convey("Then the empty page terminates the sequence", func() {
			So(err, ShouldBeNil)
			So(f.pageRequests, ShouldResemble, []int{1, 2, 3})
			So(len(all), ShouldEqual, 4)
		})
	})

	Convey("Given a page sequence", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("a", 2), makePage("b", 2), makePage("c", 1)}}
		seq := winner.Pages(ctx, f, 1, 2)

		Convey("When the consumer stops early", func() {
			for range seq {
				break
			}

			Convey("Then no further pages are fetched", func() {
				So(f.pageRequests, ShouldResemble, []int{1})
			})
		})

		Convey("When ranged twice", func() {
			for range seq {
			}
			for range seq {
			}

			Convey("Then each range restarts from page one", func() {
				So(f.pageRequests, ShouldResemble, []int{1, 2, 3, 1, 2, 3})
			})
		})
	})

	Convey("Given a failing page request", t, func() {
		boom := errors.New("connection reset")
		f := &fakePlatform{pageErr: boom}

		_, err := winner.CollectSubmissions(ctx, f, 7, 10)

		Convey("Then the error is surfaced once", func() {
			So(errors.Is(err, boom), ShouldBeTrue)
			So(f.pageRequests, ShouldResemble, []int{1})
		})
	})

	Convey("Given a non-positive page size", t, func() {
		f := &fakePlatform{}

		_, err := winner.CollectSubmissions(ctx, f, 7, 0)

		Convey("Then nothing is requested", func() {
			So(errors.Is(err, winner.ErrInvalidPageSize), ShouldBeTrue)
			So(f.pageRequests, ShouldBeEmpty)
		})
	})
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	Convey("Given two submissions where only the second has a winning review", t, func() {
		f := &fakePlatform{
			pages:        [][]model.Submission{{{ID: "a", MemberID: "M1"}, {ID: "b", MemberID: "M2"}}},
			reviewTypeID: "rt1",
			winners:      map[string]bool{"b": true},
		}
		r := winner.NewResolver(f, winner.WithReviewTypeName("Virus Scan"), winner.WithWinScore(100), winner.WithPageSize(100))

		sub, err := r.Resolve(ctx, 123)

		Convey("Then the second submission wins", func() {
			So(err, ShouldBeNil)
			So(sub.MemberID, ShouldEqual, "M2")
			So(f.reviewTypeName, ShouldEqual, "Virus Scan")
			So(f.reviewTypeArg, ShouldEqual, "rt1")
			So(f.scoreArg, ShouldEqual, 100)
		})
	})

	Convey("Given five submissions where only the third qualifies", t, func() {
		f := &fakePlatform{
			pages:        [][]model.Submission{makePage("s", 5)},
			reviewTypeID: "rt1",
			winners:      map[string]bool{"s2": true},
		}
		r := winner.NewResolver(f, winner.WithPageSize(10))

		sub, err := r.Resolve(ctx, 1)

		Convey("Then exactly three review queries are issued", func() {
			So(err, ShouldBeNil)
			So(sub.ID, ShouldEqual, "s2")
			So(f.reviewRequests, ShouldResemble, []string{"s0", "s1", "s2"})
		})
	})

	Convey("Given the winner on a later page", t, func() {
		f := &fakePlatform{
			pages:        [][]model.Submission{makePage("a", 2), makePage("b", 2), makePage("c", 1)},
			reviewTypeID: "rt1",
			winners:      map[string]bool{"c0": true},
		}
		r := winner.NewResolver(f, winner.WithPageSize(2))

		sub, err := r.Resolve(ctx, 1)

		Convey("Then it is found regardless of its page", func() {
			So(err, ShouldBeNil)
			So(sub.MemberID, ShouldEqual, "Mc0")
		})
	})

	Convey("Given two qualifying submissions", t, func() {
		f := &fakePlatform{
			pages:        [][]model.Submission{makePage("s", 3)},
			reviewTypeID: "rt1",
			winners:      map[string]bool{"s1": true, "s2": true},
		}
		r := winner.NewResolver(f)

		sub, err := r.Resolve(ctx, 1)

		Convey("Then the first in retrieval order wins", func() {
			So(err, ShouldBeNil)
			So(sub.ID, ShouldEqual, "s1")
			So(f.reviewRequests, ShouldResemble, []string{"s0", "s1"})
		})
	})

	Convey("Given an unknown review type", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("s", 1)}}
		r := winner.NewResolver(f)

		_, err := r.Resolve(ctx, 1)

		Convey("Then resolution fails before listing submissions", func() {
			So(errors.Is(err, winner.ErrReviewTypeNotFound), ShouldBeTrue)
			So(f.pageRequests, ShouldBeEmpty)
		})
	})

	Convey("Given no qualifying submission", t, func() {
		f := &fakePlatform{pages: [][]model.Submission{makePage("s", 2)}, reviewTypeID: "rt1"}
		r := winner.NewResolver(f)

		_, err := r.Resolve(ctx, 30054692)

		Convey("Then a not-found error names the challenge", func() {
			So(errors.Is(err, winner.ErrNoWinner), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "30054692")
			So(len(f.reviewRequests), ShouldEqual, 2)
		})
	})

	Convey("Given a challenge without submissions", t, func() {
		f := &fakePlatform{reviewTypeID: "rt1"}
		r := winner.NewResolver(f)

		_, err := r.Resolve(ctx, 5)

		So(errors.Is(err, winner.ErrNoWinner), ShouldBeTrue)
		So(f.reviewRequests, ShouldBeEmpty)
	})

	Convey("Given a failing review query", t, func() {
		boom := errors.New("timeout")
		f := &fakePlatform{pages: [][]model.Submission{makePage("s", 2)}, reviewTypeID: "rt1", reviewErr: boom}
		r := winner.NewResolver(f)

		_, err := r.Resolve(ctx, 5)

		So(errors.Is(err, boom), ShouldBeTrue)
		So(f.reviewRequests, ShouldResemble, []string{"s0"})
	})

	Convey("Given a winning submission without a member id", t, func() {
		f := &fakePlatform{
			pages:        [][]model.Submission{{{ID: "a", MemberID: "M1"}, {ID: "b"}}},
			reviewTypeID: "rt1",
			winners:      map[string]bool{"b": true},
		}
		r := winner.NewResolver(f)

		_, err := r.Resolve(ctx, 30054692)

		Convey("Then resolution fails naming the submission", func() {
			So(errors.Is(err, winner.ErrMissingMember), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "submission b")
			So(err.Error(), ShouldContainSubstring, "30054692")
		})
	})

	Convey("Given a resolver without options", t, func() {
		f := &fakePlatform{reviewTypeID: "rt1"}
		r := winner.NewResolver(f)

		_, _ = r.Resolve(ctx, 5)

		Convey("Then it looks up the virus scan review type", func() {
			So(f.reviewTypeName, ShouldEqual, "Virus Scan")
		})
	})
}
