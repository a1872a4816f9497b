// Package platform reads challenge submissions, reviews and member handles
// from the platform APIs.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/rest"
	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
)

// Client talks to the v5 submission API and the v3 member API.
type Client struct {
	v5 *rest.Client
	v3 *rest.Client
}

// New creates a Client. Both APIs authenticate with tokens from ts.
func New(v5Base, v3Base string, ts rest.TokenSource, opts ...rest.Option) *Client {
	return &Client{
		v5: rest.New("platform", v5Base, ts, opts...),
		v3: rest.New("members", v3Base, ts, opts...),
	}
}

// ListSubmissions returns one page of a challenge's submissions.
func (c *Client) ListSubmissions(ctx context.Context, challengeID int64, page, pageSize int) ([]model.Submission, error) {
	q := url.Values{}
	q.Set("challengeId", strconv.FormatInt(challengeID, 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(pageSize))

	resp, err := c.v5.DoOK(ctx, "list_submissions", http.MethodGet, "/submissions", q, nil)
	if err != nil {
		return nil, err
	}
	var subs []model.Submission
	if err := rest.DecodeJSON("list_submissions", resp, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// FindReviewType returns the id of the first review type called name.
func (c *Client) FindReviewType(ctx context.Context, name string) (string, bool, error) {
	resp, err := c.v5.DoOK(ctx, "find_review_type", http.MethodGet, "/reviewTypes", url.Values{"name": {name}}, nil)
	if err != nil {
		return "", false, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return "", false, fmt.Errorf("find_review_type: %w", ErrInvalidBody)
	}
	id := gjson.GetBytes(resp.Body, "0.id")
	if !id.Exists() || id.String() == "" {
		return "", false, nil
	}
	return id.String(), true, nil
}

// ListReviews returns the reviews of a submission with the given type and score.
func (c *Client) ListReviews(ctx context.Context, submissionID, typeID string, score float64) ([]model.Review, error) {
	q := url.Values{}
	q.Set("submissionId", submissionID)
	q.Set("typeId", typeID)
	q.Set("score", strconv.FormatFloat(score, 'f', -1, 64))

	resp, err := c.v5.DoOK(ctx, "list_reviews", http.MethodGet, "/reviews", q, nil)
	if err != nil {
		return nil, err
	}
	var reviews []model.Review
	if err := rest.DecodeJSON("list_reviews", resp, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetHandle returns the display handle of a member. The v3 API reports its
// own status inside the body, which must be successful as well.
func (c *Client) GetHandle(ctx context.Context, memberID string) (string, error) {
	resp, err := c.v3.DoOK(ctx, "get_handle", http.MethodGet, "/users", url.Values{"filter": {"id=" + memberID}}, nil)
	if err != nil {
		return "", err
	}

	result := gjson.GetBytes(resp.Body, "result")
	status := result.Get("status").Int()
	if !result.Get("success").Bool() || status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: member %s: %s", ErrMemberLookup, memberID, result.Get("content").Raw)
	}
	handle := result.Get("content.0.handle").String()
	if handle == "" {
		return "", fmt.Errorf("%w: member %s", ErrHandleNotFound, memberID)
	}
	return handle, nil
}
