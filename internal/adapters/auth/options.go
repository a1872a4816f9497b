package auth

import (
	"net/http"
	"time"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithCacheTTL caps how long a token is reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl >= 0 {
			p.ttl = ttl
		}
	}
}

// WithRefreshSkew renews tokens this long before they expire.
func WithRefreshSkew(skew time.Duration) Option {
	return func(p *Provider) {
		if skew >= 0 {
			p.skew = skew
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger for the provider.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}
