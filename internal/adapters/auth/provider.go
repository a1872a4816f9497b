// Package auth obtains client-credentials access tokens for the outbound APIs.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
)

const (
	defaultRefreshSkew = 30 * time.Second
	defaultHTTPTimeout = 30 * time.Second
)

// Provider names used in logs and metrics.
const (
	ProviderM2M     = "m2m"
	ProviderPlayoff = "playoff"
)

// Provider hands out bearer tokens, fetching a new one when the cached token
// is missing or about to expire.
type Provider struct {
	name       string
	cfg        clientcredentials.Config
	httpClient *http.Client
	ttl        time.Duration
	skew       time.Duration
	now        func() time.Time
	logger     logger.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// New creates a Provider for an arbitrary client-credentials endpoint.
func New(name string, cfg clientcredentials.Config, opts ...Option) *Provider {
	p := &Provider{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		skew:       defaultRefreshSkew,
		now:        time.Now,
		logger:     logger.Get().Named("auth").Named(name),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// M2MConfig describes the platform machine-to-machine client.
type M2MConfig struct {
	TokenURL     string
	Audience     string
	ProxyURL     string
	ClientID     string
	ClientSecret string
}

// NewM2M creates the provider for platform API calls. When a proxy URL is
// configured, token requests are sent there instead of TokenURL.
func NewM2M(c M2MConfig, opts ...Option) *Provider {
	tokenURL := c.TokenURL
	if c.ProxyURL != "" {
		tokenURL = c.ProxyURL
	}
	params := url.Values{}
	if c.Audience != "" {
		params.Set("audience", c.Audience)
	}
	return New(ProviderM2M, clientcredentials.Config{
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		TokenURL:       tokenURL,
		EndpointParams: params,
		AuthStyle:      oauth2.AuthStyleInParams,
	}, opts...)
}

// PlayoffConfig describes the gamification API client.
type PlayoffConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// NewPlayoff creates the provider for gamification API calls.
func NewPlayoff(c PlayoffConfig, opts ...Option) *Provider {
	return New(ProviderPlayoff, clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}, opts...)
}

// Name identifies the provider.
func (p *Provider) Name() string { return p.name }

// Token returns a valid access token. Concurrent callers wait for a single
// refresh.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.token != "" && now.Before(p.expiry) {
		return p.token, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.cfg.Token(ctx)
	if err != nil {
		metrics.RecordTokenError(p.name)
		p.logger.Error(ctx, "token request failed", logger.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrTokenRequest, p.name, err)
	}
	if tok.AccessToken == "" {
		metrics.RecordTokenError(p.name)
		return "", fmt.Errorf("%w: %s", ErrEmptyToken, p.name)
	}
	metrics.RecordTokenRefresh(p.name)

	p.token = ""
	p.expiry = time.Time{}
	if p.ttl <= 0 {
		return tok.AccessToken, nil
	}

	until := now.Add(p.ttl)
	if exp := tokenExpiry(tok); !exp.IsZero() && exp.Before(until) {
		until = exp
	}
	until = until.Add(-p.skew)
	if until.After(now) {
		p.token = tok.AccessToken
		p.expiry = until
	}
	p.logger.Debug(ctx, "fetched access token", logger.Any("cachedUntil", p.expiry))
	return tok.AccessToken, nil
}

// tokenExpiry prefers the expiry reported by the token endpoint and falls
// back to the exp claim when the token is a JWT.
func tokenExpiry(tok *oauth2.Token) time.Time {
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
