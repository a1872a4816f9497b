package service

import (
	"net/http"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/auth"
	"github.com/topcoder-platform/playoff-processor/internal/adapters/platform"
	"github.com/topcoder-platform/playoff-processor/internal/adapters/playoff"
	"github.com/topcoder-platform/playoff-processor/internal/adapters/rest"
	"github.com/topcoder-platform/playoff-processor/internal/config"
)

// M2MTokens builds the cached platform token provider.
func M2MTokens(cfg *config.Config, httpClient *http.Client) *auth.Provider {
	return auth.NewM2M(auth.M2MConfig{
		TokenURL:     cfg.Auth0URL,
		Audience:     cfg.Auth0Audience,
		ProxyURL:     cfg.Auth0ProxyServerURL,
		ClientID:     cfg.Auth0ClientID,
		ClientSecret: cfg.Auth0ClientSecret,
	}, auth.WithHTTPClient(httpClient), auth.WithCacheTTL(cfg.TokenCacheTime()))
}

// PlayoffTokens builds the gamification token provider. Every session gets
// a fresh token.
func PlayoffTokens(cfg *config.Config, httpClient *http.Client) *auth.Provider {
	return auth.NewPlayoff(auth.PlayoffConfig{
		TokenURL:     cfg.PlayoffTokenURL(),
		ClientID:     cfg.PlayoffClientID,
		ClientSecret: cfg.PlayoffClientSecret,
	}, auth.WithHTTPClient(httpClient))
}

// PlatformClient builds the platform API client.
func PlatformClient(cfg *config.Config, tokens rest.TokenSource, httpClient *http.Client) *platform.Client {
	return platform.New(cfg.TCV5APIBase, cfg.TCV3APIBase, tokens,
		rest.WithHTTPClient(httpClient), rest.WithTimeout(cfg.RequestTimeout()))
}

// PlayoffClient builds the gamification API client.
func PlayoffClient(cfg *config.Config, tokens rest.TokenSource, httpClient *http.Client) *playoff.Client {
	return playoff.New(cfg.PlayoffAPIBase, tokens,
		rest.WithHTTPClient(httpClient), rest.WithTimeout(cfg.RequestTimeout()))
}
