// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - Durations are configured in milliseconds and exposed through helpers.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the health/metrics listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// OTelEndpoint enables OTLP/HTTP tracing when set.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// Kafka consumer.
	KafkaURL           string `koanf:"kafka_url"`
	KafkaGroupID       string `koanf:"kafka_group_id"`
	KafkaClientCert    string `koanf:"kafka_client_cert"`
	KafkaClientCertKey string `koanf:"kafka_client_cert_key"`
	KafkaTopic         string `koanf:"kafka_topic"`

	// RequestTimeoutMS bounds every outbound API call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Expected values used to match completion messages.
	PhaseTypeName string `koanf:"phase_type_name"`
	State         string `koanf:"state"`
	ProjectStatus string `koanf:"project_status"`

	// IterativeReviewName is the review type name whose reviews mark a winner.
	IterativeReviewName string `koanf:"iterative_review_name"`
	// WinScore is the review score that marks the winning submission.
	WinScore float64 `koanf:"win_score"`
	// PageSize is the submissions page size.
	PageSize int `koanf:"page_size"`

	TCV3APIBase string `koanf:"tc_v3_api_base"`
	TCV5APIBase string `koanf:"tc_v5_api_base"`

	// M2M token settings.
	Auth0URL            string `koanf:"auth0_url"`
	Auth0Audience       string `koanf:"auth0_audience"`
	Auth0ProxyServerURL string `koanf:"auth0_proxy_server_url"`
	Auth0ClientID       string `koanf:"auth0_client_id"`
	Auth0ClientSecret   string `koanf:"auth0_client_secret"`
	TokenCacheTimeMS    int    `koanf:"token_cache_time_ms"`

	// Playoff gamification API.
	PlayoffAPIBase       string `koanf:"playoff_api_base"`
	PlayoffActionID      string `koanf:"playoff_action_id"`
	PlayoffClientID      string `koanf:"playoff_client_id"`
	PlayoffClientSecret  string `koanf:"playoff_client_secret"`
	PlayoffAuthTokenHost string `koanf:"playoff_auth_token_host"`
	PlayoffAuthTokenPath string `koanf:"playoff_auth_token_path"`
	// PlayoffIDPrefix is alphanumeric and must not start with a digit.
	PlayoffIDPrefix string `koanf:"playoff_id_prefix"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "debug",
		LogFormat:            "text",
		Addr:                 ":3000",
		KafkaURL:             "localhost:9092",
		KafkaGroupID:         "gamification-playoff-processor",
		KafkaTopic:           "notification.autopilot.events",
		RequestTimeoutMS:     30_000,
		PhaseTypeName:        "Iterative Review",
		State:                "END",
		ProjectStatus:        "Completed",
		IterativeReviewName:  "Virus Scan",
		WinScore:             100,
		PageSize:             100,
		TCV3APIBase:          "https://api.topcoder-dev.com/v3",
		TCV5APIBase:          "https://api.topcoder-dev.com/v5",
		Auth0Audience:        "https://www.topcoder-dev.com",
		TokenCacheTimeMS:     86_400_000,
		PlayoffAPIBase:       "https://api.playoffgamification.io/v2",
		PlayoffActionID:      "f2_f_hero",
		PlayoffAuthTokenHost: "https://playoffgamification.io",
		PlayoffAuthTokenPath: "/auth/token",
		PlayoffIDPrefix:      "tc_",
	}
}

// RequestTimeout returns the outbound request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// TokenCacheTime returns the upper bound on M2M token reuse.
func (c *Config) TokenCacheTime() time.Duration {
	return time.Duration(c.TokenCacheTimeMS) * time.Millisecond
}

// KafkaBrokers splits KafkaURL on commas.
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaURL, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PlayoffTokenURL joins the playoff token host and path.
func (c *Config) PlayoffTokenURL() string {
	return strings.TrimRight(c.PlayoffAuthTokenHost, "/") + "/" + strings.TrimLeft(c.PlayoffAuthTokenPath, "/")
}
