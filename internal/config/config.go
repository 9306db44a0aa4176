// Package config holds the scraper configuration and its defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/configutil"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/telemetry"
)

const (
	EnvLiAt       = "LINKEDIN_LI_AT"
	EnvJSessionID = "LINKEDIN_JSESSIONID"
)

type SessionConfig struct {
	// LiAt is the value of the `li_at` session cookie.
	LiAt string `json:"li_at" yaml:"li_at"`
	// JSessionID is the value of the `JSESSIONID` cookie, its unquoted form
	// doubles as the csrf token.
	JSessionID string `json:"jsessionid" yaml:"jsessionid"`
}

type QueryConfig struct {
	Search  string `json:"search" yaml:"search"`
	Profile string `json:"profile" yaml:"profile"`
}

type DelayConfig struct {
	MinMs int `json:"min_ms" yaml:"min_ms"`
	MaxMs int `json:"max_ms" yaml:"max_ms"`
}

func (d DelayConfig) Min() time.Duration { return time.Duration(d.MinMs) * time.Millisecond }
func (d DelayConfig) Max() time.Duration { return time.Duration(d.MaxMs) * time.Millisecond }

type HttpConfig struct {
	BaseUrl string `json:"base_url" yaml:"base_url"`
	// requests per second, bursts are allowed up to Burst
	RateLimit        float64 `json:"rate_limit" yaml:"rate_limit"`
	Burst            int     `json:"burst" yaml:"burst"`
	TimeoutSeconds   int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent        string  `json:"user_agent" yaml:"user_agent"`
	BrowserTransport bool    `json:"browser_transport" yaml:"browser_transport"`
	// DumpDir receives every request/response pair when set.
	DumpDir string `json:"dump_dir" yaml:"dump_dir"`
}

func (h HttpConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

type ExportConfig struct {
	Format    string `json:"format" yaml:"format"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

type Config struct {
	Session   SessionConfig        `json:"session" yaml:"session"`
	Queries   QueryConfig          `json:"queries" yaml:"queries"`
	Http      HttpConfig           `json:"http" yaml:"http"`
	Pacing    DelayConfig          `json:"pacing" yaml:"pacing"`
	Backoff   DelayConfig          `json:"backoff" yaml:"backoff"`
	Export    ExportConfig         `json:"export" yaml:"export"`
	Telemetry telemetry.OtlpConfig `json:"telemetry" yaml:"telemetry"`
}

func Default() Config {
	return Config{
		Queries: QueryConfig{
			Search:  "voyagerSearchDashClusters.b0928897b71bd00a5a7291755dcd64f0",
			Profile: "voyagerIdentityDashProfileCards.2ab4a6b3d4d8de8d1f5cb0ff5bb3ca4e",
		},
		Http: HttpConfig{
			BaseUrl:        "https://www.linkedin.com",
			RateLimit:      2,
			Burst:          2,
			TimeoutSeconds: 30,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		},
		Pacing:  DelayConfig{MinMs: 400, MaxMs: 1100},
		Backoff: DelayConfig{MinMs: 1200, MaxMs: 1500},
		Export: ExportConfig{
			Format:    "csv",
			OutputDir: ".",
		},
	}
}

// ApplyEnv overrides the session cookies with the environment, when set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLiAt); ok && strings.TrimSpace(v) != "" {
		c.Session.LiAt = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJSessionID); ok && strings.TrimSpace(v) != "" {
		c.Session.JSessionID = strings.TrimSpace(v)
	}
}

func validateDelay(name string, d DelayConfig) error {
	if d.MinMs < 0 || d.MaxMs < d.MinMs {
		return fmt.Errorf("%s: invalid delay range [%d, %d]ms", name, d.MinMs, d.MaxMs)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Http.BaseUrl == "" {
		errs = append(errs, errors.New("http.base_url is required"))
	}
	if c.Http.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("http.rate_limit must be positive, got %v", c.Http.RateLimit))
	}
	if c.Http.Burst < 1 {
		errs = append(errs, fmt.Errorf("http.burst must be at least 1, got %d", c.Http.Burst))
	}
	if c.Http.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout_seconds must be positive, got %d", c.Http.TimeoutSeconds))
	}
	if c.Queries.Search == "" || c.Queries.Profile == "" {
		errs = append(errs, errors.New("queries.search and queries.profile are required"))
	}
	if err := validateDelay("pacing", c.Pacing); err != nil {
		errs = append(errs, err)
	}
	if err := validateDelay("backoff", c.Backoff); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads the config at path on top of Default, applies the environment
// overrides and validates the result. A relative path is looked up from the
// working directory upwards. A missing file is not an error.
func Load(path string) (Config, error) {
	if found, err := configutil.FindUp(path); err == nil {
		path = found
	}
	cfg, err := configutil.Load(path, Default())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
