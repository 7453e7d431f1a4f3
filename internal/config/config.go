package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBackendURL is used when neither BACKEND_URL nor PUBLIC_API_URL is set.
const DefaultBackendURL = "http://localhost:8000"

type Timeouts struct {
	Chat       time.Duration
	Highlights time.Duration
	Categories time.Duration // 0 means no deadline
	Extract    time.Duration
	Readiness  time.Duration
}

type Config struct {
	BackendURL      string
	PublicAPIURL    string
	Environment     string
	ListenAddr      string
	LogLevel        string
	LogFormat       string
	AllowedOrigins  []string
	Timeouts        Timeouts
	ShutdownTimeout time.Duration
}

const (
	BackendURL           = "BACKEND_URL"
	PublicAPIURL         = "PUBLIC_API_URL"
	NextPublicAPIURL     = "NEXT_PUBLIC_API_URL"
	Environment          = "APP_ENV"
	ListenAddr           = "LISTEN_ADDR"
	LogLevel             = "LOG_LEVEL"
	LogFormat            = "LOG_FORMAT"
	AllowedOrigins       = "ALLOWED_ORIGINS"
	ChatTimeout          = "CHAT_TIMEOUT"
	HighlightsTimeout    = "HIGHLIGHTS_TIMEOUT"
	CategoriesTimeout    = "CATEGORIES_TIMEOUT"
	ExtractTimeout       = "EXTRACT_TIMEOUT"
	ReadinessTimeout     = "READINESS_TIMEOUT"
	ShutdownTimeout      = "SHUTDOWN_TIMEOUT"
	DevelopmentEnv       = "development"
	defaultListenAddr    = ":8080"
	defaultAllowedOrigin = "http://localhost:3000"
)

// Load reads an optional .env file and then the process environment.
// The result is built once at start and shared read-only by every handler.
func Load() (*Config, error) {
	// missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	return FromEnv()
}

func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(Environment, DevelopmentEnv)
	v.SetDefault(ListenAddr, defaultListenAddr)
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "json")
	v.SetDefault(AllowedOrigins, defaultAllowedOrigin)
	v.SetDefault(ChatTimeout, "45s")
	v.SetDefault(HighlightsTimeout, "30s")
	v.SetDefault(CategoriesTimeout, "0s")
	v.SetDefault(ExtractTimeout, "180s")
	v.SetDefault(ReadinessTimeout, "5s")
	v.SetDefault(ShutdownTimeout, "5s")

	cfg := &Config{
		BackendURL:     strings.TrimSpace(v.GetString(BackendURL)),
		PublicAPIURL:   strings.TrimSpace(v.GetString(PublicAPIURL)),
		Environment:    v.GetString(Environment),
		ListenAddr:     v.GetString(ListenAddr),
		LogLevel:       v.GetString(LogLevel),
		LogFormat:      v.GetString(LogFormat),
		AllowedOrigins: splitList(v.GetString(AllowedOrigins)),
	}
	if cfg.PublicAPIURL == "" {
		cfg.PublicAPIURL = strings.TrimSpace(v.GetString(NextPublicAPIURL))
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{ChatTimeout, &cfg.Timeouts.Chat},
		{HighlightsTimeout, &cfg.Timeouts.Highlights},
		{CategoriesTimeout, &cfg.Timeouts.Categories},
		{ExtractTimeout, &cfg.Timeouts.Extract},
		{ReadinessTimeout, &cfg.Timeouts.Readiness},
		{ShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return cfg, fmt.Errorf("invalid %v: %w", d.key, err)
		}
		if parsed < 0 {
			return cfg, fmt.Errorf("invalid %v: must not be negative", d.key)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

// BackendBaseURL resolves the backend root on every call so the value always
// reflects the Config's current fields.
func (c *Config) BackendBaseURL() string {
	return ResolveBackendURL(c.BackendURL, c.PublicAPIURL)
}

// IsDevelopment reports whether the process runs in the local development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, DevelopmentEnv)
}

// ResolveBackendURL picks the explicit backend URL, else the public API URL with
// its trailing path segment removed, else DefaultBackendURL.
func ResolveBackendURL(backendURL, publicAPIURL string) string {
	if backendURL = strings.TrimSpace(backendURL); backendURL != "" {
		return strings.TrimRight(backendURL, "/")
	}
	if publicAPIURL = strings.TrimSpace(publicAPIURL); publicAPIURL != "" {
		return stripLastSegment(publicAPIURL)
	}
	return DefaultBackendURL
}

func stripLastSegment(raw string) string {
	trimmed := strings.TrimRight(raw, "/")

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		if i := strings.LastIndex(trimmed, "/"); i > 0 {
			return trimmed[:i]
		}
		return trimmed
	}

	dir := path.Dir(u.Path)
	if dir == "." || dir == "/" {
		dir = ""
	}
	u.Path = dir
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
