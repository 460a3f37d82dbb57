package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLangfuseBaseURL is the hosted prompt-store endpoint used when
// LANGFUSE_BASE_URL is not set.
const DefaultLangfuseBaseURL = "https://cloud.langfuse.com"

// Config holds all configuration values for the pipeline.
type Config struct {
	// OpenAI API configuration
	OpenAIAPIKey  string  // Required
	OpenAIModel   string  // Target chat model (default: gpt-4o-mini)
	OpenAIBaseURL string  // Optional override for OpenAI-compatible gateways
	Temperature   float64 // Sampling temperature for report generation

	// Prompt store (Langfuse-compatible) configuration.
	// Both keys empty means the prompt store is disabled and every run
	// takes the fallback path without a system prompt.
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseBaseURL   string
	PromptName        string // Managed prompt identifier (default: paper-pitch)
	PromptLabel       string // Prompt label to resolve (default: production)
	Language          string // Substituted into the {{LANGUAGE}} placeholder

	// Extraction configuration. ExtractorURL empty means PDFs are parsed
	// in-process; otherwise the remote document-processor service is used.
	ExtractorURL string

	// Directories and files
	UploadsDir string // Watched for incoming PDFs
	ReportsDir string // Generated reports are written here
	DBPath     string // SQLite database for run records
	LogFile    string // Rotating log file path

	// Processing configuration
	WatchInterval  time.Duration // Uploads directory poll interval
	AITimeout      time.Duration // Per-request LLM timeout
	ExtractTimeout time.Duration // Per-document extraction timeout
	MaxFileSize    int64         // PDFs above this size are skipped

	// Run-record retention
	RetentionDays   int           // Run records older than this are purged
	CleanupInterval time.Duration // How often the retention purge runs

	// Tuning
	TuningFile string // Optional YAML overriding truncation heuristics

	// TLS
	AllowSelfSignedCerts bool // Accept self-signed certs on self-hosted services

	// Runtime mode
	DevMode bool
}

// LoadConfig loads configuration from environment variables with defaults
// matching the original deployment. Only the OpenAI API key is required;
// prompt-store credentials are optional (their absence forces the fallback
// path) and extraction defaults to in-process parsing.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:  GetEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:   GetEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: GetEnvOrDefault("OPENAI_BASE_URL", ""),
		Temperature:   ParseFloat64Env("LLM_TEMPERATURE", 0.3),

		LangfusePublicKey: GetEnvOrDefault("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: GetEnvOrDefault("LANGFUSE_SECRET_KEY", ""),
		LangfuseBaseURL:   GetEnvOrDefault("LANGFUSE_BASE_URL", DefaultLangfuseBaseURL),
		PromptName:        GetEnvOrDefault("PROMPT_NAME", "paper-pitch"),
		PromptLabel:       GetEnvOrDefault("PROMPT_LABEL", "production"),
		Language:          GetEnvOrDefault("LANGUAGE", "french"),

		ExtractorURL: GetEnvOrDefault("EXTRACTOR_URL", ""),

		UploadsDir: GetEnvOrDefault("UPLOADS_DIR", "uploads"),
		ReportsDir: GetEnvOrDefault("REPORTS_DIR", "reports"),
		DBPath:     GetEnvOrDefault("DB_PATH", "paperpitch.db"),
		LogFile:    GetEnvOrDefault("LOG_FILE", "paperpitch.log"),

		WatchInterval:  ParseDurationEnv("WATCH_INTERVAL_SECONDS", 5),
		AITimeout:      ParseDurationEnv("AI_TIMEOUT", 120),
		ExtractTimeout: ParseDurationEnv("EXTRACT_TIMEOUT", 60),
		// 50MB covers virtually all papers while keeping memory bounded
		MaxFileSize: ParseInt64Env("MAX_FILE_SIZE", 52428800),

		RetentionDays:   ParseIntEnv("RETENTION_DAYS", 30),
		CleanupInterval: ParseDurationEnv("CLEANUP_INTERVAL_SECONDS", 86400),

		TuningFile: GetEnvOrDefault("TUNING_FILE", ""),

		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
		DevMode:              ParseBoolEnv("DEV_MODE", false),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAuth("openai")
	}

	// A single Langfuse key is a misconfiguration, not a disabled store.
	if (cfg.LangfusePublicKey == "") != (cfg.LangfuseSecretKey == "") {
		return nil, ErrIncompleteAuth("langfuse",
			"LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY must be set together")
	}

	if cfg.ExtractorURL != "" {
		if err := validateBaseURL("EXTRACTOR_URL", cfg.ExtractorURL); err != nil {
			return nil, err
		}
	}
	if cfg.PromptStoreEnabled() {
		if err := validateBaseURL("LANGFUSE_BASE_URL", cfg.LangfuseBaseURL); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateBaseURL checks that a configured endpoint is an absolute http(s) URL.
func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidBaseURL(name, raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidBaseURL(name, raw, "scheme must be http or https")
	}
	if u.Host == "" {
		return ErrInvalidBaseURL(name, raw, "missing host")
	}
	return nil
}

// PromptStoreEnabled reports whether prompt-store credentials are configured.
// When false the builder always takes the fallback path.
func (c *Config) PromptStoreEnabled() bool {
	return c.LangfusePublicKey != "" && c.LangfuseSecretKey != ""
}

// UseRemoteExtraction reports whether a remote extraction service is configured.
func (c *Config) UseRemoteExtraction() bool {
	return c.ExtractorURL != ""
}

// RedactedSummary returns config fields safe for logging. Secrets are
// reduced to a set/unset marker.
func (c *Config) RedactedSummary() map[string]string {
	mark := func(s string) string {
		if s == "" {
			return "(unset)"
		}
		return "(set)"
	}
	return map[string]string{
		"openai_api_key":   mark(c.OpenAIAPIKey),
		"openai_model":     c.OpenAIModel,
		"langfuse_keys":    mark(c.LangfuseSecretKey),
		"langfuse_base":    c.LangfuseBaseURL,
		"prompt_name":      c.PromptName,
		"prompt_label":     c.PromptLabel,
		"language":         c.Language,
		"extractor_url":    c.ExtractorURL,
		"uploads_dir":      c.UploadsDir,
		"reports_dir":      c.ReportsDir,
		"db_path":          c.DBPath,
		"watch_interval":   c.WatchInterval.String(),
		"remote_extractor": fmt.Sprintf("%t", c.UseRemoteExtraction()),
	}
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on
// AllowSelfSignedCerts. All requests to external services should go through
// clients built here so TLS configuration is respected everywhere.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30s timeout configured
// with the TLS settings from cfg.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}

// IsPDF reports whether a filename looks like a PDF document.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
