package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	PSPAddress         string
	PSPAPIToken        string
	PSPTimeout         time.Duration
	PublicBaseURL      string
	WebhookSecret      string
	WebhookAllowedIPs  []string
	Environment        string
	Currency           string
	NotificationURL    string
	OutboxPollInterval time.Duration
	WorkerPoolSize     int
	MaxEventsBatch     int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultEnvironment        = "development"
	defaultCurrency           = "EUR"
	defaultPSPTimeout         = 10 * time.Second
	defaultOutboxPollInterval = 3 * time.Second
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
	defaultMaxEventsBatch     = 32
)

// EnvProduction marks deployments where webhook authentication is expected.
const EnvProduction = "production"

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		PSPAddress:         getString(lookup, "PSP_ADDRESS", ""),
		PSPAPIToken:        getString(lookup, "PSP_API_TOKEN", ""),
		PSPTimeout:         getDuration(lookup, "PSP_TIMEOUT", defaultPSPTimeout),
		PublicBaseURL:      getString(lookup, "PUBLIC_BASE_URL", ""),
		WebhookSecret:      getString(lookup, "WEBHOOK_SECRET", ""),
		WebhookAllowedIPs:  splitList(getString(lookup, "WEBHOOK_ALLOWED_IPS", "")),
		Environment:        getString(lookup, "ENVIRONMENT", defaultEnvironment),
		Currency:           getString(lookup, "CURRENCY", defaultCurrency),
		NotificationURL:    getString(lookup, "NOTIFICATION_URL", ""),
		OutboxPollInterval: getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxEventsBatch:     getInt(lookup, "POLL_BATCH_SIZE", defaultMaxEventsBatch),
	}

	fs := flag.NewFlagSet("payments", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		pspTimeoutStr      = cfg.PSPTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		allowedIPsStr      = strings.Join(cfg.WebhookAllowedIPs, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PSPAddress, "p", cfg.PSPAddress, "Payment provider API base URL")
	fs.StringVar(&cfg.PSPAPIToken, "psp-token", cfg.PSPAPIToken, "Payment provider API token")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", cfg.PublicBaseURL, "Public base URL for redirect and webhook callbacks")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Shared secret expected on webhook calls")
	fs.StringVar(&allowedIPsStr, "webhook-ips", allowedIPsStr, "Comma-separated source IP allowlist for webhook calls")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "Deployment environment name")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "ISO currency code for new orders")
	fs.StringVar(&cfg.NotificationURL, "notify-url", cfg.NotificationURL, "Endpoint for staff notifications and welcome emails")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent outbox workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between outbox polls")
	fs.StringVar(&pspTimeoutStr, "psp-timeout", pspTimeoutStr, "Timeout for payment provider calls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxEventsBatch, "poll-batch", cfg.MaxEventsBatch, "Maximum outbox events per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.PSPTimeout, err = time.ParseDuration(pspTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid psp timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.WebhookAllowedIPs = splitList(allowedIPsStr)

	if secretFile, ok := lookup("WEBHOOK_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read webhook secret file: %w", err)
		}
		cfg.WebhookSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxEventsBatch <= 0 {
		cfg.MaxEventsBatch = defaultMaxEventsBatch
	}

	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = defaultOutboxPollInterval
	}

	if cfg.PSPTimeout <= 0 {
		cfg.PSPTimeout = defaultPSPTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PSPAddress == "" {
		return nil, fmt.Errorf("payment provider address must be provided")
	}

	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("public base URL must be provided")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in a production deployment.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// WebhookAuthConfigured reports whether at least one webhook auth layer is set.
func (c *Config) WebhookAuthConfigured() bool {
	return c.WebhookSecret != "" || len(c.WebhookAllowedIPs) > 0
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
