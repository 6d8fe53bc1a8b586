package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/worker/internal/logging"
	"github.com/viant/worker/service/metrics"
	"github.com/viant/worker/service/storage"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the worker configuration.
// The zero value of every optional field falls back to DefaultConfig.
type Config struct {
	WorkerID                string         `json:"workerId,omitempty" yaml:"workerId,omitempty"`
	BaseURL                 string         `json:"baseURL" yaml:"baseURL"`
	RegistrationURL         string         `json:"registrationURL,omitempty" yaml:"registrationURL,omitempty"`
	RegistrationToken       string         `json:"registrationToken,omitempty" yaml:"registrationToken,omitempty"`
	RegistrationTokenSecret *SecretConfig  `json:"registrationTokenSecret,omitempty" yaml:"registrationTokenSecret,omitempty"`
	PollInterval            time.Duration  `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty"`
	BatchSize               int            `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	Domain                  string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Concurrency             int            `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	QueueBuffer             int            `json:"queueBuffer,omitempty" yaml:"queueBuffer,omitempty"`
	HTTPTimeout             time.Duration  `json:"httpTimeout,omitempty" yaml:"httpTimeout,omitempty"`
	ShutdownTimeout         time.Duration  `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
	StaleAfter              time.Duration  `json:"staleAfter,omitempty" yaml:"staleAfter,omitempty"`
	JournalURL              string         `json:"journalURL,omitempty" yaml:"journalURL,omitempty"`
	Auth                    *AuthConfig    `json:"auth,omitempty" yaml:"auth,omitempty"`
	Storage                 storage.Config `json:"storage,omitempty" yaml:"storage,omitempty"`
	Logging                 logging.Config `json:"logging,omitempty" yaml:"logging,omitempty"`
	Metrics                 metrics.Config `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing                 *TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// AuthConfig holds basic credentials for the orchestrator, either inline or
// as a scy-encrypted secret.
type AuthConfig struct {
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	SecretURL string `json:"secretURL,omitempty" yaml:"secretURL,omitempty"`
	Key       string `json:"key,omitempty" yaml:"key,omitempty"`
}

// SecretConfig points at a scy-encrypted secret.
type SecretConfig struct {
	URL string `json:"url" yaml:"url"`
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:    500 * time.Millisecond,
		BatchSize:       1,
		Concurrency:     100,
		HTTPTimeout:     30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		StaleAfter:      24 * time.Hour,
		Storage:         storage.Config{MaxContentLength: storage.DefaultMaxContentLength},
		Logging:         logging.Config{Level: "info", Format: "json", Output: "stdout"},
		Metrics:         metrics.Config{Path: "/metrics", Namespace: "worker"},
	}
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaults.Concurrency
	}
	if c.QueueBuffer <= 0 {
		c.QueueBuffer = c.Concurrency
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaults.HTTPTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = defaults.StaleAfter
	}
	if c.Storage.MaxContentLength == 0 {
		c.Storage.MaxContentLength = defaults.Storage.MaxContentLength
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("baseURL is required"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be > 0"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batchSize must be > 0"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("pollInterval must be > 0"))
	}
	if c.Auth != nil && c.Auth.SecretURL == "" && c.Auth.Username == "" {
		errs = append(errs, fmt.Errorf("auth requires username or secretURL"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config from any afs URL, expanding ${env.KEY}
// expressions before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal([]byte(expandEnvExpr(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	cfg.Init()
	return cfg, cfg.Validate()
}
