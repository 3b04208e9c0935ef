// Package config loads SenderConfig (§2) from YAML: the per-process
// settings that govern every partnership's transport, directory layout,
// and retry behavior.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SenderConfig is the top-level on-disk configuration for one as2send
// process.
type SenderConfig struct {
	ConnectTimeoutMS int `yaml:"connectTimeoutMs"`
	ReadTimeoutMS    int `yaml:"readTimeoutMs"`

	QuoteHeaderValues bool `yaml:"quoteHeaderValues"`

	OutboxDir string `yaml:"outboxDir"`
	SentDir   string `yaml:"sentDir"`
	ErrorDir  string `yaml:"errorDir"`
	PendingDir string `yaml:"pendingDir"`

	RequestDumpDir  string `yaml:"requestDumpDir"`
	ResponseDumpDir string `yaml:"responseDumpDir"`

	MimeType     string `yaml:"mimeType"`
	SendFilename bool   `yaml:"sendFilename"`
	SenderEmail  string `yaml:"senderEmail"`

	RetryCount int `yaml:"retryCount"`

	// OnSentMoveFailure is "log" (default) or "fail".
	OnSentMoveFailure string `yaml:"onSentMoveFailure"`

	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`

	// ResubmitDelaySeconds and MaxResubmissions configure the poller's
	// retry/backoff schedule for files whose Send call exhausts its own
	// internal retryCount attempts.
	ResubmitDelaySeconds int `yaml:"resubmitDelaySeconds"`
	MaxResubmissions     int `yaml:"maxResubmissions"`

	CertStorePath string `yaml:"certStorePath"`
	AuditLogPath  string `yaml:"auditLogPath"`

	PartnershipsPath string `yaml:"partnershipsPath"`
}

// defaults mirrors the zero-value fallbacks the rest of this codebase
// already applies (transport.Config, Partnership.EffectiveCTE, ...);
// Load applies the ones that are config-file-level rather than
// per-partnership.
func defaults() SenderConfig {
	return SenderConfig{
		ConnectTimeoutMS:    60_000,
		ReadTimeoutMS:       60_000,
		MimeType:            "application/octet-stream",
		RetryCount:          2,
		OnSentMoveFailure:   "log",
		PollIntervalSeconds: 5,
		ResubmitDelaySeconds: 60,
	}
}

// Load reads and parses a SenderConfig from the YAML file at path, applying
// defaults for any field the file leaves unset.
func Load(path string) (*SenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields Load cannot sensibly default: the three
// directory paths a DirectoryPoller requires.
func (c *SenderConfig) Validate() error {
	if c.OutboxDir == "" {
		return fmt.Errorf("config: outboxDir is required")
	}
	if c.SentDir == "" {
		return fmt.Errorf("config: sentDir is required")
	}
	if c.ErrorDir == "" {
		return fmt.Errorf("config: errorDir is required")
	}
	return nil
}
