package config

import (
	"fmt"
	"os"
	"strconv"
)

// Audit modes.
const (
	AuditDisabled = "disabled"
	AuditDirect   = "direct"
	AuditQueue    = "queue"
)

const (
	EnvAuditMode          = "CAMELRATE_AUDIT_MODE"
	EnvAuditNATSURL       = "CAMELRATE_AUDIT_NATS_URL"
	EnvAuditStream        = "CAMELRATE_AUDIT_STREAM"
	EnvAuditSubject       = "CAMELRATE_AUDIT_SUBJECT"
	EnvAuditArchiveImages = "CAMELRATE_AUDIT_ARCHIVE_IMAGES"
)

// AuditConfig configures how rating conversations are recorded.
type AuditConfig struct {
	Mode          string `toml:"mode"`
	NATSURL       string `toml:"nats_url"`
	Stream        string `toml:"stream"`
	Subject       string `toml:"subject"`
	ArchiveImages bool   `toml:"archive_images"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuditConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AuditConfig) Merge(overlay *AuditConfig) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.NATSURL != "" {
		c.NATSURL = overlay.NATSURL
	}
	if overlay.Stream != "" {
		c.Stream = overlay.Stream
	}
	if overlay.Subject != "" {
		c.Subject = overlay.Subject
	}
	if overlay.ArchiveImages {
		c.ArchiveImages = true
	}
}

func (c *AuditConfig) loadDefaults() {
	if c.Mode == "" {
		c.Mode = AuditDirect
	}
	if c.NATSURL == "" {
		c.NATSURL = "nats://localhost:4222"
	}
	if c.Stream == "" {
		c.Stream = "AUDIT"
	}
	if c.Subject == "" {
		c.Subject = "audit.conversations"
	}
}

func (c *AuditConfig) loadEnv() {
	if v := os.Getenv(EnvAuditMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvAuditNATSURL); v != "" {
		c.NATSURL = v
	}
	if v := os.Getenv(EnvAuditStream); v != "" {
		c.Stream = v
	}
	if v := os.Getenv(EnvAuditSubject); v != "" {
		c.Subject = v
	}
	if v := os.Getenv(EnvAuditArchiveImages); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ArchiveImages = b
		}
	}
}

func (c *AuditConfig) validate() error {
	switch c.Mode {
	case AuditDisabled, AuditDirect, AuditQueue:
		return nil
	default:
		return fmt.Errorf("mode must be disabled, direct, or queue")
	}
}
