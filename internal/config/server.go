package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "CAMELRATE_SERVER_HOST"
	EnvServerPort              = "CAMELRATE_SERVER_PORT"
	EnvServerReadHeaderTimeout = "CAMELRATE_SERVER_READ_HEADER_TIMEOUT"
	EnvServerReadTimeout       = "CAMELRATE_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout      = "CAMELRATE_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "CAMELRATE_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "CAMELRATE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Durations are Go duration strings.
// WriteTimeout must cover a full rating pass, which runs several vision calls.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return durationOf(c.ReadHeaderTimeout)
}
func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return durationOf(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return durationOf(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return durationOf(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return durationOf(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, d := range c.durations(overlay) {
		if *d.src != "" {
			*d.dst = *d.src
		}
	}
}

// durationField pairs a duration string on the receiver with its counterpart
// on another config, its default, and its environment variable.
type durationField struct {
	name string
	dst  *string
	src  *string
	def  string
	env  string
}

func (c *ServerConfig) durations(other *ServerConfig) []durationField {
	if other == nil {
		other = &ServerConfig{}
	}
	return []durationField{
		{"read_header_timeout", &c.ReadHeaderTimeout, &other.ReadHeaderTimeout, "10s", EnvServerReadHeaderTimeout},
		{"read_timeout", &c.ReadTimeout, &other.ReadTimeout, "30s", EnvServerReadTimeout},
		{"write_timeout", &c.WriteTimeout, &other.WriteTimeout, "3m", EnvServerWriteTimeout},
		{"idle_timeout", &c.IdleTimeout, &other.IdleTimeout, "2m", EnvServerIdleTimeout},
		{"shutdown_timeout", &c.ShutdownTimeout, &other.ShutdownTimeout, "30s", EnvServerShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, d := range c.durations(nil) {
		if *d.dst == "" {
			*d.dst = d.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, d := range c.durations(nil) {
		if v := os.Getenv(d.env); v != "" {
			*d.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, d := range c.durations(nil) {
		if _, err := time.ParseDuration(*d.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}
	return nil
}

func durationOf(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
