package server

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/dna-dev/dna/internal/config"
)

// Config holds the host bridge settings.
type Config struct {
	// Address is the listen address. Default: "localhost:4000".
	Address string

	// Encoding selects the frame codec, json or cbor. Default: json.
	Encoding string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin of WebSocket upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// ReadTimeout is the maximum time to wait for a client frame or pong.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming frame.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the inbound frame buffer.
	// Default: 256.
	MaxEventQueue int

	// MaxPasses bounds follow-up render passes per update.
	// Zero keeps the scheduler default.
	MaxPasses int

	// MetricsPath is where the Prometheus handler is mounted.
	// Default: "/metrics".
	MetricsPath string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
// SECURITY: CheckOrigin enforces same-origin by default.
func DefaultConfig() *Config {
	return &Config{
		Address:           config.DefaultHost + ":4000",
		Encoding:          config.EncodingJSON,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     256,
		MetricsPath:       "/metrics",
		ShutdownTimeout:   30 * time.Second,
	}
}

// FromConfig maps a loaded dna.json onto server settings.
func FromConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Address = cfg.Address()
	c.Encoding = cfg.Server.Encoding
	c.MaxPasses = cfg.Scheduler.MaxPasses
	if cfg.Metrics.Path != "" {
		c.MetricsPath = cfg.Metrics.Path
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		c.CheckOrigin = AllowedOriginsCheck(cfg.Server.AllowedOrigins)
	}
	return c
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Encoding == "" {
		out.Encoding = defaults.Encoding
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.HeartbeatInterval == 0 {
		out.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.MaxEventQueue == 0 {
		out.MaxEventQueue = defaults.MaxEventQueue
	}
	if out.MetricsPath == "" {
		out.MetricsPath = defaults.MetricsPath
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return &out
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
// Requests without an Origin header are accepted.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowedOriginsCheck accepts same-origin requests and the listed origins.
func AllowedOriginsCheck(origins []string) func(r *http.Request) bool {
	allowed := slices.Clone(origins)
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return slices.Contains(allowed, r.Header.Get("Origin"))
	}
}
