package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/dna-dev/dna/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "dna.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	// dna.json wins when both exist.
	YAMLConfigFileName = "dna.yaml"

	// DefaultPort is the default host server port.
	DefaultPort = 4000

	// DefaultHost is the default host server address.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "dna"

	// DefaultMaxPasses bounds follow-up render passes per update.
	DefaultMaxPasses = 100
)

// Wire encodings accepted by ServerConfig.Encoding.
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents the complete dna.json configuration.
type Config struct {
	// Debug enables verbose render logging.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Log configures the slog logger.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Server configures the host bridge.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Metrics configures Prometheus instrumentation.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Scheduler configures the update scheduler.
	Scheduler SchedulerConfig `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ServerConfig contains host bridge settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Encoding selects the frame codec: json (text frames) or cbor (binary).
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// AllowedOrigins lists origins accepted on WebSocket upgrade.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// SchedulerConfig contains update scheduler settings.
type SchedulerConfig struct {
	// MaxPasses bounds how many follow-up render passes one update may
	// trigger before the scheduler reports an update storm.
	MaxPasses int `json:"maxPasses,omitempty" yaml:"maxPasses,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Encoding: EncodingJSON,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      "/metrics",
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Scheduler: SchedulerConfig{
			MaxPasses: DefaultMaxPasses,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for dna.json, then dna.yaml. A directory with neither yields
// the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path.
// The format is chosen by extension (.yaml/.yml or JSON otherwise).
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRead).WithSubject(path).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigRead).
			WithSubject(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigRead).WithSubject(path).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigRead).WithSubject(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Encoding == "" {
		c.Server.Encoding = EncodingJSON
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Scheduler.MaxPasses == 0 {
		c.Scheduler.MaxPasses = DefaultMaxPasses
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("server.port").
			WithDetail("Port must be between 0 and 65535")
	}
	switch c.Server.Encoding {
	case EncodingJSON, EncodingCBOR:
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("server.encoding").
			WithDetail("Encoding must be json or cbor")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("log.level").
			WithDetail("Level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("log.format").
			WithDetail("Format must be text or json")
	}
	if c.Scheduler.MaxPasses < 1 {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("scheduler.maxPasses").
			WithDetail("MaxPasses must be at least 1")
	}
	return nil
}

// Address returns the listen address for the host server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Logger builds the slog logger described by the Log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	if c.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
