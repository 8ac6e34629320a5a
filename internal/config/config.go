package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/scheduler"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "weft.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// used when no weft.json exists.
	YAMLConfigFileName = "weft.yaml"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultPages is the default directory of page markup files.
	DefaultPages = "pages"

	// DefaultOutput is the default prerender output directory.
	DefaultOutput = "dist"

	// DefaultPriority is the priority updates run at when none is given.
	DefaultPriority = "user-visible"
)

// Config represents a weft.json or weft.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Runtime configures the update engine.
	Runtime RuntimeConfig `json:"runtime,omitempty" yaml:"runtime,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Render configures prerendering of pages.
	Render RenderConfig `json:"render,omitempty" yaml:"render,omitempty"`

	// Publish configures uploading prerendered pages.
	Publish PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Trace configures the OpenTelemetry observer.
	Trace TraceConfig `json:"trace,omitempty" yaml:"trace,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig configures the update engine.
type RuntimeConfig struct {
	// FrameBudget is how long a frame renders before yielding (e.g. "5ms").
	FrameBudget string `json:"frameBudget,omitempty" yaml:"frameBudget,omitempty"`

	// Priority is the default update priority: user-blocking, user-visible
	// or background.
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`

	// IdentifierPrefix prefixes identifiers returned by UseID.
	IdentifierPrefix string `json:"identifierPrefix,omitempty" yaml:"identifierPrefix,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Events enables the websocket stream of runtime events.
	Events bool `json:"events,omitempty" yaml:"events,omitempty"`
}

// RenderConfig configures prerendering.
type RenderConfig struct {
	// Pages is the directory of page markup files (*.html) with optional
	// data files (*.json) of the same name.
	Pages string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Output is the directory prerendered pages are written to.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// PublishConfig configures the S3 destination of prerendered pages.
type PublishConfig struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// CacheControl is set on every uploaded object.
	CacheControl string `json:"cacheControl,omitempty" yaml:"cacheControl,omitempty"`
}

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TraceConfig configures the OpenTelemetry observer. Spans go to the global
// tracer provider.
type TraceConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Name is the tracer name (default: "weft").
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir, preferring weft.json over weft.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "weft.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E703").
		WithDetail("No weft.json or weft.yaml found in " + dir).
		WithSuggestion("Create weft.json in the project root or pass --config")
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E703").WithDetail(path)
		}
		return nil, errors.New("E701").Wrap(err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.New("E702").
			WithDetail("Unknown extension " + ext).
			WithSuggestion("Use a .json, .yaml or .yml file")
	}
	if err != nil {
		return nil, errors.New("E701").
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

// SaveTo writes the configuration to path in the format of its extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E701").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E701").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Runtime.FrameBudget == "" {
		c.Runtime.FrameBudget = scheduler.DefaultFrameBudget.String()
	}
	if c.Runtime.Priority == "" {
		c.Runtime.Priority = DefaultPriority
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Render.Pages == "" {
		c.Render.Pages = DefaultPages
	}
	if c.Render.Output == "" {
		c.Render.Output = DefaultOutput
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "weft"
	}
	if c.Trace.Name == "" {
		c.Trace.Name = "weft"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E701").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if d, err := time.ParseDuration(c.Runtime.FrameBudget); err != nil || d < 0 {
		return errors.New("E701").
			WithDetail("runtime.frameBudget must be a duration such as 5ms, got " + strconv.Quote(c.Runtime.FrameBudget))
	}
	if _, ok := ParsePriority(c.Runtime.Priority); !ok {
		return errors.New("E701").
			WithDetail("runtime.priority must be user-blocking, user-visible or background, got " + strconv.Quote(c.Runtime.Priority))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return errors.New("E701").WithDetail("log.level: " + err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E701").WithDetail("log.format must be text or json")
	}
	return nil
}

// ParsePriority parses a scheduler priority name.
func ParsePriority(s string) (scheduler.Priority, bool) {
	for _, p := range []scheduler.Priority{scheduler.UserBlocking, scheduler.UserVisible, scheduler.Background} {
		if strings.EqualFold(s, p.String()) {
			return p, true
		}
	}
	return 0, false
}

// FrameBudget returns the parsed runtime frame budget.
func (c *Config) FrameBudget() time.Duration {
	d, err := time.ParseDuration(c.Runtime.FrameBudget)
	if err != nil {
		return scheduler.DefaultFrameBudget
	}
	return d
}

// Priority returns the parsed default update priority.
func (c *Config) Priority() scheduler.Priority {
	p, ok := ParsePriority(c.Runtime.Priority)
	if !ok {
		return scheduler.UserVisible
	}
	return p
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// PagesPath returns the absolute path to the pages directory.
func (c *Config) PagesPath() string {
	return c.resolve(c.Render.Pages)
}

// OutputPath returns the absolute path to the prerender output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Render.Output)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "weft.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E703").
				WithDetail("No weft.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
