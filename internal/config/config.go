package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/tessera/internal/errors"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "tessera.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "tessera.yaml"

	// DefaultMaxDepth is the default ceiling for nested deferred blocks.
	DefaultMaxDepth = 50

	// DefaultAddr is the default preview server address.
	DefaultAddr = ":3000"

	// DefaultOutput is the default export directory.
	DefaultOutput = "dist"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "tessera"
)

// Config represents the complete tessera configuration.
type Config struct {
	// Render contains serializer settings.
	Render RenderConfig `json:"render" yaml:"render"`

	// Security contains settings for the security collaborators.
	Security SecurityConfig `json:"security" yaml:"security"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Server contains preview server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Export contains static export settings.
	Export ExportConfig `json:"export" yaml:"export"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains serializer settings.
type RenderConfig struct {
	// MaxDepth is the maximum number of nested deferred blocks.
	MaxDepth int `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`

	// EmitActionAttrs controls whether action bindings are rendered as
	// data-on-* attributes.
	EmitActionAttrs *bool `json:"emitActionAttrs,omitempty" yaml:"emitActionAttrs,omitempty"`
}

// SecurityConfig contains settings for the security collaborators.
type SecurityConfig struct {
	// AllowedImageDomains restricts absolute image URLs to these hosts.
	// Empty means any https host is allowed.
	AllowedImageDomains []string `json:"allowedImageDomains,omitempty" yaml:"allowedImageDomains,omitempty"`

	// AllowDataImages permits data:image/* URLs for image sources.
	AllowDataImages bool `json:"allowDataImages,omitempty" yaml:"allowDataImages,omitempty"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// ExportConfig contains static export settings.
type ExportConfig struct {
	// Dir is the output directory for file exports.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Bucket switches exports to S3 when set.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is prepended to every exported key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for tessera.yaml first, then tessera.json.
func Load(dir string) (*Config, error) {
	for _, name := range []string{YAMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E122").
		WithDetail("no " + YAMLFileName + " or " + JSONFileName + " in " + dir).
		WithSuggestion("Create tessera.yaml or run without --config to use defaults")
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension; anything other than .json is parsed as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E122").
				WithDetail(path + " does not exist")
		}
		return nil, errors.New("E121").Wrap(err)
	}

	cfg := &Config{}
	if isJSON(path) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E121").
			WithDetail("failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("E121").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E121").Wrap(err)
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

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Render.MaxDepth == 0 {
		c.Render.MaxDepth = DefaultMaxDepth
	}
	if c.Render.EmitActionAttrs == nil {
		emit := true
		c.Render.EmitActionAttrs = &emit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultOutput
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Render.MaxDepth < 1 {
		return errors.New("E123").
			WithDetail("render.maxDepth must be at least 1")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E123").
			WithDetail("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.New("E123").
			WithDetail("logging.format must be text or json")
	}
	for _, d := range c.Security.AllowedImageDomains {
		if d == "" || strings.ContainsAny(d, "/: ") {
			return errors.New("E123").
				WithDetailf("security.allowedImageDomains entry %q is not a bare host", d)
		}
	}
	return nil
}

// ActionAttrs reports whether action bindings should be rendered.
func (c *Config) ActionAttrs() bool {
	return c.Render.EmitActionAttrs == nil || *c.Render.EmitActionAttrs
}

// OutputPath returns the absolute path to the export directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(c.Dir(), c.Export.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{YAMLFileName, JSONFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
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
			return "", errors.New("E122").
				WithDetail("no config file in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
