// Package config provides the configuration of the speechemotion CLI.
//
// Configuration is a single YAML file under os.UserConfigDir()/speechemotion/:
//
//	~/Library/Application Support/speechemotion/config.yaml   (macOS)
//	~/.config/speechemotion/config.yaml                       (Linux)
//	%AppData%/speechemotion/config.yaml                       (Windows)
//
// SPEECHEMOTION_CONFIG_DIR overrides the directory. A missing file means
// defaults: models are read from ./models as <artifact>.onnx.
//
// Example:
//
//	models:
//	  source: s3
//	  s3:
//	    bucket: ml-artifacts
//	    prefix: emotion/v1
//	    region: us-east-1
//	log:
//	  format: json
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/speechemotion/pkg/storage"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "speechemotion"

	// fileName is the configuration file inside the directory.
	fileName = "config.yaml"

	// dirEnv overrides the configuration directory.
	dirEnv = "SPEECHEMOTION_CONFIG_DIR"
)

// Model sources.
const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

// Config is the CLI configuration.
type Config struct {
	Models ModelsConfig `yaml:"models" json:"models"`
	Log    LogConfig    `yaml:"log" json:"log"`

	// Path is the file the configuration was loaded from.
	Path string `yaml:"-" json:"-"`
}

// ModelsConfig describes where classifier artifacts live and how to run them.
type ModelsConfig struct {
	Source         string   `yaml:"source" json:"source"`
	Dir            string   `yaml:"dir,omitempty" json:"dir,omitempty"`
	Extension      string   `yaml:"extension,omitempty" json:"extension,omitempty"`
	InputName      string   `yaml:"input_name,omitempty" json:"input_name,omitempty"`
	OutputName     string   `yaml:"output_name,omitempty" json:"output_name,omitempty"`
	IntraOpThreads int      `yaml:"intra_op_threads,omitempty" json:"intra_op_threads,omitempty"`
	SerialRun      bool     `yaml:"serial_run,omitempty" json:"serial_run,omitempty"`
	S3             S3Config `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// S3Config locates artifacts in an S3-compatible bucket. Credentials come
// from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY; without them the bucket
// is read anonymously.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty" json:"path_style,omitempty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `yaml:"format" json:"format"` // text or json
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Source:    SourceLocal,
			Dir:       "models",
			Extension: ".onnx",
		},
		Log: LogConfig{Format: "text"},
	}
}

// DefaultPath returns the configuration file path.
func DefaultPath() (string, error) {
	if dir := os.Getenv(dirEnv); dir != "" {
		return filepath.Join(dir, fileName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration file at path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field combinations.
func (c *Config) Validate() error {
	switch c.Models.Source {
	case SourceLocal, "":
	case SourceS3:
		if c.Models.S3.Bucket == "" {
			return fmt.Errorf("models.s3.bucket is required for source s3")
		}
	default:
		return fmt.Errorf("unknown models.source %q (want local or s3)", c.Models.Source)
	}
	switch c.Log.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("unknown log.format %q (want text or json)", c.Log.Format)
	}
	if c.Models.IntraOpThreads < 0 {
		return fmt.Errorf("models.intra_op_threads must not be negative")
	}
	return nil
}

// Save writes the configuration to c.Path, creating the directory.
func (c *Config) Save() error {
	if c.Path == "" {
		return fmt.Errorf("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", c.Path, err)
	}
	return nil
}

// Store opens the artifact store described by the models section.
// Relative local directories are resolved against the working directory.
func (c *Config) Store() (storage.FileStore, error) {
	m := c.Models
	switch m.Source {
	case SourceS3:
		client := storage.NewS3Client(storage.S3Options{
			Region:          m.S3.Region,
			Endpoint:        m.S3.Endpoint,
			PathStyle:       m.S3.PathStyle,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		return storage.NewS3(client, m.S3.Bucket, m.S3.Prefix), nil
	default:
		dir := m.Dir
		if dir == "" {
			dir = "models"
		}
		return storage.NewLocal(dir)
	}
}
