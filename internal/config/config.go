package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
)

const EnvPrefix = "MATRIXGEN"

// Config is the generator configuration
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Matrix   MatrixConfig   `mapstructure:"matrix"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// OutputConfig controls where the rendered document goes
type OutputConfig struct {
	// Path is the file the document is written to (default: .evergreen/config.yml)
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is json or text
	Format string `mapstructure:"format"`
}

// MatrixConfig overrides axis values
type MatrixConfig struct {
	// Versions replaces the server version axis; empty keeps the built-in list
	Versions []string `mapstructure:"versions"`
}

// PublishConfig controls uploading the document to S3-compatible storage.
// Endpoint and credentials come from MATRIXGEN_S3_* variables.
type PublishConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Key     string `mapstructure:"key"`
}

// SnapshotConfig controls recording rendered documents in Postgres
type SnapshotConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile path; empty disables metrics output
	Textfile string `mapstructure:"textfile"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.path", ".evergreen/config.yml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("matrix.versions", []string{})
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.key", "evergreen/config.yml")
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("metrics.textfile", "")
}

// New returns a viper instance with defaults and MATRIXGEN_ environment
// binding, e.g. MATRIXGEN_OUTPUT_PATH for output.path.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path is required")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format unsupported: %q", c.Log.Format)
	}
	for i, version := range c.Matrix.Versions {
		if strings.TrimSpace(version) == "" {
			return fmt.Errorf("matrix.versions[%d] is empty", i)
		}
	}
	if c.Publish.Enabled && strings.TrimSpace(c.Publish.Key) == "" {
		return errors.New("publish.key is required when publishing")
	}
	return nil
}

// ServerVersions returns the version axis values, or nil for the built-in list.
func (c Config) ServerVersions() []domain.Value {
	if len(c.Matrix.Versions) == 0 {
		return nil
	}
	out := make([]domain.Value, 0, len(c.Matrix.Versions))
	for _, v := range c.Matrix.Versions {
		out = append(out, domain.Value(strings.TrimSpace(v)))
	}
	return out
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level unsupported: %q", raw)
	}
}
