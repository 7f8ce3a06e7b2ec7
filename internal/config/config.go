// Package config loads ghsync settings from a YAML file with GHSYNC_
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JohanCodinha/ghsync/internal/logger"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. GHSYNC_LOG_LEVEL.
	EnvPrefix = "GHSYNC"

	fileName      = "config.yaml"
	defaultDBName = "ghsync.db"
)

// Config holds every setting ghsync reads at startup.
type Config struct {
	DatabasePath  string       `mapstructure:"database_path" yaml:"database_path"`
	LogLevel      string       `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string       `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int          `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int          `mapstructure:"log_max_backups" yaml:"log_max_backups"`
	GitHubToken   string       `mapstructure:"github_token" yaml:"github_token,omitempty"`
	Sync          SyncDefaults `mapstructure:"sync" yaml:"sync"`

	path string
}

// SyncDefaults are the values of the sync command's toggles when no flag is given.
type SyncDefaults struct {
	Labels     bool `mapstructure:"labels" yaml:"labels"`
	Comments   bool `mapstructure:"comments" yaml:"comments"`
	Milestones bool `mapstructure:"milestones" yaml:"milestones"`
}

// DefaultPath returns $XDG_CONFIG_HOME/ghsync/config.yaml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "ghsync", fileName), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DatabasePath:  defaultDBName,
		LogLevel:      "info",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		Sync: SyncDefaults{
			Labels:   true,
			Comments: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("log_max_backups", d.LogMaxBackups)
	v.SetDefault("github_token", d.GitHubToken)
	v.SetDefault("sync.labels", d.Sync.Labels)
	v.SetDefault("sync.comments", d.Sync.Comments)
	v.SetDefault("sync.milestones", d.Sync.Milestones)
}

// Load reads the config file at path. A missing file is not an error: the
// defaults and environment apply. Relative database and log paths are
// resolved against the directory of path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	} else {
		logger.Debug("config: %s not found, using defaults", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	cfg.DatabasePath = resolve(dir, cfg.DatabasePath)
	if cfg.LogFile != "" {
		cfg.LogFile = resolve(dir, cfg.LogFile)
	}
	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(dir, p)
}

// Path returns the file the config was loaded from, whether or not it existed.
func (c *Config) Path() string {
	return c.path
}

// Level returns the parsed log level. Load has already validated it.
func (c *Config) Level() logger.Level {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// LogOptions returns the rotating file settings for logger.SetLogFile.
func (c *Config) LogOptions() logger.FileOptions {
	return logger.FileOptions{
		Path:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	}
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone and reported as an error.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
