// Package config loads the browser's on-disk and environment configuration:
// which repository to open, the diff engine's default rendering options,
// cache sizing, and logging.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidContextLines = errors.New("diff context lines must be non-negative")
	ErrContextLinesTooHigh = errors.New("diff context lines exceeds the maximum")
	ErrInvalidCacheSize    = errors.New("cache size must be positive")
)

// Config holds all configuration for the repository browser.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Diff       DiffConfig       `mapstructure:"diff"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// RepositoryConfig names the repository being browsed.
type RepositoryConfig struct {
	Path string `mapstructure:"path"`
}

// DiffConfig holds default diff rendering options. They are loaded and
// validated, but no command applies them; the diff command's flags decide.
type DiffConfig struct {
	ContextLines     int  `mapstructure:"context_lines"`
	ColorEnabled     bool `mapstructure:"color_enabled"`
	IgnoreWhitespace bool `mapstructure:"ignore_whitespace"`
	Verbose          bool `mapstructure:"verbose"`
	ShowMeta         bool `mapstructure:"show_meta"`
}

// CacheConfig sizes the in-memory caches: BlobCacheSize in megabytes of raw
// blob content (the blame view's cross-revision blob cache tracks memory,
// not entry count), DiffCacheSize as a number of cached diffs.
type CacheConfig struct {
	BlobCacheSize int `mapstructure:"blob_cache_size"`
	DiffCacheSize int `mapstructure:"diff_cache_size"`
}

// LoggingConfig controls the structured slog logger's level, encoding, and
// output stream.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment variables,
// falling back to defaults when no file is found.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("fnc")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/fnc")
		viperCfg.AddConfigPath("/etc/fnc")
	}

	viperCfg.SetEnvPrefix("FNC")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	if unmarshalErr := viperCfg.Unmarshal(&cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	if validateErr := validateConfig(&cfg); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.path", ".")

	viperCfg.SetDefault("diff.context_lines", DefaultDiffContextLines)
	viperCfg.SetDefault("diff.color_enabled", DefaultDiffColorEnabled)
	viperCfg.SetDefault("diff.ignore_whitespace", DefaultDiffIgnoreWhitespace)
	viperCfg.SetDefault("diff.verbose", DefaultDiffVerbose)
	viperCfg.SetDefault("diff.show_meta", DefaultDiffShowMeta)

	viperCfg.SetDefault("cache.blob_cache_size", DefaultBlobCacheSize)
	viperCfg.SetDefault("cache.diff_cache_size", DefaultDiffCacheSize)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)
	viperCfg.SetDefault("logging.output", DefaultLoggingOutput)
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Diff.ContextLines < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidContextLines, cfg.Diff.ContextLines)
	}

	if cfg.Diff.ContextLines > MaxDiffContextLines {
		return fmt.Errorf("%w: %d", ErrContextLinesTooHigh, cfg.Diff.ContextLines)
	}

	if cfg.Cache.BlobCacheSize <= 0 {
		return fmt.Errorf("%w: blob cache %d", ErrInvalidCacheSize, cfg.Cache.BlobCacheSize)
	}

	if cfg.Cache.DiffCacheSize <= 0 {
		return fmt.Errorf("%w: diff cache %d", ErrInvalidCacheSize, cfg.Cache.DiffCacheSize)
	}

	return nil
}
