// Package config provides configuration management for Mosaic tooling
// using Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration merges three layers: a .mosaic.yml file, MOSAIC_* prefixed
// environment variables, and flags bound by the CLI. It covers logging, the
// preview server, and markup inspection output.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Preview PreviewConfig `yaml:"preview"`
	Markup  MarkupConfig  `yaml:"markup"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PreviewConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Title          string   `yaml:"title"`
	AssetDir       string   `yaml:"asset_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DebounceMS     int      `yaml:"debounce_ms"`
}

type MarkupConfig struct {
	Output    string `yaml:"output"`
	ShowPaths bool   `yaml:"show_paths"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle underscored keys set via viper (workaround for viper's
	// field-name matching, which misses snake_case keys)
	if viper.IsSet("preview.asset_dir") {
		config.Preview.AssetDir = viper.GetString("preview.asset_dir")
	}
	if viper.IsSet("preview.allowed_origins") {
		config.Preview.AllowedOrigins = viper.GetStringSlice("preview.allowed_origins")
	}
	if viper.IsSet("preview.debounce_ms") {
		config.Preview.DebounceMS = viper.GetInt("preview.debounce_ms")
	}
	if viper.IsSet("markup.show_paths") {
		config.Markup.ShowPaths = viper.GetBool("markup.show_paths")
	}

	// Apply default values for LogConfig if not set
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	// Apply default values for PreviewConfig if not set
	if !viper.IsSet("preview.port") && config.Preview.Port == 0 {
		config.Preview.Port = 8080
	}
	if config.Preview.Host == "" {
		config.Preview.Host = "localhost"
	}
	if config.Preview.Title == "" {
		config.Preview.Title = "Mosaic Preview"
	}
	if !viper.IsSet("preview.debounce_ms") && config.Preview.DebounceMS == 0 {
		config.Preview.DebounceMS = 250
	}

	// Apply default values for MarkupConfig if not set
	if config.Markup.Output == "" {
		config.Markup.Output = "table"
	}
	if !viper.IsSet("markup.show_paths") {
		config.Markup.ShowPaths = true
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration the tool runs with when no file, env,
// or flag layer is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Preview: PreviewConfig{
			Port:       8080,
			Host:       "localhost",
			Title:      "Mosaic Preview",
			DebounceMS: 250,
		},
		Markup: MarkupConfig{Output: "table", ShowPaths: true},
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := validatePreviewConfig(&config.Preview); err != nil {
		return fmt.Errorf("preview config: %w", err)
	}
	if err := validateMarkupConfig(&config.Markup); err != nil {
		return fmt.Errorf("markup config: %w", err)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level %q is not one of debug, info, warn, error", config.Level)
	}

	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format %q is not one of text, json", config.Format)
	}

	return nil
}

// validatePreviewConfig validates preview server configuration values
func validatePreviewConfig(config *PreviewConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	// Validate host
	if config.Host != "" {
		// Basic validation - no dangerous characters
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	// Validate asset directory if specified
	if config.AssetDir != "" {
		if err := validatePath(config.AssetDir); err != nil {
			return fmt.Errorf("invalid asset_dir %q: %w", config.AssetDir, err)
		}
	}

	for _, origin := range config.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("allowed_origins contains an empty entry")
		}
	}

	if config.DebounceMS < 0 || config.DebounceMS > 10000 {
		return fmt.Errorf("debounce_ms %d is not in valid range 0-10000", config.DebounceMS)
	}

	return nil
}

func validateMarkupConfig(config *MarkupConfig) error {
	switch config.Output {
	case "table", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("output %q is not one of table, json, yaml", config.Output)
	}
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
