package tclcore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds interpreter settings. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	// RecursionLimit bounds the depth of nested procedure calls.
	RecursionLimit int `yaml:"recursion_limit"`

	// DisableVarNameCache turns off caching of parsed variable names and
	// local slot indices on name values.
	DisableVarNameCache bool `yaml:"disable_var_name_cache"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Prompt and HistoryFile configure the interactive shell.
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`

	// MaxErrorContext is the number of expression characters quoted on
	// each side of the error mark in expression syntax errors.
	MaxErrorContext int `yaml:"max_error_context"`
}

// DefaultConfig returns the settings used by New.
func DefaultConfig() Config {
	return Config{
		RecursionLimit:  1000,
		LogLevel:        "warn",
		Prompt:          "% ",
		MaxErrorContext: 25,
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.RecursionLimit <= 0 {
		return cfg, fmt.Errorf("%s: recursion_limit must be positive, got %d", path, cfg.RecursionLimit)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
