// Package config loads workspace configuration from .groovyls.yaml and from
// the settings blobs an editor sends over LSP.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file looked up in the root.
const FileName = ".groovyls.yaml"

// DefaultMaxCompletionItems caps completion lists unless configured.
const DefaultMaxCompletionItems = 1000

// Exporter names accepted for telemetry.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the effective configuration of one workspace.
type Config struct {
	// Classpath lists jar files, folders of jars, or dir/* globs.
	Classpath []string `yaml:"classpath"`
	// LibraryFolders is a ';'-separated list of folders scanned for jars.
	LibraryFolders string `yaml:"library_folders"`
	// Ignore holds gitignore-syntax patterns excluded from the workspace scan.
	Ignore     []string         `yaml:"ignore"`
	Completion CompletionConfig `yaml:"completion"`
	// Database is the symbol database path; empty keeps it in memory.
	Database  string          `yaml:"database"`
	Parallel  bool            `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type CompletionConfig struct {
	MaxItems int `yaml:"max_items"`
}

type TelemetryConfig struct {
	Traces  string `yaml:"traces"`
	Metrics string `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		Completion: CompletionConfig{MaxItems: DefaultMaxCompletionItems},
		Parallel:   true,
		Telemetry:  TelemetryConfig{Traces: ExporterNone, Metrics: ExporterNone},
		Log:        LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w: %v", path, ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	slog.Debug("loaded config", slog.String("path", path), slog.Int("classpath", len(cfg.Classpath)))
	return cfg, nil
}

// LoadWorkspace loads the configuration file of a workspace root.
func LoadWorkspace(root string) (Config, error) {
	return Load(filepath.Join(root, FileName))
}

// Validate rejects negative caps and unknown exporters and log levels.
func (c Config) Validate() error {
	if c.Completion.MaxItems < 0 {
		return fmt.Errorf("%w: completion.max_items must not be negative, got %d", ErrInvalidConfig, c.Completion.MaxItems)
	}
	for name, exp := range map[string]string{"traces": c.Telemetry.Traces, "metrics": c.Telemetry.Metrics} {
		switch exp {
		case "", ExporterNone, ExporterStdout:
		default:
			return fmt.Errorf("%w: telemetry.%s: unknown exporter %q", ErrInvalidConfig, name, exp)
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a configured log level to slog. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}

// MaxCompletionItems returns the completion cap; zero means unlimited.
func (c Config) MaxCompletionItems() int { return c.Completion.MaxItems }

// ClasspathEqual reports whether two configurations load the same external
// classes. A difference invalidates the compilation graph.
func (c Config) ClasspathEqual(o Config) bool {
	return slices.Equal(c.Classpath, o.Classpath) && c.LibraryFolders == o.LibraryFolders
}

// settings is the "groovy" section of workspace/didChangeConfiguration.
type settings struct {
	Classpath      *[]string `json:"classpath"`
	LibraryFolders *string   `json:"libraryFolders"`
	Ignore         *[]string `json:"ignore"`
	Completion     *struct {
		MaxItems *int `json:"maxItems"`
	} `json:"completion"`
}

// MergeSettings applies an LSP settings blob
// ({"groovy": {"classpath": [...], ...}}) over c. Keys absent from the blob
// keep their current value; a blob without a "groovy" section is a no-op.
func (c Config) MergeSettings(raw any) (Config, error) {
	if raw == nil {
		return c, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return c, fmt.Errorf("config: settings: %w", err)
	}
	var envelope struct {
		Groovy *settings `json:"groovy"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return c, fmt.Errorf("config: settings: %w: %v", ErrInvalidConfig, err)
	}
	s := envelope.Groovy
	if s == nil {
		return c, nil
	}
	out := c
	if s.Classpath != nil {
		out.Classpath = slices.Clone(*s.Classpath)
	}
	if s.LibraryFolders != nil {
		out.LibraryFolders = *s.LibraryFolders
	}
	if s.Ignore != nil {
		out.Ignore = slices.Clone(*s.Ignore)
	}
	if s.Completion != nil && s.Completion.MaxItems != nil {
		out.Completion.MaxItems = *s.Completion.MaxItems
	}
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}
