// Package config holds the YAML-backed configuration for pointer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"pointer/internal/fileutil"
)

// Config is the root configuration document.
type Config struct {
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Mode    ModeConfig    `yaml:"mode"`
	Context ContextConfig `yaml:"context"`
	Session SessionConfig `yaml:"session"`
	Tools   ToolsConfig   `yaml:"tools"`
	Web     WebConfig     `yaml:"web"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig describes the model endpoint.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key,omitempty"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// UIConfig controls terminal presentation.
type UIConfig struct {
	Theme          string `yaml:"theme"`
	ShowThinking   bool   `yaml:"show_thinking"`
	MaxOutputLines int    `yaml:"max_output_lines"`
}

// ModeConfig controls how tool invocations are gated.
type ModeConfig struct {
	AutoRunTools bool `yaml:"auto_run_tools"`
	DryRun       bool `yaml:"dry_run"`
}

// ContextConfig tunes the codebase scan.
type ContextConfig struct {
	MaxDepth          int      `yaml:"max_depth"`
	MaxFileSize       int64    `yaml:"max_file_size"`
	MaxContextFiles   int      `yaml:"max_context_files"`
	RefreshMinutes    int      `yaml:"refresh_minutes"`
	AutoRefresh       bool     `yaml:"auto_refresh"`
	ExcludePatterns   []string `yaml:"exclude_patterns"`
	IncludeExtensions []string `yaml:"include_extensions"`
}

// SessionConfig controls chat persistence and the history window.
type SessionConfig struct {
	Dir           string `yaml:"dir,omitempty"`
	HistoryWindow int    `yaml:"history_window"`
}

// ToolsConfig tunes tool execution.
type ToolsConfig struct {
	CommandTimeoutSeconds int      `yaml:"command_timeout_seconds"`
	AllowedDirs           []string `yaml:"allowed_dirs,omitempty"`
}

// WebConfig tunes the web tools.
type WebConfig struct {
	FetchMaxBytes  int64  `yaml:"fetch_max_bytes"`
	SearchEndpoint string `yaml:"search_endpoint,omitempty"`
	MaxResults     int    `yaml:"max_results"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// Dir returns the configuration directory for the current platform.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pointer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "pointer")
	}
	return filepath.Join(home, ".config", "pointer")
}

// Path returns the config file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Save writes the configuration atomically. The file may contain an API key,
// hence the tight permissions.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return fileutil.AtomicWrite(path, data, 0600)
}
