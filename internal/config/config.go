// Package config handles configuration and durable client state for chatweb.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/chatweb/internal/models"
)

// Environment variables consulted by LoadConfig and GetConfigDir
const (
	EnvHome       = "CHATWEB_HOME"
	EnvBackendURL = "CHATWEB_BACKEND_URL"
)

// ChatConfig holds the optional generation parameters forwarded with /chat.
// Zero values are omitted from the request so the backend defaults apply.
type ChatConfig struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// VoiceConfig configures speech-to-text input
type VoiceConfig struct {
	// Command is run through the shell; it must record one utterance and print
	// the transcript on stdout. Empty disables voice input.
	Command string `json:"command,omitempty"`
	// Probe, when set, is run once to check microphone access
	Probe string `json:"probe,omitempty"`
	Lang  string `json:"lang"`
}

// Config represents the user configuration
type Config struct {
	BackendURL      string      `json:"backend_url"`
	TimeoutSeconds  int         `json:"timeout_seconds"`
	ErrorTTLSeconds int         `json:"error_ttl_seconds"`
	Chat            ChatConfig  `json:"chat,omitempty"`
	Voice           VoiceConfig `json:"voice"`
	TUITheme        string      `json:"tui_theme,omitempty"`
	CopyToClipboard bool        `json:"copy_to_clipboard"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:      models.DefaultBaseURL,
		TimeoutSeconds:  120,
		ErrorTTLSeconds: 10,
		Voice: VoiceConfig{
			Lang: "en-US",
		},
		TUITheme: "tokyonight",
		LogLevel: "info",
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ErrorTTL returns how long an error stays on screen
func (c Config) ErrorTTL() time.Duration {
	if c.ErrorTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ErrorTTLSeconds) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatweb"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the stored identity
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path of the log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "chatweb.log"), nil
}

// LoadConfig loads the configuration from disk.
// CHATWEB_BACKEND_URL takes precedence over the file.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if url := os.Getenv(EnvBackendURL); url != "" {
		cfg.BackendURL = url
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
