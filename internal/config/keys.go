package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setter func(cfg *Config, value string) error

var settableKeys = map[string]setter{
	"backend_url": func(cfg *Config, v string) error {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("backend_url must start with http:// or https://")
		}
		cfg.BackendURL = strings.TrimRight(v, "/")
		return nil
	},
	"timeout_seconds":   intSetter(func(cfg *Config, n int) { cfg.TimeoutSeconds = n }),
	"error_ttl_seconds": intSetter(func(cfg *Config, n int) { cfg.ErrorTTLSeconds = n }),
	"chat.model": func(cfg *Config, v string) error {
		cfg.Chat.Model = v
		return nil
	},
	"chat.temperature": func(cfg *Config, v string) error {
		if v == "" {
			cfg.Chat.Temperature = nil
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("chat.temperature must be a number between 0 and 2")
		}
		cfg.Chat.Temperature = &f
		return nil
	},
	"chat.max_tokens": intSetter(func(cfg *Config, n int) { cfg.Chat.MaxTokens = n }),
	"voice.command": func(cfg *Config, v string) error {
		cfg.Voice.Command = v
		return nil
	},
	"voice.probe": func(cfg *Config, v string) error {
		cfg.Voice.Probe = v
		return nil
	},
	"voice.lang": func(cfg *Config, v string) error {
		cfg.Voice.Lang = v
		return nil
	},
	"tui_theme": func(cfg *Config, v string) error {
		cfg.TUITheme = v
		return nil
	},
	"copy_to_clipboard": func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false")
		}
		cfg.CopyToClipboard = b
		return nil
	},
	"log_level": func(cfg *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
			return nil
		}
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	},
}

func intSetter(apply func(cfg *Config, n int)) setter {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("value must be a non-negative integer")
		}
		apply(cfg, n)
		return nil
	}
}

// SettableKeys lists the keys accepted by Set, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a configuration value by its dotted key
func (c *Config) Set(key, value string) error {
	apply, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return apply(c, value)
}
