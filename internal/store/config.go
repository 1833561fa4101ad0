package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type BackendKind string

const (
	BackendSQLite BackendKind = "sqlite"
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

func ParseBackendKind(s string) (BackendKind, error) {
	switch k := BackendKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return BackendSQLite, nil
	case BackendSQLite, BackendRedis, BackendMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want sqlite|redis|memory)", s)
	}
}

type GlobalConfig struct {
	// Backend selects the persistent store (sqlite|redis|memory). Default: sqlite.
	Backend string `json:"backend,omitempty"`

	// Dir is the data directory for the sqlite backend. Default: <config dir>/data.
	Dir string `json:"dir,omitempty"`

	// RedisURL is used when Backend == "redis" (e.g. redis://localhost:6379/0).
	RedisURL string `json:"redisUrl,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`

	// CurrentBoard is the board opened by `moodboard view` without arguments.
	CurrentBoard string `json:"currentBoard,omitempty"`

	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is light|dark|auto.
	Theme string `json:"theme,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.moodboard).
	if v := strings.TrimSpace(os.Getenv("MOODBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".moodboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultDataDir is where the sqlite file lives when neither --dir nor config.dir is set.
func DefaultDataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config; ignore errors so a bad .bak never blocks a save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// CLI and TUI may write concurrently: unique temp name + rename.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// ConfigKeys lists the keys accepted by Set, sorted.
func ConfigKeys() []string {
	keys := []string{"backend", "dir", "redisUrl", "logLevel", "currentBoard", "tui.theme"}
	sort.Strings(keys)
	return keys
}

// Set assigns a config key from its string form. An empty value clears the key.
func (cfg *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend":
		if value != "" {
			if _, err := ParseBackendKind(value); err != nil {
				return err
			}
		}
		cfg.Backend = value
	case "dir":
		cfg.Dir = value
	case "redisUrl":
		cfg.RedisURL = value
	case "logLevel":
		cfg.LogLevel = value
	case "currentBoard":
		cfg.CurrentBoard = value
	case "tui.theme":
		switch value {
		case "", "light", "dark", "auto":
		default:
			return fmt.Errorf("invalid tui.theme %q (want light|dark|auto)", value)
		}
		if cfg.TUI == nil {
			cfg.TUI = &TUIConfig{}
		}
		cfg.TUI.Theme = value
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}
