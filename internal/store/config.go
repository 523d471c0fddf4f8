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

// GlobalConfig holds persistent defaults. Flags and GIGTRACK_* environment
// variables override every field.
type GlobalConfig struct {
	Backend     string `json:"backend,omitempty"`
	DataDir     string `json:"dataDir,omitempty"`
	Slot        string `json:"slot,omitempty"`
	RedisURL    string `json:"redisUrl,omitempty"`
	RedisPrefix string `json:"redisPrefix,omitempty"`

	Currency    string `json:"currency,omitempty"`
	StatusRule  string `json:"statusRule,omitempty"`
	ExportLabel string `json:"exportLabel,omitempty"`
}

// configKeys maps user-facing keys (`gigtrack config set <key>`) to fields.
var configKeys = map[string]func(c *GlobalConfig) *string{
	"backend":     func(c *GlobalConfig) *string { return &c.Backend },
	"dataDir":     func(c *GlobalConfig) *string { return &c.DataDir },
	"slot":        func(c *GlobalConfig) *string { return &c.Slot },
	"redisUrl":    func(c *GlobalConfig) *string { return &c.RedisURL },
	"redisPrefix": func(c *GlobalConfig) *string { return &c.RedisPrefix },
	"currency":    func(c *GlobalConfig) *string { return &c.Currency },
	"statusRule":  func(c *GlobalConfig) *string { return &c.StatusRule },
	"exportLabel": func(c *GlobalConfig) *string { return &c.ExportLabel },
}

// ConfigKeys lists the keys accepted by Set, sorted.
func ConfigKeys() []string {
	out := make([]string, 0, len(configKeys))
	for k := range configKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns a config value by its user-facing key. An empty value clears it.
func (c *GlobalConfig) Set(key, value string) error {
	f, ok := configKeys[strings.TrimSpace(key)]
	if !ok {
		return fmt.Errorf("unknown config key: %q (expected one of %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	*f(c) = strings.TrimSpace(value)
	return nil
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.gigtrack).
	if v := strings.TrimSpace(os.Getenv("GIGTRACK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gigtrack"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultDataDir is where the file and sqlite backends keep data when no
// directory is configured.
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

	// Keep a copy of the previous config; ignore errors to avoid blocking normal usage.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
