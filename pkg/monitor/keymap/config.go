// Package keymap provides the monitor's key bindings, with user overrides
// loaded from keymap.json in the rolo config directory.
package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config holds user key binding overrides.
type Config struct {
	// Bindings maps "context:key" to a command name, e.g.
	// {"main:x": "delete", "global:ctrl+q": "quit"}.
	Bindings map[string]string `json:"bindings"`
}

// ConfigPath returns the keymap file path inside the config directory.
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, "keymap.json")
}

// LoadConfig reads overrides from path. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{Bindings: make(map[string]string)}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Bindings == nil {
		cfg.Bindings = make(map[string]string)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyConfig installs the overrides in cfg on r. Entries with an empty
// context or key are skipped.
func ApplyConfig(r *Registry, cfg *Config) {
	for binding, cmdStr := range cfg.Bindings {
		ctx, key := parseBinding(binding)
		if ctx == "" || key == "" {
			continue
		}
		r.SetUserOverride(ctx, key, Command(cmdStr))
	}
}

// parseBinding splits "context:key". A bare key is global.
func parseBinding(s string) (Context, string) {
	ctx, key, ok := strings.Cut(s, ":")
	if !ok {
		return ContextGlobal, s
	}
	return Context(ctx), key
}
