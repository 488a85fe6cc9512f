// Package config loads and edits the rolo client settings file.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/projection"
)

const (
	configFile = "config.json"
	lockFile   = "config.json.lock"
)

// Defaults applied when a setting is absent.
const (
	DefaultServerURL      = "http://localhost:3001"
	DefaultTimeout        = 10 * time.Second
	DefaultActivityWindow = 20
)

// Keys lists the settable keys in display order.
var Keys = []string{"server_url", "timeout", "activity_window", "collation"}

// Settings is the effective client configuration after defaults and
// environment overrides.
type Settings struct {
	ServerURL      string
	Timeout        time.Duration
	ActivityWindow int
	Collation      string
}

// Dir returns the config directory: $ROLO_HOME if set, else ~/.config/rolo.
func Dir() (string, error) {
	if v := os.Getenv("ROLO_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "rolo"), nil
}

// Load reads the config from dir. A missing file yields an empty config.
func Load(dir string) (*models.Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return &cfg, nil
}

// Save writes the config to dir using atomic write (temp file + rename)
func Save(dir string, cfg *models.Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, configFile))
}

// withConfigLock serializes read-modify-write cycles on config.json.
func withConfigLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, lockFile), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFileExclusive(f); err != nil {
		return err
	}
	defer unlockFile(f)

	return fn()
}

// Resolve applies defaults and the ROLO_SERVER_URL override to cfg.
// Unparseable stored values fall back to their defaults.
func Resolve(cfg *models.Config) Settings {
	s := Settings{
		ServerURL:      DefaultServerURL,
		Timeout:        DefaultTimeout,
		ActivityWindow: DefaultActivityWindow,
		Collation:      projection.DefaultCollation,
	}
	if cfg != nil {
		if cfg.ServerURL != "" {
			s.ServerURL = cfg.ServerURL
		}
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			s.Timeout = d
		}
		if cfg.ActivityWindow > 0 {
			s.ActivityWindow = cfg.ActivityWindow
		}
		if cfg.Collation != "" {
			s.Collation = cfg.Collation
		}
	}
	if v := os.Getenv("ROLO_SERVER_URL"); v != "" {
		s.ServerURL = v
	}
	return s
}

// LoadSettings reads the config from dir and resolves it.
func LoadSettings(dir string) (Settings, error) {
	cfg, err := Load(dir)
	if err != nil {
		return Settings{}, err
	}
	return Resolve(cfg), nil
}

// Get returns the stored value of key, or "" when unset.
func Get(dir, key string) (string, error) {
	cfg, err := Load(dir)
	if err != nil {
		return "", err
	}
	return get(cfg, key)
}

func get(cfg *models.Config, key string) (string, error) {
	switch key {
	case "server_url":
		return cfg.ServerURL, nil
	case "timeout":
		return cfg.Timeout, nil
	case "activity_window":
		if cfg.ActivityWindow == 0 {
			return "", nil
		}
		return strconv.Itoa(cfg.ActivityWindow), nil
	case "collation":
		return cfg.Collation, nil
	default:
		return "", unknownKey(key)
	}
}

// Set validates value and stores it under key. An empty value clears the key.
func Set(dir, key, value string) error {
	value = strings.TrimSpace(value)
	return withConfigLock(dir, func() error {
		cfg, err := Load(dir)
		if err != nil {
			return err
		}
		if err := set(cfg, key, value); err != nil {
			return err
		}
		return Save(dir, cfg)
	})
}

func set(cfg *models.Config, key, value string) error {
	switch key {
	case "server_url":
		if value != "" {
			u, err := url.Parse(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("server_url must be an http(s) URL, got %q", value)
			}
			value = strings.TrimRight(value, "/")
		}
		cfg.ServerURL = value
	case "timeout":
		if value != "" {
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return fmt.Errorf("timeout must be a positive duration like 5s, got %q", value)
			}
		}
		cfg.Timeout = value
	case "activity_window":
		n := 0
		if value != "" {
			var err error
			n, err = strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("activity_window must be a positive integer, got %q", value)
			}
		}
		cfg.ActivityWindow = n
	case "collation":
		if value != "" {
			if _, err := language.Parse(value); err != nil {
				return fmt.Errorf("collation must be a BCP 47 language tag, got %q", value)
			}
		}
		cfg.Collation = value
	default:
		return unknownKey(key)
	}
	return nil
}

// Entry is one key with its stored and effective values.
type Entry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Effective string `json:"effective"`
}

// List returns every key with its stored and effective value.
func List(dir string) ([]Entry, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}
	s := Resolve(cfg)
	effective := map[string]string{
		"server_url":      s.ServerURL,
		"timeout":         s.Timeout.String(),
		"activity_window": strconv.Itoa(s.ActivityWindow),
		"collation":       s.Collation,
	}

	entries := make([]Entry, 0, len(Keys))
	for _, k := range Keys {
		v, _ := get(cfg, k)
		entries = append(entries, Entry{Key: k, Value: v, Effective: effective[k]})
	}
	return entries, nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
}
