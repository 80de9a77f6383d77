// Package config provides unified configuration management for asbuilt.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file → env vars → local file → CLI flags
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/asbuilt/internal/dirs"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// LocalDirName is the per-project override directory.
const LocalDirName = ".asbuilt"

// WizardConfig holds wizard behavior settings.
type WizardConfig struct {
	AutoPrefill  bool `yaml:"auto_prefill"`  // Prefill step data from the job context
	ShowWarnings bool `yaml:"show_warnings"` // Show non-blocking validation warnings

	// Set tracking for merge
	AutoPrefillSet  bool `yaml:"-"`
	ShowWarningsSet bool `yaml:"-"`
}

// Config holds all configuration settings for asbuilt.
// Fields ending in *Set track whether that field was explicitly set in config.
// This allows distinguishing explicit false from "not set", enabling proper
// merge behavior where local config can override global config with zero values.
type Config struct {
	UtilitiesDir string `yaml:"utilities_dir"`
	SessionsDir  string `yaml:"sessions_dir"`
	OutboxDir    string `yaml:"outbox_dir"`
	LogsDir      string `yaml:"logs_dir"`

	DefaultUtility string `yaml:"default_utility"`
	UserLanID      string `yaml:"user_lan_id"`

	Wizard WizardConfig `yaml:"wizard"`

	// Templates (loaded separately, not from YAML)
	Templates *Templates `yaml:"-"`

	// Private: track where config was loaded from
	configDir string
	localDir  string
	sources   []string // ordered list of sources that contributed to this config
}

// Sources returns the ordered list of sources that contributed to this config.
func (c *Config) Sources() []string {
	return c.sources
}

// LocalDir returns the local project config directory if one was detected.
func (c *Config) LocalDir() string {
	return c.localDir
}

// ConfigDir returns the global config directory.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// UtilitiesPath returns the configured utilities directory or the XDG default.
func (c *Config) UtilitiesPath() string {
	return orDefault(c.UtilitiesDir, dirs.UtilitiesDir)
}

// SessionsPath returns the configured sessions directory or the XDG default.
func (c *Config) SessionsPath() string {
	return orDefault(c.SessionsDir, dirs.SessionsDir)
}

// OutboxPath returns the configured outbox directory or the XDG default.
func (c *Config) OutboxPath() string {
	return orDefault(c.OutboxDir, dirs.OutboxDir)
}

// LogsPath returns the configured logs directory or the XDG default.
func (c *Config) LogsPath() string {
	return orDefault(c.LogsDir, dirs.LogsDir)
}

func orDefault(v string, def func() string) string {
	if v != "" {
		return v
	}
	return def()
}

// Load loads all configuration from the default locations.
// It auto-detects .asbuilt/ in the current working directory for local overrides.
// It installs defaults if needed.
func Load() (*Config, error) {
	globalDir := DefaultConfigDir()

	var localDir string
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, LocalDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			localDir = candidate
		}
	}

	return LoadWithDirs(globalDir, localDir)
}

// LoadWithDirs loads configuration with explicit global and local directories.
// Local config (.asbuilt/) overrides global config (~/.config/asbuilt/) per-field.
// If localDir is empty, only global config is used.
func LoadWithDirs(globalDir, localDir string) (*Config, error) {
	if err := InstallDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	// Load in order: embedded → global → env → local
	// Each layer only overwrites fields that were explicitly set

	// 1. Start with embedded defaults
	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}
	cfg.sources = append(cfg.sources, "embedded")

	// 2. Merge global config
	globalPath := filepath.Join(globalDir, "config.yaml")
	if globalCfg, err := loadFile(globalPath); err == nil {
		cfg.mergeFrom(globalCfg)
		cfg.sources = append(cfg.sources, globalPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load global config: %w", err)
	}

	// 3. Apply environment variables (between global and local)
	cfg.applyEnv()

	// 4. Merge local config (highest file precedence)
	if localDir != "" {
		localPath := filepath.Join(localDir, "config.yaml")
		if localCfg, err := loadFile(localPath); err == nil {
			cfg.mergeFrom(localCfg)
			cfg.sources = append(cfg.sources, localPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load local config: %w", err)
		}
	}

	cfg.configDir = globalDir
	cfg.localDir = localDir

	templates, err := LoadTemplates(globalDir, localDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	cfg.Templates = templates

	return cfg, nil
}

// DefaultConfigDir returns the default global configuration directory path.
func DefaultConfigDir() string {
	return dirs.ConfigDir()
}

// InstallDefaults creates the config directory and installs default config if not exists.
func InstallDefaults(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Template and utility directories for user overrides
	for _, sub := range []string{"templates", "utilities"} {
		if err := os.MkdirAll(filepath.Join(configDir, sub), 0o700); err != nil {
			return fmt.Errorf("create %s dir: %w", sub, err)
		}
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := defaultsFS.ReadFile("defaults/config.yaml")
		if err != nil {
			return fmt.Errorf("read embedded config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	return nil
}

// loadEmbedded loads config from the embedded defaults.
func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseConfig(data)
}

// loadFile loads config from a file path.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	return parseConfigWithTracking(data)
}

// parseConfig parses YAML config data into a Config struct.
func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// parseConfigWithTracking parses YAML config and tracks which fields were set.
func parseConfigWithTracking(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if wizard, ok := raw["wizard"].(map[string]any); ok {
		if _, ok := wizard["auto_prefill"]; ok {
			cfg.Wizard.AutoPrefillSet = true
		}
		if _, ok := wizard["show_warnings"]; ok {
			cfg.Wizard.ShowWarningsSet = true
		}
	}

	return cfg, nil
}

// applyEnv applies environment variables to the config.
// Env vars sit between global and local config in precedence.
func (c *Config) applyEnv() {
	strVars := []struct {
		name string
		dst  *string
	}{
		{"ASBUILT_UTILITIES_DIR", &c.UtilitiesDir},
		{"ASBUILT_SESSIONS_DIR", &c.SessionsDir},
		{"ASBUILT_OUTBOX_DIR", &c.OutboxDir},
		{"ASBUILT_LOGS_DIR", &c.LogsDir},
		{"ASBUILT_UTILITY", &c.DefaultUtility},
		{"ASBUILT_USER", &c.UserLanID},
	}
	for _, v := range strVars {
		if val := os.Getenv(v.name); val != "" {
			*v.dst = val
			c.sources = append(c.sources, "env:"+v.name)
		}
	}

	if v := os.Getenv("ASBUILT_AUTO_PREFILL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Wizard.AutoPrefill = b
			c.Wizard.AutoPrefillSet = true
			c.sources = append(c.sources, "env:ASBUILT_AUTO_PREFILL")
		}
	}

	if v := os.Getenv("ASBUILT_SHOW_WARNINGS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Wizard.ShowWarnings = b
			c.Wizard.ShowWarningsSet = true
			c.sources = append(c.sources, "env:ASBUILT_SHOW_WARNINGS")
		}
	}
}

// mergeFrom merges non-empty/set values from src into c.
func (c *Config) mergeFrom(src *Config) {
	if src.UtilitiesDir != "" {
		c.UtilitiesDir = src.UtilitiesDir
	}
	if src.SessionsDir != "" {
		c.SessionsDir = src.SessionsDir
	}
	if src.OutboxDir != "" {
		c.OutboxDir = src.OutboxDir
	}
	if src.LogsDir != "" {
		c.LogsDir = src.LogsDir
	}
	if src.DefaultUtility != "" {
		c.DefaultUtility = src.DefaultUtility
	}
	if src.UserLanID != "" {
		c.UserLanID = src.UserLanID
	}

	if src.Wizard.AutoPrefillSet {
		c.Wizard.AutoPrefill = src.Wizard.AutoPrefill
		c.Wizard.AutoPrefillSet = true
	}
	if src.Wizard.ShowWarningsSet {
		c.Wizard.ShowWarnings = src.Wizard.ShowWarnings
		c.Wizard.ShowWarningsSet = true
	}
}

// ApplyCLIFlags applies CLI flag overrides to the config.
// CLI flags have the highest precedence; empty values are ignored.
func (c *Config) ApplyCLIFlags(utility, utilitiesDir, user string) {
	if utility != "" {
		c.DefaultUtility = utility
		c.sources = append(c.sources, "cli:utility")
	}
	if utilitiesDir != "" {
		c.UtilitiesDir = utilitiesDir
		c.sources = append(c.sources, "cli:utilities-dir")
	}
	if user != "" {
		c.UserLanID = user
		c.sources = append(c.sources, "cli:user")
	}
}
