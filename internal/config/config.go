/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// It only describes where things live; the editor preferences themselves go to the settings store.

type GeneralConfig struct {
	// DataRoot is the application data directory that bundled images and fonts are resolved against.
	DataRoot string `yaml:"data_root"`
}

type SettingsConfig struct {
	Backend string `yaml:"backend"` // "yaml" | "sqlite" | "memory" | "fyne"
	Path    string `yaml:"path"`    // empty: derived from the config directory
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Settings      SettingsConfig `yaml:"settings"`
	Logging       LoggingConfig  `yaml:"logging"`
}

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	// BackendPrefs keeps settings in the UI toolkit's preferences (UI only).
	BackendPrefs = "fyne"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataRoot: defaultDataRoot()},
		Settings:      SettingsConfig{Backend: BackendYAML, Path: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvDataRoot        = "QEC_DATA_ROOT"
	EnvSettingsBackend = "QEC_SETTINGS_BACKEND"
	EnvSettingsPath    = "QEC_SETTINGS_PATH"
	EnvConfigDir       = "QEC_CONFIG_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "QEC_LOG_LEVEL"
	EnvLogFormat = "QEC_LOG_FORMAT"
	EnvLogSource = "QEC_LOG_SOURCE"
	EnvLogFile   = "QEC_LOG_FILE"
)

// Dir returns the per-user config directory. QEC_CONFIG_DIR wins when set.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "EffectComposer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "EffectComposer")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "effectcomposer")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// SettingsPath returns the settings store location for the configured backend.
func (c AppConfig) SettingsPath() (string, error) {
	if p := strings.TrimSpace(c.Settings.Path); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Settings.Backend == BackendSQLite {
		return filepath.Join(dir, "settings.sqlite"), nil
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	cfg, err := LoadFile()
	applyEnvOverrides(&cfg)
	return cfg, err
}

// LoadFile returns the defaults merged with the user config file, without
// environment overrides. Use it to edit and Save the file.
func LoadFile() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	return cfg, nil
}

// Keys lists the settable config keys in display order.
var Keys = []string{
	"general.data_root",
	"settings.backend",
	"settings.path",
	"logging.level",
	"logging.format",
	"logging.source",
	"logging.file",
}

// ErrUnknownKey is returned by Get and Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown config key")

// Get returns the value of key formatted for display.
func (c AppConfig) Get(key string) (string, error) {
	switch key {
	case "general.data_root":
		return c.General.DataRoot, nil
	case "settings.backend":
		return c.Settings.Backend, nil
	case "settings.path":
		return c.Settings.Path, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.source":
		return strconv.FormatBool(c.Logging.Source), nil
	case "logging.file":
		return c.Logging.File, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns value to key after validating it.
func (c *AppConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "general.data_root":
		c.General.DataRoot = value
	case "settings.backend":
		b := normalizeBackend(value)
		if b == "" {
			return fmt.Errorf("invalid settings backend %q (yaml|sqlite|memory|fyne)", value)
		}
		c.Settings.Backend = b
	case "settings.path":
		c.Settings.Path = value
	case "logging.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			c.Logging.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log level %q", value)
		}
	case "logging.format":
		switch strings.ToLower(value) {
		case "console", "json":
			c.Logging.Format = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log format %q", value)
		}
	case "logging.source":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid logging.source %q: %w", value, err)
		}
		c.Logging.Source = v
	case "logging.file":
		c.Logging.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.DataRoot) != "" {
		dst.General.DataRoot = strings.TrimSpace(src.General.DataRoot)
	}
	if b := normalizeBackend(src.Settings.Backend); b != "" {
		dst.Settings.Backend = b
	}
	if strings.TrimSpace(src.Settings.Path) != "" {
		dst.Settings.Path = strings.TrimSpace(src.Settings.Path)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataRoot)); v != "" {
		cfg.General.DataRoot = v
	}
	if b := normalizeBackend(os.Getenv(EnvSettingsBackend)); b != "" {
		cfg.Settings.Backend = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvSettingsPath)); v != "" {
		cfg.Settings.Path = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// normalizeBackend returns the canonical backend name, or "" for unknown values.
func normalizeBackend(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case BackendYAML, "yml":
		return BackendYAML
	case BackendSQLite, "sqlite3":
		return BackendSQLite
	case BackendMemory:
		return BackendMemory
	case BackendPrefs:
		return BackendPrefs
	default:
		return ""
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "general.data_root":
		env = EnvDataRoot
	case "settings.backend":
		env = EnvSettingsBackend
	case "settings.path":
		env = EnvSettingsPath
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// defaultDataRoot places bundled data next to the executable, like an installed application bundle.
func defaultDataRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
