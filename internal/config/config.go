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
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Listen and DatabaseURL are used by "prism serve" only.
	Listen      string `yaml:"listen"`
	DatabaseURL string `yaml:"database_url"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	DataDir        string `yaml:"data_dir"` // preferences, history index, crash reports
	ThemesDir      string `yaml:"themes_dir"`
	AutoSave       bool   `yaml:"autosave"`
}

type ExportConfig struct {
	Format    string `yaml:"format"` // png | svg | pdf
	Preset    string `yaml:"preset"`
	OutputDir string `yaml:"output_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Export        ExportConfig  `yaml:"export"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, AutoSave: true},
		Export:        ExportConfig{Format: "png", Preset: "2x", OutputDir: "."},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, Listen: ":8080"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "PRISM_BACKEND_URL"
	EnvBackendTimeoutMs = "PRISM_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "PRISM_TLS_INSECURE"
	EnvListen           = "PRISM_LISTEN"
	EnvDatabaseURL      = "PRISM_DATABASE_URL"
	EnvTelemetryOptIn   = "PRISM_TELEMETRY_OPT_IN"
	EnvDataDir          = "PRISM_DATA_DIR"
	EnvThemesDir        = "PRISM_THEMES_DIR"
	EnvExportFormat     = "PRISM_EXPORT_FORMAT"
	EnvExportDir        = "PRISM_EXPORT_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PRISM_LOG_LEVEL"
	EnvLogFormat = "PRISM_LOG_FORMAT"
	EnvLogSource = "PRISM_LOG_SOURCE"
	EnvLogFile   = "PRISM_LOG_FILE"
	// EnvConfigFile points Load/Save at an explicit file (tests, portable installs).
	EnvConfigFile = "PRISM_CONFIG"
)

// Service/keys for OS keyring.
const (
	keyringService = "Prism"
	keyringToken   = "backend_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) { return keyringGet(service, key) }
func (k *osKeyring) Set(service, key, value string) error  { return keyringSet(service, key, value) }
func (k *osKeyring) Delete(service, key string) error      { return keyringDelete(service, key) }

// baseDir resolves the per-user Prism directory for the current OS.
func baseDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Prism")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Prism")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "prism")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "prism")
		}
	}
	if base == "" || base == "Prism" || base == "prism" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the effective data directory: the configured one or the
// "data" folder next to the config file.
func (c AppConfig) DataDir() string {
	if d := strings.TrimSpace(c.General.DataDir); d != "" {
		return d
	}
	if p, err := ConfigPath(); err == nil {
		return filepath.Join(filepath.Dir(p), "data")
	}
	return filepath.Join(os.TempDir(), "prism")
}

// ThemesDir returns the directory scanned for user theme YAML files.
func (c AppConfig) ThemesDir() string {
	if d := strings.TrimSpace(c.General.ThemesDir); d != "" {
		return d
	}
	return filepath.Join(c.DataDir(), "themes")
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the backend token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	// token from keyring; a missing keychain is not fatal
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
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
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the backend token from the keychain.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.AutoSave = src.General.AutoSave
	if s := strings.TrimSpace(src.General.DataDir); s != "" {
		dst.General.DataDir = s
	}
	if s := strings.TrimSpace(src.General.ThemesDir); s != "" {
		dst.General.ThemesDir = s
	}
	if s := strings.TrimSpace(src.Export.Format); s != "" {
		dst.Export.Format = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Export.Preset); s != "" {
		dst.Export.Preset = s
	}
	if s := strings.TrimSpace(src.Export.OutputDir); s != "" {
		dst.Export.OutputDir = s
	}
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	if src.Backend.Listen != "" {
		dst.Backend.Listen = src.Backend.Listen
	}
	if src.Backend.DatabaseURL != "" {
		dst.Backend.DatabaseURL = src.Backend.DatabaseURL
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

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		cfg.Backend.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		cfg.Backend.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvThemesDir)); v != "" {
		cfg.General.ThemesDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.OutputDir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"backend.base_url":         EnvBackendURL,
	"backend.timeout_ms":       EnvBackendTimeoutMs,
	"backend.tls_insecure":     EnvBackendTLSInsec,
	"backend.listen":           EnvListen,
	"backend.database_url":     EnvDatabaseURL,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.data_dir":         EnvDataDir,
	"general.themes_dir":       EnvThemesDir,
	"export.format":            EnvExportFormat,
	"export.output_dir":        EnvExportDir,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Timeout returns the backend timeout, substituting the default for non-positive values.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}
