// Package config provides configuration management for libfetch.
// It handles loading, validating, and saving the YAML configuration file that
// controls where release assets are fetched from, how they are cached, and how
// link directives are rendered.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/hooks"
	"github.com/batrachia/libfetch/pkg/linkflags"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/batrachia/libfetch/pkg/release"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Release  ReleaseConfig `yaml:"release"`
	Auth     AuthConfig    `yaml:"auth"`
	Link     LinkConfig    `yaml:"link,omitempty"`
	Hooks    HooksConfig   `yaml:"hooks,omitempty"`
}

// PlatformConfig represents the target platform.
type PlatformConfig struct {
	// OS overrides the target operating system ("linux", "macos", "windows").
	// If empty, the system will auto-detect the current OS
	OS string `yaml:"os,omitempty"`

	// Arch overrides the target architecture ("amd64", "arm64", "386", "arm").
	// If empty, the system will auto-detect the current architecture
	Arch string `yaml:"arch,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Network settings
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`

	Platform PlatformConfig `yaml:"platform,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json, yaml, cgo, env, go
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// ReleaseConfig describes where release assets are published.
type ReleaseConfig struct {
	BaseURL       string            `yaml:"base_url"`
	Version       string            `yaml:"version,omitempty"`
	AssetTemplate string            `yaml:"asset_template,omitempty"`
	Names         map[string]string `yaml:"names,omitempty"`
	Archived      bool              `yaml:"archived"`
	Checksums     bool              `yaml:"checksums"`
	Offline       bool              `yaml:"offline"`
}

// LinkConfig adjusts the rendered link directives.
type LinkConfig struct {
	// SystemLibs replaces the platform's default system libraries when non-empty.
	SystemLibs []string `yaml:"system_libs,omitempty"`
	// Frameworks replaces the platform's default frameworks when non-empty.
	Frameworks []string `yaml:"frameworks,omitempty"`
	ExtraLibs  []string `yaml:"extra_libs,omitempty"`
	GoPackage  string   `yaml:"go_package,omitempty"`
}

// HooksConfig points at Tengo scripts run around resolution.
type HooksConfig struct {
	PreResolve  string            `yaml:"pre_resolve,omitempty"`
	PostResolve string            `yaml:"post_resolve,omitempty"`
	Dir         string            `yaml:"dir,omitempty"`
	Vars        map[string]string `yaml:"vars,omitempty"`
}

// Default configuration values.
const (
	// DefaultBaseURL is where batrachia publishes its native WebRTC builds.
	DefaultBaseURL = "https://github.com/batrachia/batrachia/releases/download"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultMaxConcurrent is the default number of parallel downloads.
	DefaultMaxConcurrent = 2

	// DefaultTokenEnv names the environment variable holding the release host token.
	DefaultTokenEnv = "GITHUB_TOKEN"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	// FileName is the name of the configuration file inside the config directory.
	FileName = "config.yaml"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	return &Config{
		Settings: Settings{
			CacheDir:      cacheDir,
			HTTPTimeout:   DefaultHTTPTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
			OutputFormat:  string(linkflags.FormatText),
			LogLevel:      "info",
		},
		Release: ReleaseConfig{
			BaseURL:   DefaultBaseURL,
			Checksums: true,
		},
		Auth: AuthConfig{
			Type:     "bearer",
			TokenEnv: DefaultTokenEnv,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	// Start from the defaults so that booleans omitted from the file keep their default.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return config, nil
}

// SaveConfig atomically writes the configuration to path.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// The file may hold credentials.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if err := validateRelease(c.Release); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return validateHooks(c.Hooks)
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1")
	}
	if _, err := linkflags.ParseFormat(s.OutputFormat); err != nil {
		return fmt.Errorf("output_format: %w", err)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", s.LogLevel)
	}
	if s.Platform.OS != "" || s.Platform.Arch != "" {
		p := platform.Resolve(platform.Platform{OS: s.Platform.OS, Arch: s.Platform.Arch})
		if err := p.Validate(); err != nil {
			return fmt.Errorf("platform: %w", err)
		}
	}
	return nil
}

func validateRelease(r ReleaseConfig) error {
	if r.BaseURL != "" {
		u, err := url.Parse(r.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("release.base_url %q must be an absolute URL", r.BaseURL)
		}
	} else if !r.Offline {
		return fmt.Errorf("release.base_url is required unless release.offline is set")
	}
	if r.Version != "" {
		if _, err := release.NormalizeVersion(r.Version); err != nil {
			return fmt.Errorf("release.version: %w", err)
		}
	}
	for kind := range r.Names {
		if _, err := locator.ParseKind(kind); err != nil {
			return fmt.Errorf("release.names: %w", err)
		}
	}
	return nil
}

func validateHooks(h HooksConfig) error {
	for name := range h.Vars {
		if hooks.IsReservedVar(name) {
			return fmt.Errorf("hooks.vars: %q is a reserved variable name", name)
		}
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, FileName), nil
}

// GetCacheDir returns the base cache directory from settings.
func (c *Config) GetCacheDir() string {
	return c.Settings.CacheDir
}

// Platform returns the configured target, with empty fields filled from the host.
func (c *Config) Platform() platform.Platform {
	return platform.Resolve(platform.Platform{OS: c.Settings.Platform.OS, Arch: c.Settings.Platform.Arch})
}

// Naming returns the asset naming rules described by the release section.
func (r ReleaseConfig) Naming() release.Naming {
	n := release.Naming{Template: r.AssetTemplate, Archived: r.Archived}
	if len(r.Names) > 0 {
		n.Names = make(map[locator.Kind]string, len(r.Names))
		for k, v := range r.Names {
			kind, err := locator.ParseKind(k)
			if err != nil {
				continue
			}
			n.Names[kind] = v
		}
	}
	return n
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Auth.Type == "" {
		c.Auth.Type = defaults.Auth.Type
	}
	if c.Auth.TokenEnv == "" && c.Auth.Type == "bearer" {
		c.Auth.TokenEnv = defaults.Auth.TokenEnv
	}
}
