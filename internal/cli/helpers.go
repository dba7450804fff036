package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/config"
	"github.com/batrachia/libfetch/pkg/download"
	"github.com/batrachia/libfetch/pkg/hooks"
	"github.com/batrachia/libfetch/pkg/release"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
	LogFormat    *string
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// loadConfig loads the configuration, applies global flags and initializes logging.
func loadConfig() (*config.Config, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("failed to determine config path")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	format := logger.FormatText
	if LogFormat != nil && *LogFormat == string(logger.FormatJSON) {
		format = logger.FormatJSON
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)
	logger.Debug("Loaded configuration", logger.Fields{"path": configPath})

	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// newDownloadManager builds the HTTP download manager with the configured credentials.
func newDownloadManager(cfg *config.Config) (*download.ManagerImpl, error) {
	authenticator, err := cfg.ToAuthenticator(lookupEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to configure authentication: %w", err)
	}

	opts := []download.Option{}
	if authenticator != nil {
		logger.Debug("Authenticating release downloads", logger.Fields{"type": authenticator.Type()})
		opts = append(opts, download.WithAuthenticator(authenticator))
	}
	return download.NewManager(cfg.Settings.HTTPTimeout, "libfetch/"+Version, opts...), nil
}

// newAcquirer builds the release acquirer described by cfg.
func newAcquirer(cfg *config.Config, refresh bool) (*release.Acquirer, error) {
	dl, err := newDownloadManager(cfg)
	if err != nil {
		return nil, err
	}
	return release.NewAcquirer(dl, release.Options{
		BaseURL:     cfg.Release.BaseURL,
		Naming:      cfg.Release.Naming(),
		CacheDir:    cfg.GetCacheDir(),
		Offline:     cfg.Release.Offline,
		Checksums:   cfg.Release.Checksums,
		Concurrency: cfg.Settings.MaxConcurrent,
		Refresh:     refresh,
	})
}

// loadHooks registers the hooks directory first, then the explicitly configured scripts.
// Relative script paths are resolved against the config file's directory.
func loadHooks(cfg *config.Config) (*hooks.DefaultHookManager, error) {
	manager := hooks.NewHookManager()
	base := filepath.Dir(getConfigPath())

	if cfg.Hooks.Dir != "" {
		if err := hooks.LoadHooksFromDir(manager, resolveRelative(base, cfg.Hooks.Dir)); err != nil {
			return nil, err
		}
	}
	for hookType, path := range map[hooks.HookType]string{
		hooks.PreResolve:  cfg.Hooks.PreResolve,
		hooks.PostResolve: cfg.Hooks.PostResolve,
	} {
		if path == "" {
			continue
		}
		if err := hooks.LoadHookFile(manager, hookType, resolveRelative(base, path)); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

func resolveRelative(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// hookVars converts configured variables to Tengo values.
func hookVars(cfg *config.Config) map[string]interface{} {
	if len(cfg.Hooks.Vars) == 0 {
		return nil
	}
	vars := make(map[string]interface{}, len(cfg.Hooks.Vars))
	for k, v := range cfg.Hooks.Vars {
		vars[k] = v
	}
	return vars
}
