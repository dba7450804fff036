// Package errors defines the sentinel errors shared across libfetch and small
// helpers for wrapping them with context. Callers match with the standard
// library's errors.Is.
package errors

import "fmt"

// Resolution taxonomy. Every locator failure wraps exactly one of these.
var (
	// ErrConfiguration is returned when an operator-supplied override is unusable.
	ErrConfiguration = fmt.Errorf("configuration error")
	// ErrAcquisition is returned when an artifact cannot be found or downloaded automatically.
	ErrAcquisition = fmt.Errorf("acquisition error")
)

// Override errors.
var (
	ErrOverrideEmpty      = fmt.Errorf("override path is empty")
	ErrOverrideNotFound   = fmt.Errorf("override path does not exist")
	ErrOverrideNotFile    = fmt.Errorf("override path is not a regular file")
	ErrOverrideUnreadable = fmt.Errorf("override path is not readable")
)

// Acquisition errors.
var (
	ErrDownloadFailed      = fmt.Errorf("download failed")
	ErrFileHashMismatch    = fmt.Errorf("file hash mismatch")
	ErrChecksumMissing     = fmt.Errorf("no checksum published for asset")
	ErrArchiveMember       = fmt.Errorf("archive does not contain the library")
	ErrCacheMiss           = fmt.Errorf("artifact not cached and offline mode is enabled")
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	ErrInvalidVersion      = fmt.Errorf("invalid version")
	ErrUnknownKind         = fmt.Errorf("unknown artifact kind")
)

// Filesystem errors.
var (
	ErrInvalidPath = fmt.Errorf("invalid path")
	ErrEmptyPaths  = fmt.Errorf("source and destination paths cannot be empty")
)

// Config errors.
var (
	ErrEmptyConfigPath    = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath  = fmt.Errorf("invalid config file path")
	ErrConfigParse        = fmt.Errorf("failed to parse config")
	ErrConfigValidation   = fmt.Errorf("invalid configuration")
	ErrConfigEncode       = fmt.Errorf("failed to encode config")
	ErrConfigDirectory    = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate   = fmt.Errorf("failed to create config file")
	ErrConfigFileExists   = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigFileRename   = fmt.Errorf("failed to rename temporary config file")
	ErrUnknownConfigKey   = fmt.Errorf("unknown configuration key")
	ErrInvalidConfigValue = fmt.Errorf("invalid configuration value")
)

// Cache errors.
var (
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")
)

// Hook errors.
var (
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
