package cache

import (
	"fmt"
	"strings"

	"github.com/batrachia/libfetch/internal/logger"
)

// Operation wraps a Manager and renders its results for humans.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean cleans the cache based on the provided options.
func (op *Operation) Clean(options CleanOptions) (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{
		"all":       options.All,
		"artifacts": options.Artifacts,
		"downloads": options.Downloads,
		"keep":      options.Keep,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 && len(result.RemovedVersions) == 0 {
		return "No files were removed from the cache.", nil
	}

	msg := fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
	if result.ArtifactFreed > 0 {
		msg += fmt.Sprintf("\n- Artifacts: %s", formatBytes(result.ArtifactFreed))
	}
	if result.DownloadFreed > 0 {
		msg += fmt.Sprintf("\n- Downloads: %s", formatBytes(result.DownloadFreed))
	}
	if len(result.RemovedVersions) > 0 {
		msg += fmt.Sprintf("\n- Versions removed: %s", strings.Join(result.RemovedVersions, ", "))
	}
	return msg, nil
}

// GetInfo returns information about the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	versions := "none"
	if len(info.Versions) > 0 {
		versions = strings.Join(info.Versions, ", ")
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Artifacts:    %s (%d files)
  Downloads:    %s (%d files)
  Versions:     %s`,
		info.Directory,
		formatBytes(info.TotalSize),
		formatBytes(info.ArtifactSize),
		info.ArtifactFiles,
		formatBytes(info.DownloadSize),
		info.DownloadFiles,
		versions,
	), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.GetDirectory()
}

// SetDirectory sets a new cache directory.
func (op *Operation) SetDirectory(dir string) error {
	if dir == "" {
		return fmt.Errorf("cache directory cannot be empty")
	}

	logger.Debug("Setting cache directory", logger.Fields{"directory": dir})
	return op.manager.SetDirectory(dir)
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
