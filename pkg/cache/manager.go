package cache

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/hashicorp/go-version"
)

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// NewDefaultManager creates a new cache manager with default directory.
func NewDefaultManager() (*DefaultManager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user cache directory")
	}

	if err := os.MkdirAll(cacheDir, fsutil.DirModePrivate); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory")
	}

	return NewManager(cacheDir), nil
}

// Clean removes cached files according to the specified options.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	result := &CleanResult{}

	if !options.Artifacts && !options.Downloads {
		options.All = true
	}

	var keep version.Constraints
	if options.Keep != "" {
		c, err := version.NewConstraint(options.Keep)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCacheClean, "invalid keep constraint %q: %v", options.Keep, err)
		}
		keep = c
	}

	removed := map[string]struct{}{}

	if options.All || options.Artifacts {
		size, versions, err := cm.cleanArea(ArtifactsRoot(cm.directory), keep)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean artifact cache")
		}
		result.ArtifactFreed = size
		result.TotalFreed += size
		for _, v := range versions {
			removed[v] = struct{}{}
		}
	}

	if options.All || options.Downloads {
		size, versions, err := cm.cleanArea(DownloadsRoot(cm.directory), keep)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean download cache")
		}
		result.DownloadFreed = size
		result.TotalFreed += size
		for _, v := range versions {
			removed[v] = struct{}{}
		}
	}

	result.RemovedVersions = sortVersions(removed)
	return result, nil
}

// cleanArea empties dir, or with a constraint removes only the version
// directories that do not satisfy it.
func (cm *DefaultManager) cleanArea(dir string, keep version.Constraints) (int64, []string, error) {
	if keep == nil {
		versions, err := listVersionDirs(dir)
		if err != nil {
			return 0, nil, err
		}
		size, err := cleanDirectory(dir)
		return size, versions, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, errors.Wrapf(errors.ErrCacheClean, "reading %s: %v", dir, err)
	}

	var freed int64
	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		v, parseErr := version.NewVersion(name)
		if parseErr == nil && keep.Check(v) {
			continue
		}

		path := filepath.Join(dir, name)
		size, _, err := getDirSizeAndFiles(path)
		if err != nil {
			return freed, removed, err
		}
		if err := os.RemoveAll(path); err != nil {
			return freed, removed, errors.Wrapf(err, "failed to remove %s", path)
		}
		logger.Debug("Removed cached version", logger.Fields{"path": path, "bytes": size})
		freed += size
		if parseErr == nil {
			removed = append(removed, strings.TrimPrefix(name, "v"))
		}
	}
	return freed, removed, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{
		Directory: cm.directory,
	}

	artifactSize, artifactFiles, err := getDirSizeAndFiles(ArtifactsRoot(cm.directory))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCacheInfo, "artifact cache: %v", err)
	}
	info.ArtifactSize = artifactSize
	info.ArtifactFiles = artifactFiles

	downloadSize, downloadFiles, err := getDirSizeAndFiles(DownloadsRoot(cm.directory))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCacheInfo, "download cache: %v", err)
	}
	info.DownloadSize = downloadSize
	info.DownloadFiles = downloadFiles

	info.TotalSize = info.ArtifactSize + info.DownloadSize

	seen := map[string]struct{}{}
	for _, root := range []string{ArtifactsRoot(cm.directory), DownloadsRoot(cm.directory)} {
		versions, err := listVersionDirs(root)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCacheInfo, "%v", err)
		}
		for _, v := range versions {
			seen[v] = struct{}{}
		}
	}
	info.Versions = sortVersions(seen)

	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// SetDirectory sets the cache directory path.
func (cm *DefaultManager) SetDirectory(dir string) error {
	if dir == "" {
		return errors.ErrCacheDirectory
	}
	cm.directory = dir
	return nil
}

// listVersionDirs returns the versions stored directly under dir, without the v prefix.
func listVersionDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading directory %s", dir)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := version.NewVersion(entry.Name()); err != nil {
			continue
		}
		out = append(out, strings.TrimPrefix(entry.Name(), "v"))
	}
	return out, nil
}

func sortVersions(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		vi, erri := version.NewVersion(out[i])
		vj, errj := version.NewVersion(out[j])
		if erri != nil || errj != nil {
			return out[i] < out[j]
		}
		return vi.LessThan(vj)
	})
	return out
}

// cleanDirectory removes a directory and returns bytes freed.
func cleanDirectory(dir string) (int64, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	totalSize, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}

	if err := os.MkdirAll(dir, fsutil.DirModePrivate); err != nil {
		return totalSize, errors.Wrapf(err, "failed to recreate directory %s", dir)
	}

	return totalSize, nil
}

// getDirSizeAndFiles calculates directory size and file count.
// A missing directory counts as empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
