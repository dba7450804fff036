package cache

import (
	"path/filepath"
	"strings"

	"github.com/batrachia/libfetch/pkg/platform"
)

const (
	artifactsDirName = "artifacts"
	downloadsDirName = "downloads"
)

// VersionDirName is the directory name a release version is stored under.
func VersionDirName(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}

// ArtifactsRoot returns the directory holding linker-ready libraries.
func ArtifactsRoot(cacheDir string) string {
	return filepath.Join(cacheDir, artifactsDirName)
}

// DownloadsRoot returns the directory holding raw release assets.
func DownloadsRoot(cacheDir string) string {
	return filepath.Join(cacheDir, downloadsDirName)
}

// ArtifactDir returns <cache>/artifacts/v{version}/{os}-{arch}.
func ArtifactDir(cacheDir, version string, p platform.Platform) string {
	return filepath.Join(ArtifactsRoot(cacheDir), VersionDirName(version), p.Slug())
}

// DownloadDir returns <cache>/downloads/v{version}/{os}-{arch}.
func DownloadDir(cacheDir, version string, p platform.Platform) string {
	return filepath.Join(DownloadsRoot(cacheDir), VersionDirName(version), p.Slug())
}

// SourceFile returns the marker recording which asset URL a cached library came from.
func SourceFile(libPath string) string {
	return libPath + ".source"
}
