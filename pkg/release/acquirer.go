package release

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/archive"
	"github.com/batrachia/libfetch/pkg/cache"
	"github.com/batrachia/libfetch/pkg/download"
	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
)

// Options configure automatic acquisition.
type Options struct {
	BaseURL     string
	Naming      Naming
	CacheDir    string
	Offline     bool
	Checksums   bool
	Concurrency int
	// Refresh ignores cached libraries and downloaded assets.
	Refresh bool
}

// Acquirer downloads release assets into the cache. It implements locator.Acquirer.
type Acquirer struct {
	downloads download.Manager
	archives  *archive.Manager
	opts      Options
}

var _ locator.Acquirer = (*Acquirer)(nil)

// NewAcquirer validates opts and returns an Acquirer backed by dl.
func NewAcquirer(dl download.Manager, opts Options) (*Acquirer, error) {
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("cache directory is required: %w", errors.ErrCacheDirectory)
	}
	dir, err := fsutil.AbsClean(opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("invalid cache directory %q: %w", opts.CacheDir, err)
	}
	opts.CacheDir = dir

	if !opts.Offline {
		u, err := url.Parse(opts.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: release base URL %q must be absolute", errors.ErrConfigValidation, opts.BaseURL)
		}
	}

	return &Acquirer{
		downloads: dl,
		archives:  archive.NewManager(),
		opts:      opts,
	}, nil
}

// target is one artifact being acquired.
type target struct {
	kind    locator.Kind
	asset   string
	libName string
	path    string
	// source is the redacted asset URL; empty when offline without a base URL.
	source string
}

// Acquire returns one artifact per kind, reusing cached libraries and downloading the rest.
// Every failure wraps errors.ErrAcquisition.
func (a *Acquirer) Acquire(ctx context.Context, version string, p platform.Platform, kinds []locator.Kind) ([]locator.Artifact, error) {
	artifacts, err := a.acquire(ctx, version, p, kinds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrAcquisition, err)
	}
	return artifacts, nil
}

func (a *Acquirer) acquire(ctx context.Context, version string, p platform.Platform, kinds []locator.Kind) ([]locator.Artifact, error) {
	ver, err := NormalizeVersion(version)
	if err != nil {
		return nil, err
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	artifactDir := cache.ArtifactDir(a.opts.CacheDir, ver, p)
	targets := make([]target, 0, len(kinds))
	for _, kind := range kinds {
		if kind.EnvVar() == "" {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownKind, kind)
		}
		libName := p.StaticLibFileName(kind.LinkName())
		asset := a.opts.Naming.AssetName(kind, ver, p)
		targets = append(targets, target{
			kind:    kind,
			asset:   asset,
			libName: libName,
			path:    filepath.Join(artifactDir, libName),
			source:  a.sourceOf(ver, asset),
		})
	}

	sources := make(map[locator.Kind]locator.Source, len(targets))
	var missing []target
	stale := false
	for _, t := range targets {
		if !a.opts.Refresh && fsutil.FileExists(t.path) {
			if cachedFrom(t.path, t.source) {
				logger.Debug("Using cached artifact", logger.Fields{"kind": t.kind, "path": t.path})
				sources[t.kind] = locator.SourceCache
				continue
			}
			logger.Info("Cached artifact was fetched from a different source", logger.Fields{"kind": t.kind, "source": t.source})
			stale = true
		}
		missing = append(missing, t)
	}

	if len(missing) > 0 {
		if a.opts.Offline {
			names := make([]string, len(missing))
			for i, t := range missing {
				names[i] = t.asset
			}
			return nil, fmt.Errorf("%w: %s (v%s, %s)", errors.ErrCacheMiss, strings.Join(names, ", "), ver, p.Slug())
		}
		if err := a.download(ctx, ver, p, missing, a.opts.Refresh || stale); err != nil {
			return nil, err
		}
		for _, t := range missing {
			sources[t.kind] = locator.SourceDownload
		}
	}

	out := make([]locator.Artifact, 0, len(targets))
	for _, t := range targets {
		out = append(out, locator.Artifact{
			Kind:      t.kind,
			Path:      t.path,
			Source:    sources[t.kind],
			SearchDir: artifactDir,
			LinkName:  t.kind.LinkName(),
		})
	}
	return out, nil
}

func (a *Acquirer) download(ctx context.Context, ver string, p platform.Platform, missing []target, force bool) error {
	downloadDir := cache.DownloadDir(a.opts.CacheDir, ver, p)

	var sums Checksums
	if a.opts.Checksums {
		var err error
		sums, err = a.fetchChecksums(ctx, ver, downloadDir)
		if err != nil {
			return err
		}
	}

	items := make([]download.Item, 0, len(missing))
	for _, t := range missing {
		raw, err := AssetURL(a.opts.BaseURL, ver, t.asset)
		if err != nil {
			return err
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid asset URL %q: %w", raw, err)
		}
		item := download.Item{ID: string(t.kind), URL: u, Filename: t.asset}
		if sums != nil {
			sum, ok := sums[t.asset]
			if !ok {
				return fmt.Errorf("%w: %s", errors.ErrChecksumMissing, t.asset)
			}
			item.Checksum = sum
		}
		items = append(items, item)
	}

	logger.Info("Downloading release assets", logger.Fields{"count": len(items), "version": ver, "platform": p.Slug()})
	paths, err := a.downloads.FetchAll(ctx, items, download.Options{
		Dir:         downloadDir,
		Concurrency: a.opts.Concurrency,
		Force:       force,
	})
	if err != nil {
		return err
	}

	for _, t := range missing {
		src, ok := paths[string(t.kind)]
		if !ok || src == "" {
			return fmt.Errorf("%w: no file downloaded for %s", errors.ErrDownloadFailed, t.asset)
		}
		if err := a.install(ctx, t, src); err != nil {
			return err
		}
		if err := os.WriteFile(cache.SourceFile(t.path), []byte(t.source+"\n"), fsutil.FileModeDefault); err != nil {
			return fmt.Errorf("failed to record source of %s: %w", t.asset, err)
		}
		logger.Success("Cached artifact", logger.Fields{"kind": t.kind, "path": t.path})
	}
	return nil
}

func (a *Acquirer) fetchChecksums(ctx context.Context, ver, downloadDir string) (Checksums, error) {
	raw, err := AssetURL(a.opts.BaseURL, ver, ChecksumsFile)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid checksums URL %q: %w", raw, err)
	}
	path, err := a.downloads.Fetch(ctx, download.Item{ID: ChecksumsFile, URL: u, Filename: ChecksumsFile}, download.Options{
		Dir:   downloadDir,
		Force: true,
	})
	if err != nil {
		return nil, err
	}
	return ReadChecksumsFile(path)
}

// sourceOf is the identity a cached library is keyed on besides version and platform.
// It changes with the base URL, the asset template, the names and the archived form.
func (a *Acquirer) sourceOf(ver, asset string) string {
	if a.opts.BaseURL == "" {
		return ""
	}
	raw, err := AssetURL(a.opts.BaseURL, ver, asset)
	if err != nil {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// cachedFrom reports whether the library at path was fetched from source.
// An empty source matches any cached library.
func cachedFrom(path, source string) bool {
	if source == "" {
		return true
	}
	data, err := os.ReadFile(cache.SourceFile(path))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == source
}

// install places a downloaded asset at its linker-friendly cache path.
func (a *Acquirer) install(ctx context.Context, t target, src string) error {
	if archive.IsArchiveName(t.asset) {
		return a.archives.ExtractMember(ctx, src, t.libName, t.path)
	}

	if err := fsutil.EnsureFileDir(t.path); err != nil {
		return err
	}
	tmp := t.path + ".tmp"
	if err := fsutil.Copy(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to copy %s into cache: %w", t.asset, err)
	}
	return fsutil.Move(tmp, t.path)
}
