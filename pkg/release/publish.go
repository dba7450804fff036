package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/archive"
	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
)

// PublishRequest describes a locally built library to publish as a release asset.
type PublishRequest struct {
	Kind     locator.Kind
	LibPath  string
	OutDir   string
	Version  string
	Platform platform.Platform
	Naming   Naming
}

// PublishResult describes the written asset.
type PublishResult struct {
	Asset         string
	Path          string
	SHA256        string
	ChecksumsPath string
}

// Publish writes the asset for req into OutDir under its release name and records
// its digest in OutDir/SHA256SUMS, replacing any previous entry for the same asset.
func Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	ver, err := NormalizeVersion(req.Version)
	if err != nil {
		return nil, err
	}
	p := platform.Resolve(req.Platform)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if req.Kind.EnvVar() == "" {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownKind, req.Kind)
	}
	if !fsutil.FileExists(req.LibPath) {
		return nil, fmt.Errorf("%w: library %s is not a regular file", errors.ErrInvalidPath, req.LibPath)
	}
	if req.OutDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", errors.ErrInvalidPath)
	}

	asset := req.Naming.AssetName(req.Kind, ver, p)
	dest := filepath.Join(req.OutDir, asset)

	if req.Naming.Archived {
		member := p.StaticLibFileName(req.Kind.LinkName())
		err = archive.NewManager().Create(ctx, map[string]string{req.LibPath: member}, dest)
	} else {
		err = copyAtomic(req.LibPath, dest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write asset %s: %w", asset, err)
	}

	sum, err := fsutil.SHA256File(dest)
	if err != nil {
		return nil, err
	}

	sumsPath := filepath.Join(req.OutDir, ChecksumsFile)
	sums, err := ReadChecksumsFile(sumsPath)
	if err != nil {
		return nil, err
	}
	sums[asset] = sum
	if err := sums.WriteFile(sumsPath); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", sumsPath, err)
	}

	logger.Success("Published release asset", logger.Fields{"asset": asset, "sha256": sum})
	return &PublishResult{Asset: asset, Path: dest, SHA256: sum, ChecksumsPath: sumsPath}, nil
}

func copyAtomic(src, dst string) error {
	tmp := dst + ".tmp"
	if err := fsutil.Copy(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return fsutil.Move(tmp, dst)
}
