// Package archive unpacks archived release assets and packs static libraries
// into release archives.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/mholt/archives"
)

// archiveSuffixes lists the asset name endings treated as archives.
var archiveSuffixes = []string{
	".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar.zst", ".tar.bz2", ".tbz2", ".tar", ".zip", ".7z",
}

// IsArchiveName reports whether an asset name denotes an archive rather than a bare library.
func IsArchiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractMember finds the first regular file in archivePath whose base name is
// memberName and writes it to destPath. Nested directories inside the archive are searched.
func (am *Manager) ExtractMember(ctx context.Context, archivePath, memberName, destPath string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	found := ""
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Base(p) != memberName {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		found = p
		return fs.SkipAll
	})
	if err != nil {
		return fmt.Errorf("failed to read archive %s: %w", archivePath, err)
	}
	if found == "" {
		return pkgerrors.Wrapf(pkgerrors.ErrArchiveMember, "%s not found in %s", memberName, filepath.Base(archivePath))
	}

	return am.writeMember(fsys, found, destPath)
}

func (am *Manager) writeMember(fsys fs.FS, member, destPath string) error {
	srcFile, err := fsys.Open(member)
	if err != nil {
		return fmt.Errorf("failed to open archive member %s: %w", member, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := fsutil.EnsureFileDir(destPath); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "extract-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, srcFile); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to copy archive member %s: %w", member, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeSecure); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions for %s: %w", tmpPath, err)
	}
	return fsutil.Move(tmpPath, destPath)
}

// Create writes a gzip-compressed tarball at archivePath. files maps paths on
// disk to their names inside the archive.
func (am *Manager) Create(ctx context.Context, files map[string]string, archivePath string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to archive: %w", pkgerrors.ErrInvalidPath)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, files)
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}

	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}
