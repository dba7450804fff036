package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestArchiveManager_CreateAndExtractMember(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	lib := filepath.Join(tempDir, "build", "out", "libwebrtc.a")
	readme := filepath.Join(tempDir, "build", "README.md")
	writeFile(t, lib, "!<arch>\nwebrtc objects")
	writeFile(t, readme, "release notes")

	am := NewManager()
	archivePath := filepath.Join(tempDir, "dist", "webrtc-linux-x64.tar.gz")
	require.NoError(t, am.Create(ctx, map[string]string{
		lib:    "webrtc/lib/libwebrtc.a",
		readme: "webrtc/README.md",
	}, archivePath))
	require.FileExists(t, archivePath)

	dest := filepath.Join(tempDir, "cache", "libwebrtc.a")
	require.NoError(t, am.ExtractMember(ctx, archivePath, "libwebrtc.a", dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "!<arch>\nwebrtc objects", string(content))
}

func TestArchiveManager_ExtractMemberMissing(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	other := filepath.Join(tempDir, "libother.a")
	writeFile(t, other, "other")

	am := NewManager()
	archivePath := filepath.Join(tempDir, "sys-linux-x64.tar.gz")
	require.NoError(t, am.Create(ctx, map[string]string{other: "libother.a"}, archivePath))

	err := am.ExtractMember(ctx, archivePath, "libsys.a", filepath.Join(tempDir, "out", "libsys.a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrArchiveMember))
	assert.NoFileExists(t, filepath.Join(tempDir, "out", "libsys.a"))
}

func TestArchiveManager_CreateEmpty(t *testing.T) {
	am := NewManager()
	err := am.Create(context.Background(), nil, filepath.Join(t.TempDir(), "empty.tar.gz"))
	require.Error(t, err)
}

func TestIsArchiveName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"webrtc-linux-x64.a", false},
		{"webrtc-windows-x64.lib", false},
		{"webrtc-linux-x64.tar.gz", true},
		{"webrtc-macos-arm64.TGZ", true},
		{"webrtc-windows-x64.zip", true},
		{"webrtc-linux-x64.tar.zst", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsArchiveName(tt.name))
		})
	}
}
