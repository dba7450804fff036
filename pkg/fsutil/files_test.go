package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_File(t *testing.T) {
	tempDir := t.TempDir()

	srcFile := filepath.Join(tempDir, "dl-123.tmp")
	dstFile := filepath.Join(tempDir, "v0.1.0", "linux-x64", "libwebrtc.a")

	content := "!<arch>\n"
	require.NoError(t, os.WriteFile(srcFile, []byte(content), FileModeSecure))

	require.NoError(t, Move(srcFile, dstFile))

	moved, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, content, string(moved))

	_, err = os.Stat(srcFile)
	assert.True(t, os.IsNotExist(err))
}

func TestMove_Errors(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name string
		src  string
		dst  string
	}{
		{"empty source", "", filepath.Join(tempDir, "dst")},
		{"empty destination", filepath.Join(tempDir, "src"), ""},
		{"missing source", filepath.Join(tempDir, "missing"), filepath.Join(tempDir, "dst")},
		{"directory source", tempDir, filepath.Join(tempDir, "dst")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, Move(tt.src, tt.dst))
		})
	}
}

func TestIsCrossFilesystemError(t *testing.T) {
	assert.False(t, isCrossFilesystemError(nil))
	assert.False(t, isCrossFilesystemError(errors.New("permission denied")))
	assert.True(t, isCrossFilesystemError(&os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}))
	assert.True(t, isCrossFilesystemError(errors.New("invalid cross-device link")))
}

func TestCopy(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src.a")
	dst := filepath.Join(tempDir, "nested", "dst.a")

	require.NoError(t, os.WriteFile(src, []byte("payload"), FileModeDefault))
	require.NoError(t, Copy(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// Source is untouched
	assert.FileExists(t, src)
}

func TestSHA256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("test content"), FileModeDefault))

	sum, err := SHA256File(path)
	require.NoError(t, err)
	assert.Equal(t, "6ae8a75555209fd6c44157c0aed8016e763ff435a19cf186f76863140143ff72", sum)

	_, err = SHA256File(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestNormalizeHex(t *testing.T) {
	assert.Equal(t, "abcdef", NormalizeHex("  ABCDEF\n"))
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "f")
	require.NoError(t, os.WriteFile(file, nil, FileModeDefault))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(tempDir))
	assert.False(t, FileExists(filepath.Join(tempDir, "missing")))
}

func TestEnsureFileDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out.go")
	require.NoError(t, EnsureFileDir(target))
	assert.DirExists(t, filepath.Dir(target))
}
