package release_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/batrachia/libfetch/pkg/release"
	"github.com/batrachia/libfetch/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBuiltLib(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPublish_PlainAsset(t *testing.T) {
	lib := writeBuiltLib(t, "libbatrachia_sys.a", "sys objects")
	out := t.TempDir()

	res, err := release.Publish(context.Background(), release.PublishRequest{
		Kind:     locator.KindSys,
		LibPath:  lib,
		OutDir:   out,
		Version:  "v1.2.3",
		Platform: linuxX64,
	})
	require.NoError(t, err)
	assert.Equal(t, "sys-linux-x64.a", res.Asset)
	assert.Equal(t, filepath.Join(out, "sys-linux-x64.a"), res.Path)

	content, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "sys objects", string(content))

	want, err := fsutil.SHA256File(lib)
	require.NoError(t, err)
	assert.Equal(t, want, res.SHA256)

	sums, err := release.ReadChecksumsFile(res.ChecksumsPath)
	require.NoError(t, err)
	assert.Equal(t, release.Checksums{"sys-linux-x64.a": want}, sums)
}

func TestPublish_UpsertsChecksums(t *testing.T) {
	out := t.TempDir()
	ctx := context.Background()

	first := writeBuiltLib(t, "libwebrtc.a", "first build")
	_, err := release.Publish(ctx, release.PublishRequest{Kind: locator.KindWebRTC, LibPath: first, OutDir: out, Version: "1.2.3", Platform: linuxX64})
	require.NoError(t, err)

	sys := writeBuiltLib(t, "libsys.a", "sys")
	_, err = release.Publish(ctx, release.PublishRequest{Kind: locator.KindSys, LibPath: sys, OutDir: out, Version: "1.2.3", Platform: linuxX64})
	require.NoError(t, err)

	second := writeBuiltLib(t, "libwebrtc.a", "second build")
	res, err := release.Publish(ctx, release.PublishRequest{Kind: locator.KindWebRTC, LibPath: second, OutDir: out, Version: "1.2.3", Platform: linuxX64})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, release.ChecksumsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, res.SHA256+"  webrtc-linux-x64.a", lines[1])
}

func TestPublish_Validation(t *testing.T) {
	lib := writeBuiltLib(t, "libwebrtc.a", "x")
	ctx := context.Background()

	_, err := release.Publish(ctx, release.PublishRequest{Kind: locator.KindWebRTC, LibPath: lib, OutDir: t.TempDir(), Version: "nightly", Platform: linuxX64})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidVersion))

	_, err = release.Publish(ctx, release.PublishRequest{Kind: "ffmpeg", LibPath: lib, OutDir: t.TempDir(), Version: "1.0.0", Platform: linuxX64})
	assert.True(t, errors.Is(err, pkgerrors.ErrUnknownKind))

	_, err = release.Publish(ctx, release.PublishRequest{Kind: locator.KindWebRTC, LibPath: filepath.Dir(lib), OutDir: t.TempDir(), Version: "1.0.0", Platform: linuxX64})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidPath))

	_, err = release.Publish(ctx, release.PublishRequest{Kind: locator.KindWebRTC, LibPath: lib, OutDir: t.TempDir(), Version: "1.0.0", Platform: platform.Platform{OS: "aix", Arch: "ppc64"}})
	assert.True(t, errors.Is(err, pkgerrors.ErrUnsupportedPlatform))
}

// Published assets are exactly what the acquirer consumes.
func TestPublish_RoundTripThroughAcquirer(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	releaseDir := filepath.Join(root, "v2.0.0")
	mac := platform.Platform{OS: platform.OSMacOS, Arch: platform.ArchARM64}
	naming := release.Naming{Archived: true, Names: map[locator.Kind]string{locator.KindSys: "batrachia-sys"}}

	for kind, content := range map[locator.Kind]string{locator.KindWebRTC: "mac webrtc", locator.KindSys: "mac sys"} {
		lib := writeBuiltLib(t, "lib"+string(kind)+"_custom.a", content)
		res, err := release.Publish(ctx, release.PublishRequest{
			Kind: kind, LibPath: lib, OutDir: releaseDir, Version: "2.0.0", Platform: mac, Naming: naming,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(res.Asset, "-macos-arm64.tar.gz"), res.Asset)
	}

	srv := testutil.NewReleaseServer(t, root)
	a := newAcquirer(t, newDownloader(), release.Options{
		BaseURL:   srv.URL,
		CacheDir:  t.TempDir(),
		Checksums: true,
		Naming:    naming,
	})

	artifacts, err := a.Acquire(ctx, "2.0.0", mac, bothKinds)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "libwebrtc.a", filepath.Base(artifacts[0].Path))
	content, err := os.ReadFile(artifacts[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "mac sys", string(content))
	assert.Contains(t, srv.Requests(), "/v2.0.0/batrachia-sys-macos-arm64.tar.gz")
}
