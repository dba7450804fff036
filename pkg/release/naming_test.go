package release

import (
	"errors"
	"testing"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaming_AssetName(t *testing.T) {
	tests := []struct {
		name     string
		naming   Naming
		kind     locator.Kind
		platform platform.Platform
		expected string
	}{
		{"linux x64", Naming{}, locator.KindWebRTC, platform.Platform{OS: "linux", Arch: "amd64"}, "webrtc-linux-x64.a"},
		{"macos arm64", Naming{}, locator.KindSys, platform.Platform{OS: "macos", Arch: "arm64"}, "sys-macos-arm64.a"},
		{"windows x86", Naming{}, locator.KindWebRTC, platform.Platform{OS: "windows", Arch: "386"}, "webrtc-windows-x86.lib"},
		{"linux arm", Naming{}, locator.KindSys, platform.Platform{OS: "linux", Arch: "arm"}, "sys-linux-arm.a"},
		{"archived", Naming{Archived: true}, locator.KindWebRTC, platform.Platform{OS: "windows", Arch: "amd64"}, "webrtc-windows-x64.tar.gz"},
		{
			"custom template and name",
			Naming{Template: "lib{name}_{version}_{os}_{arch}.{ext}", Names: map[locator.Kind]string{locator.KindSys: "batrachia-sys"}},
			locator.KindSys, platform.Platform{OS: "linux", Arch: "amd64"},
			"libbatrachia-sys_1.2.3_linux_x64.a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.naming.AssetName(tt.kind, "v1.2.3", tt.platform))
		})
	}
}

func TestNormalizeVersion(t *testing.T) {
	v, err := NormalizeVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	v, err = NormalizeVersion("0.4.0-rc.1")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0-rc.1", v)

	for _, bad := range []string{"", "latest", "1.2.3.4.5"} {
		_, err := NormalizeVersion(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidVersion))
	}
}

func TestAssetURL(t *testing.T) {
	u, err := AssetURL("https://github.com/batrachia/batrachia/releases/download", "1.2.3", "webrtc-linux-x64.a")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/batrachia/batrachia/releases/download/v1.2.3/webrtc-linux-x64.a", u)

	u, err = AssetURL("http://mirror.local/releases/", "v2.0.0", ChecksumsFile)
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local/releases/v2.0.0/SHA256SUMS", u)
}
