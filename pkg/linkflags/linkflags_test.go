package linkflags

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func linuxResolution() *locator.Resolution {
	return &locator.Resolution{
		RunID:    "c0ffee2e-8f1c-4f59-9a53-3c1c2b7b9d10",
		Version:  "1.2.3",
		Platform: platform.Platform{OS: platform.OSLinux, Arch: platform.ArchAMD64},
		Artifacts: []locator.Artifact{
			{Kind: locator.KindWebRTC, Path: "/cache/v1.2.3/linux-x64/libwebrtc.a", Source: locator.SourceCache, SearchDir: "/cache/v1.2.3/linux-x64", LinkName: "webrtc"},
			{Kind: locator.KindSys, Path: "/work/build/libsys.a", Source: locator.SourceOverride, SearchDir: "/work/build", LinkName: "sys"},
		},
		SystemLibs: []string{"stdc++", "pthread", "dl", "m"},
		ResolvedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	d := Build(linuxResolution(), []string{"m", "sys", "asound"})

	assert.Equal(t, []string{"/cache/v1.2.3/linux-x64"}, d.SearchDirs)
	assert.Equal(t, []string{"/work/build/libsys.a", "webrtc"}, d.Libs)
	assert.Equal(t, []string{"stdc++", "pthread", "dl", "m", "asound"}, d.SystemLibs)
	assert.Empty(t, d.Frameworks)
}

func TestBuild_SharedSearchDir(t *testing.T) {
	res := linuxResolution()
	res.Artifacts[1] = locator.Artifact{
		Kind: locator.KindSys, Path: "/cache/v1.2.3/linux-x64/libsys.a", Source: locator.SourceCache,
		SearchDir: "/cache/v1.2.3/linux-x64", LinkName: "sys",
	}
	d := Build(res, nil)
	assert.Equal(t, []string{"/cache/v1.2.3/linux-x64"}, d.SearchDirs)
	assert.Equal(t, []string{"sys", "webrtc"}, d.Libs)
}

func TestBuild_OverrideNotShadowedByCache(t *testing.T) {
	// The cache directory of the acquired webrtc library may still hold a
	// libsys.a from an earlier run; the override must be linked regardless.
	res := linuxResolution()
	d := Build(res, []string{"sys"})

	args := d.Args()
	assert.Equal(t, []string{"-L/cache/v1.2.3/linux-x64", "/work/build/libsys.a", "-lwebrtc"}, args[:3])
	assert.NotContains(t, args, "-lsys")
	assert.NotContains(t, args, "-L/work/build")
}

func TestBuild_OverrideWithoutLibPrefix(t *testing.T) {
	res := linuxResolution()
	res.Artifacts[0] = locator.Artifact{
		Kind: locator.KindWebRTC, Path: "/opt/webrtc-m120.a", Source: locator.SourceOverride,
		SearchDir: "/opt", LinkName: "webrtc-m120",
	}
	d := Build(res, nil)

	assert.Empty(t, d.SearchDirs)
	assert.Equal(t, "/work/build/libsys.a /opt/webrtc-m120.a -lstdc++ -lpthread -ldl -lm", d.LDFLAGS())
}

func TestDirectives_LDFLAGS(t *testing.T) {
	d := Build(linuxResolution(), nil)
	assert.Equal(t, "-L/cache/v1.2.3/linux-x64 /work/build/libsys.a -lwebrtc -lstdc++ -lpthread -ldl -lm", d.LDFLAGS())

	mac := Directives{
		SearchDirs: []string{"/Users/dev/Library/Caches/lib fetch"},
		Libs:       []string{"webrtc"},
		SystemLibs: []string{"c++"},
		Frameworks: []string{"Foundation", "CoreAudio"},
	}
	assert.Equal(t, `"-L/Users/dev/Library/Caches/lib fetch" -lwebrtc -lc++ -framework Foundation -framework CoreAudio`, mac.LDFLAGS())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: text, json, yaml, cgo, env, go")
}

func TestRender_Text(t *testing.T) {
	res := linuxResolution()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, res, Build(res, nil), RenderOptions{}))

	out := buf.String()
	assert.Contains(t, out, "Platform:")
	assert.Contains(t, out, "linux/amd64")
	assert.Contains(t, out, "/work/build/libsys.a")
	assert.Contains(t, out, "(override)")
	assert.Contains(t, out, "(cache)")
	assert.Contains(t, out, "/work/build/libsys.a -lwebrtc")
}

func TestRender_JSON(t *testing.T) {
	res := linuxResolution()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, res, Build(res, nil), RenderOptions{}))

	var out Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, res, out.Resolution)
	assert.Equal(t, []string{"/work/build/libsys.a", "webrtc"}, out.Directives.Libs)
	assert.True(t, strings.HasPrefix(out.LDFLAGS, "-L/cache/v1.2.3/linux-x64"))
}

func TestRender_YAML(t *testing.T) {
	res := linuxResolution()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, res, Build(res, nil), RenderOptions{}))

	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Contains(t, out, "resolution")
	assert.Contains(t, out, "directives")
	assert.Contains(t, buf.String(), "run_id: c0ffee2e-8f1c-4f59-9a53-3c1c2b7b9d10")
}

func TestRender_Cgo(t *testing.T) {
	res := linuxResolution()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCgo, res, Build(res, nil), RenderOptions{}))
	assert.Equal(t, Build(res, nil).LDFLAGS()+"\n", buf.String())
}

func TestRender_Env(t *testing.T) {
	res := linuxResolution()
	res.Artifacts[1].Path = "/work/it's here/libsys.a"
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatEnv, res, Build(res, nil), RenderOptions{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "export CGO_LDFLAGS='-L/cache"))
	assert.Equal(t, "export WEBRTC_LIBRARY_PATH='/cache/v1.2.3/linux-x64/libwebrtc.a'", lines[1])
	assert.Equal(t, `export SYS_LIBRARY_PATH='/work/it'\''s here/libsys.a'`, lines[2])
}

func TestRender_Go(t *testing.T) {
	res := linuxResolution()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatGo, res, Build(res, nil), RenderOptions{GoPackage: "native"}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// Code generated by libfetch. DO NOT EDIT.\n"))
	assert.Contains(t, out, "//go:build linux && amd64\n")
	assert.Contains(t, out, "package native\n")
	assert.Contains(t, out, "#cgo LDFLAGS: -L/cache/v1.2.3/linux-x64 /work/build/libsys.a -lwebrtc\n")
	assert.Contains(t, out, "#cgo LDFLAGS: -lstdc++ -lpthread -ldl -lm\n")
	assert.Contains(t, out, "import \"C\"\n")
}

func TestRender_GoMacOS(t *testing.T) {
	res := linuxResolution()
	res.Platform = platform.Platform{OS: platform.OSMacOS, Arch: platform.ArchARM64}
	res.SystemLibs = platform.SystemLibs(res.Platform)
	res.Frameworks = platform.Frameworks(res.Platform)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatGo, res, Build(res, nil), RenderOptions{}))

	out := buf.String()
	assert.Contains(t, out, "//go:build darwin && arm64")
	assert.Contains(t, out, "package webrtc\n")
	assert.Contains(t, out, "-lc++ -framework Foundation")
}
