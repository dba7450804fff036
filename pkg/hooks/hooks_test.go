package hooks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/hooks"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() hooks.HookContext {
	return hooks.HookContext{
		Version:  "1.2.3",
		Platform: platform.Platform{OS: "linux", Arch: "amd64"},
		WebRTC:   hooks.Artifact{Path: "/cache/libwebrtc.a", Source: "download"},
		Sys:      hooks.Artifact{Path: "/work/libsys.a", Source: "override"},
		Vars:     map[string]interface{}{"channel": "stable"},
	}
}

func TestTengoExecutor(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	ctx := context.Background()

	t.Run("Empty script", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `// nothing to do`)

		res, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.NoError(t, err)
		assert.Empty(t, res.ExtraLibs)
	})

	t.Run("Runtime error", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `non_existent_function()`)

		_, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.Error(t, err)
		assert.True(t, errors.Is(err, pkgerrors.ErrHookExecution))
	})

	t.Run("Missing script", func(t *testing.T) {
		res, err := executor.Execute(ctx, hooks.PreResolve, testContext())
		require.NoError(t, err)
		assert.NotNil(t, res)
	})

	t.Run("Context variables are accessible", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `
			if version != "1.2.3" || os != "linux" || arch != "amd64" {
				err = "unexpected platform"
			}
			if webrtc_source != "download" || sys_path != "/work/libsys.a" || channel != "stable" {
				err = "unexpected artifacts"
			}
		`)

		_, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.NoError(t, err)
	})

	t.Run("Extra libs", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `
			if os == "linux" {
				extra_libs = append(extra_libs, "asound", "X11")
			}
		`)

		res, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.NoError(t, err)
		assert.Equal(t, []string{"asound", "X11"}, res.ExtraLibs)
	})

	t.Run("Extra libs as string", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `extra_libs = "asound"`)

		res, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.NoError(t, err)
		assert.Equal(t, []string{"asound"}, res.ExtraLibs)
	})

	t.Run("Extra libs wrong type", func(t *testing.T) {
		executor.AddScript(hooks.PostResolve, `extra_libs = [1, 2]`)

		_, err := executor.Execute(ctx, hooks.PostResolve, testContext())
		require.Error(t, err)
		assert.True(t, errors.Is(err, pkgerrors.ErrHookScript))
	})

	t.Run("String err aborts", func(t *testing.T) {
		executor.AddScript(hooks.PreResolve, `err = "downloads are disabled"`)

		_, err := executor.Execute(ctx, hooks.PreResolve, testContext())
		require.Error(t, err)
		assert.True(t, errors.Is(err, pkgerrors.ErrHookScript))
		assert.Contains(t, err.Error(), "downloads are disabled")
		assert.Contains(t, err.Error(), "pre-resolve")
	})

	t.Run("Error value aborts", func(t *testing.T) {
		executor.AddScript(hooks.PreResolve, `err = error("policy violation")`)

		_, err := executor.Execute(ctx, hooks.PreResolve, testContext())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "policy violation")
	})

	t.Run("Reserved custom variable", func(t *testing.T) {
		executor.AddScript(hooks.PreResolve, `// noop`)
		hc := testContext()
		hc.Vars = map[string]interface{}{"version": "override"}

		_, err := executor.Execute(ctx, hooks.PreResolve, hc)
		require.Error(t, err)
	})

	t.Run("HasScript check", func(t *testing.T) {
		hookType := hooks.HookType("test-hook")
		assert.False(t, executor.HasScript(hookType))

		executor.AddScript(hookType, "// test script")
		assert.True(t, executor.HasScript(hookType))

		executor.RemoveScript(hookType)
		assert.False(t, executor.HasScript(hookType))
	})
}

func TestHookManager(t *testing.T) {
	manager := hooks.NewHookManager()
	ctx := context.Background()

	require.ErrorIs(t, manager.AddHook(hooks.Hook{Content: "// no type"}), hooks.ErrHookTypeEmpty)
	require.ErrorIs(t, manager.RemoveHook(""), hooks.ErrHookTypeEmpty)

	res, err := manager.Execute(ctx, hooks.PostResolve, testContext())
	require.NoError(t, err)
	assert.Empty(t, res.ExtraLibs)

	require.NoError(t, manager.AddHook(hooks.Hook{Type: hooks.PostResolve, Content: `extra_libs = ["va"]`}))
	assert.True(t, manager.HasHook(hooks.PostResolve))

	hc := testContext()
	hc.Vars = nil
	res, err = manager.Execute(ctx, hooks.PostResolve, hc)
	require.NoError(t, err)
	assert.Equal(t, []string{"va"}, res.ExtraLibs)

	require.NoError(t, manager.RemoveHook(hooks.PostResolve))
	assert.False(t, manager.HasHook(hooks.PostResolve))
}

func TestLoadHooksFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post-resolve.tengo"), []byte(`extra_libs = ["asound"]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pre_resolve.tengo"), []byte(`// ok`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post-install.tengo"), []byte(`// ignored`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(`ignored`), 0o644))

	manager := hooks.NewHookManager()
	require.NoError(t, hooks.LoadHooksFromDir(manager, dir))
	assert.True(t, manager.HasHook(hooks.PostResolve))
	assert.True(t, manager.HasHook(hooks.PreResolve))

	require.NoError(t, hooks.LoadHooksFromDir(hooks.NewHookManager(), filepath.Join(dir, "missing")))
}

func TestLoadHookFile_Missing(t *testing.T) {
	err := hooks.LoadHookFile(hooks.NewHookManager(), hooks.PostResolve, filepath.Join(t.TempDir(), "nope.tengo"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrHookLoad))
}

func TestParseHookType(t *testing.T) {
	ht, err := hooks.ParseHookType("post_resolve")
	require.NoError(t, err)
	assert.Equal(t, hooks.PostResolve, ht)

	_, err = hooks.ParseHookType("pre-install")
	require.Error(t, err)
}

func TestHookTemplatesCompile(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	for _, ht := range hooks.HookTypes() {
		executor.AddScript(ht, hooks.HookTemplate(ht))
		_, err := executor.Execute(context.Background(), ht, testContext())
		require.NoError(t, err, ht)
	}
	assert.Contains(t, hooks.HookTemplate("bogus"), "Unknown hook type")
}

func TestIsReservedVar(t *testing.T) {
	for _, name := range []string{"version", "os", "arch", "webrtc_path", "sys_source", "extra_libs", "err"} {
		assert.True(t, hooks.IsReservedVar(name), name)
	}
	assert.False(t, hooks.IsReservedVar("profile"))
}
