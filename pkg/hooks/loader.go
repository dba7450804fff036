package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/batrachia/libfetch/pkg/errors"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadHookFile reads the script at path and registers it as hookType.
func LoadHookFile(manager HookManager, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "reading %s: %v", path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content), Path: path}); err != nil {
		return errors.Wrapf(err, "error adding hook %s", hookType)
	}
	return nil
}

// LoadHooksFromDir registers every <hook-type>.tengo script found in dir.
// Files with other names are ignored; a missing dir is not an error.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType, err := ParseHookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if err != nil {
			continue
		}
		if err := LoadHookFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreResolve:
		return `// pre-resolve hook
// Runs before overrides are validated and before anything is downloaded.
// Available variables:
// - version: string - requested release version
// - os, arch: string - target platform
// - webrtc_path, sys_path: string - override paths, empty when not overridden
// - webrtc_source, sys_source: string - "override" or "acquire"
// Assign err to abort the build.

// Example: refuse automatic downloads on CI
/*
env := import("os")
if env.getenv("CI") != "" && webrtc_source != "override" {
    err = "set WEBRTC_LIBRARY_PATH on CI"
}
*/`

	case PostResolve:
		return `// post-resolve hook
// Runs once both libraries are resolved.
// Available variables: same as pre-resolve, with paths always set
// and sources one of "override", "cache", "download".
// Assign extra_libs to add system libraries to the link line; assign err to abort.

// Example: link ALSA on Linux
/*
if os == "linux" {
    extra_libs = append(extra_libs, "asound")
}
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
