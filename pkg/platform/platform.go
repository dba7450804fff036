package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/batrachia/libfetch/pkg/errors"
)

// Platform represents a build target with OS and Architecture.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// currentPlatformFunc is swapped in tests.
var currentPlatformFunc = func() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}.Normalize()
}

// CurrentPlatform returns the platform the tool is running on.
func CurrentPlatform() Platform {
	return currentPlatformFunc()
}

// Resolve returns p normalized, with empty fields filled from the current platform.
func Resolve(p Platform) Platform {
	current := CurrentPlatform()
	p = p.Normalize()
	if p.OS == "" {
		p.OS = current.OS
	}
	if p.Arch == "" {
		p.Arch = current.Arch
	}
	return p
}

// Normalize returns p with both fields in canonical form.
func (p Platform) Normalize() Platform {
	return Platform{OS: NormalizeOS(p.OS), Arch: NormalizeArch(p.Arch)}
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Validate returns ErrUnsupportedPlatform unless both OS and Arch have published releases.
func (p Platform) Validate() error {
	if !slices.Contains(ValidOS(), p.OS) {
		return errors.Wrapf(errors.ErrUnsupportedPlatform, "operating system %q (valid: %s)", p.OS, strings.Join(ValidOS(), ", "))
	}
	if !slices.Contains(ValidArch(), p.Arch) {
		return errors.Wrapf(errors.ErrUnsupportedPlatform, "architecture %q (valid: %s)", p.Arch, strings.Join(ValidArch(), ", "))
	}
	return nil
}

// AssetOS is the operating system segment used in release asset names.
func (p Platform) AssetOS() string {
	return p.OS
}

// AssetArch is the architecture segment used in release asset names.
func (p Platform) AssetArch() string {
	switch p.Arch {
	case ArchAMD64:
		return "x64"
	case Arch386:
		return "x86"
	default:
		return p.Arch
	}
}

// Slug identifies the platform in cache paths, e.g. "linux-x64".
func (p Platform) Slug() string {
	return p.AssetOS() + "-" + p.AssetArch()
}

// StaticLibExt is the static library extension the platform's linker expects.
func (p Platform) StaticLibExt() string {
	if p.OS == OSWindows {
		return "lib"
	}
	return "a"
}

// StaticLibFileName returns the file name the linker finds for -l<linkName>.
func (p Platform) StaticLibFileName(linkName string) string {
	if p.OS == OSWindows {
		return linkName + ".lib"
	}
	return "lib" + linkName + ".a"
}

// LinkNameFromFile derives the -l name from a static library file name,
// e.g. "libwebrtc.a" -> "webrtc" and "webrtc.lib" -> "webrtc".
func LinkNameFromFile(fileName string) string {
	switch {
	case strings.HasSuffix(fileName, ".lib"):
		return strings.TrimSuffix(fileName, ".lib")
	case strings.HasSuffix(fileName, ".a"):
		return strings.TrimPrefix(strings.TrimSuffix(fileName, ".a"), "lib")
	default:
		return strings.TrimPrefix(fileName, "lib")
	}
}

// NormalizeOS normalizes OS names to the release naming.
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "macos", "osx", "mac":
		return OSMacOS
	case "win", "windows", "win32":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to Go's naming.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i486", "i586", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	case "armv6l", "armv7l", "armhf":
		return ArchARM
	default:
		return arch
	}
}
