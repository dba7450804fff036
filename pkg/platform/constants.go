// Package platform describes build targets and maps them onto the names used by
// published release assets and by the native linker.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSMacOS represents macOS. Go calls it darwin; release assets call it macos.
	OSMacOS = "macos"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
)

// ValidOS returns the operating systems native WebRTC releases are published for.
func ValidOS() []string {
	return []string{OSWindows, OSLinux, OSMacOS}
}

// ValidArch returns the architectures native WebRTC releases are published for.
func ValidArch() []string {
	return []string{ArchAMD64, Arch386, ArchARM, ArchARM64}
}
