package platform

// SystemLibs returns the system libraries the native WebRTC library needs at link time.
func SystemLibs(p Platform) []string {
	switch p.OS {
	case OSLinux:
		return []string{"stdc++", "pthread", "dl", "m"}
	case OSMacOS:
		return []string{"c++"}
	case OSWindows:
		return []string{"winmm", "secur32", "msdmo", "dmoguids", "wmcodecdspuuid", "iphlpapi", "ws2_32", "strmiids"}
	default:
		return nil
	}
}

// Frameworks returns the Apple frameworks linked on macOS; nil elsewhere.
func Frameworks(p Platform) []string {
	if p.OS != OSMacOS {
		return nil
	}
	return []string{
		"Foundation", "AudioToolbox", "CoreAudio", "AVFoundation",
		"CoreMedia", "CoreVideo", "CoreGraphics", "AppKit",
	}
}
