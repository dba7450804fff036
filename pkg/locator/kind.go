// Package locator resolves the two static libraries the batrachia binding links
// against. Each artifact comes either from an operator override or from an
// Acquirer; an override always replaces acquisition and is never supplemented by it.
package locator

import (
	"fmt"
	"strings"

	"github.com/batrachia/libfetch/pkg/errors"
)

// Kind identifies one of the required native artifacts.
type Kind string

const (
	// KindWebRTC is Google's native WebRTC static library.
	KindWebRTC Kind = "webrtc"
	// KindSys is the binding's own compiled shim library.
	KindSys Kind = "sys"
)

const (
	// EnvWebRTCLibraryPath overrides acquisition of the WebRTC library.
	EnvWebRTCLibraryPath = "WEBRTC_LIBRARY_PATH"
	// EnvSysLibraryPath overrides acquisition of the sys library.
	EnvSysLibraryPath = "SYS_LIBRARY_PATH"
)

// AllKinds returns every artifact a build requires, in resolution order.
func AllKinds() []Kind {
	return []Kind{KindWebRTC, KindSys}
}

// EnvVar returns the environment variable that overrides this kind.
func (k Kind) EnvVar() string {
	switch k {
	case KindWebRTC:
		return EnvWebRTCLibraryPath
	case KindSys:
		return EnvSysLibraryPath
	default:
		return ""
	}
}

// LinkName is the name passed to the linker as -l<name>.
func (k Kind) LinkName() string {
	return string(k)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWebRTC:
		return KindWebRTC, nil
	case KindSys:
		return KindSys, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: webrtc, sys)", errors.ErrUnknownKind, s)
	}
}

// Source records where a resolved artifact came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceCache    Source = "cache"
	SourceDownload Source = "download"
)

// Artifact is a resolved library location handed to the linker.
type Artifact struct {
	Kind      Kind   `json:"kind" yaml:"kind"`
	Path      string `json:"path" yaml:"path"`
	Source    Source `json:"source" yaml:"source"`
	SearchDir string `json:"search_dir" yaml:"search_dir"`
	LinkName  string `json:"link_name" yaml:"link_name"`
}
