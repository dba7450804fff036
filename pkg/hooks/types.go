// Package hooks runs operator-supplied Tengo scripts around artifact resolution.
package hooks

import "github.com/batrachia/libfetch/pkg/platform"

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	// PreResolve runs after overrides are captured and before anything is validated or acquired.
	PreResolve HookType = "pre-resolve"
	// PostResolve runs once every artifact path is known.
	PostResolve HookType = "post-resolve"
)

// HookTypes lists every supported hook type in execution order.
func HookTypes() []HookType {
	return []HookType{PreResolve, PostResolve}
}

// ParseHookType validates a hook type name. Underscores are accepted for dashes.
func ParseHookType(s string) (HookType, error) {
	switch HookType(s) {
	case PreResolve, "pre_resolve":
		return PreResolve, nil
	case PostResolve, "post_resolve":
		return PostResolve, nil
	default:
		return "", ErrUnsupportedHookEvent(s)
	}
}

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
	// Path is the file the script was loaded from, if any.
	Path string
}

// Artifact describes one artifact as seen by a hook.
type Artifact struct {
	Path   string
	Source string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	Version  string
	Platform platform.Platform
	WebRTC   Artifact
	Sys      Artifact
	Vars     map[string]interface{}
}

// Result carries what a hook script contributed.
type Result struct {
	// ExtraLibs are system libraries appended to the link line.
	ExtraLibs []string
}
