package locator

import (
	"fmt"
	"os"
	"strings"

	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
)

// OverrideValue is one captured override. Set distinguishes a variable that is
// present but empty from one that is absent.
type OverrideValue struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Set    bool   `json:"set" yaml:"set"`
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// Overrides holds the operator-supplied library paths for one build invocation.
type Overrides struct {
	WebRTC OverrideValue `json:"webrtc" yaml:"webrtc"`
	Sys    OverrideValue `json:"sys" yaml:"sys"`
}

// OverridesFromEnv captures both override variables using lookup, typically os.LookupEnv.
func OverridesFromEnv(lookup func(string) (string, bool)) Overrides {
	var o Overrides
	for _, kind := range AllKinds() {
		if value, ok := lookup(kind.EnvVar()); ok {
			o = o.with(kind, OverrideValue{Path: value, Set: true, Origin: kind.EnvVar()})
		}
	}
	return o
}

// OverridesFromEnviron captures overrides from a KEY=VALUE list such as os.Environ().
// Later entries win, matching how the process environment is built.
func OverridesFromEnviron(environ []string) Overrides {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}
	return OverridesFromEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
}

// OverridesFromProcess captures overrides from the current process environment.
func OverridesFromProcess() Overrides {
	return OverridesFromEnv(os.LookupEnv)
}

// Get returns the override for kind.
func (o Overrides) Get(kind Kind) OverrideValue {
	switch kind {
	case KindWebRTC:
		return o.WebRTC
	case KindSys:
		return o.Sys
	default:
		return OverrideValue{}
	}
}

// WithFlag returns a copy of o where a command line flag replaces the value for kind.
func (o Overrides) WithFlag(kind Kind, path string) Overrides {
	return o.with(kind, OverrideValue{Path: path, Set: true, Origin: "--" + string(kind) + "-lib"})
}

// Any reports whether at least one override is set.
func (o Overrides) Any() bool {
	return o.WebRTC.Set || o.Sys.Set
}

func (o Overrides) with(kind Kind, v OverrideValue) Overrides {
	switch kind {
	case KindWebRTC:
		o.WebRTC = v
	case KindSys:
		o.Sys = v
	}
	return o
}

// OriginFor names where v came from, defaulting to the kind's environment variable.
func (v OverrideValue) OriginFor(kind Kind) string {
	if v.Origin == "" {
		return kind.EnvVar()
	}
	return v.Origin
}

// ValidateOverride checks that a set override names a readable regular file and
// returns its absolute, cleaned path. Every failure wraps errors.ErrConfiguration.
func ValidateOverride(kind Kind, v OverrideValue) (string, error) {
	origin := v.OriginFor(kind)
	if !v.Set {
		return "", fmt.Errorf("%w: %s is not set", errors.ErrConfiguration, origin)
	}
	if strings.TrimSpace(v.Path) == "" {
		return "", configError(origin, v.Path, errors.ErrOverrideEmpty)
	}

	path, err := fsutil.AbsClean(v.Path)
	if err != nil {
		return "", configError(origin, v.Path, fmt.Errorf("%w: %v", errors.ErrInvalidPath, err))
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return "", configError(origin, v.Path, errors.ErrOverrideNotFound)
	case err != nil:
		return "", configError(origin, v.Path, fmt.Errorf("%w: %v", errors.ErrOverrideUnreadable, err))
	case !info.Mode().IsRegular():
		return "", configError(origin, v.Path, errors.ErrOverrideNotFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", configError(origin, v.Path, fmt.Errorf("%w: %v", errors.ErrOverrideUnreadable, err))
	}
	_ = f.Close()

	return path, nil
}

func configError(origin, path string, cause error) error {
	return fmt.Errorf("%w: %s=%q: %w", errors.ErrConfiguration, origin, path, cause)
}
