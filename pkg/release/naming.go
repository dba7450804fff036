// Package release maps resolution requests onto published release assets and
// produces those assets from locally built libraries.
package release

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/hashicorp/go-version"
)

const (
	// DefaultAssetTemplate names release assets, e.g. webrtc-linux-x64.a.
	DefaultAssetTemplate = "{name}-{os}-{arch}.{ext}"
	// ChecksumsFile is published next to the assets of every release.
	ChecksumsFile = "SHA256SUMS"
	// ArchiveExt replaces the library extension when assets are published as tarballs.
	ArchiveExt = "tar.gz"
)

// Naming controls how assets are named.
type Naming struct {
	Template string
	// Names maps an artifact kind to the {name} placeholder; defaults to the kind itself.
	Names    map[locator.Kind]string
	Archived bool
}

// AssetName renders the asset file name for kind at version on p.
func (n Naming) AssetName(kind locator.Kind, version string, p platform.Platform) string {
	tmpl := n.Template
	if tmpl == "" {
		tmpl = DefaultAssetTemplate
	}
	name := n.Names[kind]
	if name == "" {
		name = string(kind)
	}
	ext := p.StaticLibExt()
	if n.Archived {
		ext = ArchiveExt
	}
	return strings.NewReplacer(
		"{name}", name,
		"{version}", strings.TrimPrefix(version, "v"),
		"{os}", p.AssetOS(),
		"{arch}", p.AssetArch(),
		"{ext}", ext,
	).Replace(tmpl)
}

// NormalizeVersion validates v as a semantic version and returns it without a leading v.
func NormalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: version is required", errors.ErrInvalidVersion)
	}
	if _, err := version.NewSemver(v); err != nil {
		return "", fmt.Errorf("%w: %q: %v", errors.ErrInvalidVersion, v, err)
	}
	return strings.TrimPrefix(v, "v"), nil
}

// AssetURL returns {baseURL}/v{version}/{asset}.
func AssetURL(baseURL, version, asset string) (string, error) {
	u, err := url.JoinPath(baseURL, "v"+strings.TrimPrefix(version, "v"), asset)
	if err != nil {
		return "", fmt.Errorf("invalid release base URL %q: %w", baseURL, err)
	}
	return u, nil
}
