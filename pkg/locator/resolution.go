package locator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/platform"
)

// Resolution is the outcome of one build's resolution, ordered webrtc then sys.
type Resolution struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Version    string            `json:"version" yaml:"version"`
	Platform   platform.Platform `json:"platform" yaml:"platform"`
	Artifacts  []Artifact        `json:"artifacts" yaml:"artifacts"`
	SystemLibs []string          `json:"system_libs,omitempty" yaml:"system_libs,omitempty"`
	Frameworks []string          `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	ResolvedAt time.Time         `json:"resolved_at" yaml:"resolved_at"`
}

// Artifact returns the resolved artifact for kind.
func (r *Resolution) Artifact(kind Kind) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}

// Path returns the resolved path for kind, or "" when absent.
func (r *Resolution) Path(kind Kind) string {
	a, _ := r.Artifact(kind)
	return a.Path
}

// WriteManifest writes the resolution as indented JSON, replacing path atomically.
func (r *Resolution) WriteManifest(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.EnsureFileDir(path); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close manifest: %w", err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set manifest permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move manifest into place: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Resolution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var r Resolution
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return &r, nil
}
