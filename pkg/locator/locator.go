package locator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/batrachia/libfetch/internal/logger"
	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/google/uuid"
)

// Request describes one resolution.
type Request struct {
	Version   string
	Platform  platform.Platform
	Overrides Overrides
}

// Locator decides, per artifact, between an override and automatic acquisition.
type Locator struct {
	acquirer   Acquirer
	now        func() time.Time
	systemLibs []string
	frameworks []string
}

// Option configures a Locator.
type Option func(*Locator)

// WithClock sets the time source used for Resolution.ResolvedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Locator) { l.now = now }
}

// WithSystemLibs replaces the platform's default system libraries.
func WithSystemLibs(libs []string) Option {
	return func(l *Locator) { l.systemLibs = libs }
}

// WithFrameworks replaces the default macOS frameworks.
func WithFrameworks(frameworks []string) Option {
	return func(l *Locator) { l.frameworks = frameworks }
}

// New creates a Locator. acquirer may be nil when every artifact is overridden.
func New(acquirer Acquirer, opts ...Option) *Locator {
	l := &Locator{
		acquirer: acquirer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve returns the location of every required artifact. All set overrides
// are validated before anything is acquired; only unset kinds reach the Acquirer.
func (l *Locator) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	p := platform.Resolve(req.Platform)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrConfiguration, err)
	}

	resolved := make(map[Kind]Artifact, len(AllKinds()))
	var pending []Kind

	for _, kind := range AllKinds() {
		v := req.Overrides.Get(kind)
		if !v.Set {
			pending = append(pending, kind)
			continue
		}
		path, err := ValidateOverride(kind, v)
		if err != nil {
			return nil, err
		}
		resolved[kind] = overrideArtifact(kind, path)
		logger.Info("Using override", logger.Fields{"kind": kind, "path": path, "origin": v.OriginFor(kind)})
	}

	if len(pending) > 0 {
		acquired, err := l.acquire(ctx, req.Version, p, pending)
		if err != nil {
			return nil, err
		}
		for _, a := range acquired {
			resolved[a.Kind] = a
		}
	}

	res := &Resolution{
		RunID:      uuid.NewString(),
		Version:    strings.TrimPrefix(req.Version, "v"),
		Platform:   p,
		SystemLibs: l.systemLibs,
		Frameworks: l.frameworks,
		ResolvedAt: l.now().UTC(),
	}
	if res.SystemLibs == nil {
		res.SystemLibs = platform.SystemLibs(p)
	}
	if res.Frameworks == nil {
		res.Frameworks = platform.Frameworks(p)
	}
	for _, kind := range AllKinds() {
		res.Artifacts = append(res.Artifacts, resolved[kind])
	}

	logger.Debug("Resolution complete", logger.Fields{"run_id": res.RunID, "platform": p.String()})
	return res, nil
}

func (l *Locator) acquire(ctx context.Context, version string, p platform.Platform, kinds []Kind) ([]Artifact, error) {
	if l.acquirer == nil {
		return nil, fmt.Errorf("%w: no acquirer configured for %s", pkgerrors.ErrAcquisition, joinKinds(kinds))
	}

	logger.Info("Acquiring artifacts", logger.Fields{"kinds": joinKinds(kinds), "version": version, "platform": p.String()})

	acquired, err := l.acquirer.Acquire(ctx, version, p, kinds)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrAcquisition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrAcquisition, err)
	}

	byKind := make(map[Kind]Artifact, len(acquired))
	for _, a := range acquired {
		byKind[a.Kind] = a
	}
	out := make([]Artifact, 0, len(kinds))
	for _, kind := range kinds {
		a, ok := byKind[kind]
		if !ok || a.Path == "" {
			return nil, fmt.Errorf("%w: acquirer returned no %s artifact", pkgerrors.ErrAcquisition, kind)
		}
		if a.SearchDir == "" {
			a.SearchDir = filepath.Dir(a.Path)
		}
		if a.LinkName == "" {
			a.LinkName = kind.LinkName()
		}
		out = append(out, a)
	}
	return out, nil
}

func overrideArtifact(kind Kind, path string) Artifact {
	return Artifact{
		Kind:      kind,
		Path:      path,
		Source:    SourceOverride,
		SearchDir: filepath.Dir(path),
		LinkName:  platform.LinkNameFromFile(filepath.Base(path)),
	}
}

func joinKinds(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}

// PlanStep describes how one artifact would be resolved.
type PlanStep struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Action  string `json:"action" yaml:"action"`
	Origin  string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// Plan actions.
const (
	ActionOverride = "override"
	ActionAcquire  = "acquire"
)

// Plan reports, without acquiring anything, where each artifact would come from.
// Overrides are checked but a failing one is reported rather than returned.
func (l *Locator) Plan(req Request) []PlanStep {
	steps := make([]PlanStep, 0, len(AllKinds()))
	for _, kind := range AllKinds() {
		v := req.Overrides.Get(kind)
		if !v.Set {
			steps = append(steps, PlanStep{Kind: kind, Action: ActionAcquire})
			continue
		}
		step := PlanStep{Kind: kind, Action: ActionOverride, Origin: v.OriginFor(kind), Path: v.Path}
		if path, err := ValidateOverride(kind, v); err != nil {
			step.Problem = err.Error()
		} else {
			step.Path = path
		}
		steps = append(steps, step)
	}
	return steps
}
