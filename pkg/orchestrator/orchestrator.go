//go:generate mockgen -destination=./mocks/orchestrator.go . Resolver,HookRunner

package orchestrator

import (
	"context"
	"fmt"

	"github.com/batrachia/libfetch/pkg/hooks"
	"github.com/batrachia/libfetch/pkg/linkflags"
	"github.com/batrachia/libfetch/pkg/locator"
)

// Resolver is the subset of the locator used by the orchestrator.
type Resolver interface {
	Resolve(ctx context.Context, req locator.Request) (*locator.Resolution, error)
	Plan(req locator.Request) []locator.PlanStep
}

// HookRunner is the subset of the hook manager used by the orchestrator.
type HookRunner interface {
	HasHook(hookType hooks.HookType) bool
	Execute(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) (*hooks.Result, error)
}

// Orchestrator ties the locator, hooks and link directives together for one build.
type Orchestrator struct {
	Locator Resolver
	Hooks   HookRunner // optional
	Events  Events     // progress notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // planning|pre-resolve|resolving|post-resolve|done
	ID    string // artifact kind or hook type
	Msg   string
}

// Events carries callbacks for progress events.
type Events struct {
	OnEvent func(Event)
}

// Options control a resolution run.
type Options struct {
	// ExtraLibs are appended to the link line before any hook output.
	ExtraLibs []string
	// Vars are passed to hook scripts.
	Vars map[string]interface{}
}

// Result is a completed run.
type Result struct {
	Resolution *locator.Resolution
	Directives linkflags.Directives
}

// New returns an Orchestrator over loc and hookRunner.
func New(loc Resolver, hookRunner HookRunner, events Events) *Orchestrator {
	return &Orchestrator{Locator: loc, Hooks: hookRunner, Events: events}
}

func emit(e Events, ev Event) {
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
}

// Plan reports where each artifact would come from without running hooks or acquiring anything.
func (o *Orchestrator) Plan(req locator.Request) ([]locator.PlanStep, error) {
	if o.Locator == nil {
		return nil, fmt.Errorf("locator is not configured")
	}
	steps := o.Locator.Plan(req)
	for _, s := range steps {
		emit(o.Events, Event{Phase: "planning", ID: string(s.Kind), Msg: s.Action})
	}
	return steps, nil
}

// Run executes the pre-resolve hook, resolves every artifact, executes the
// post-resolve hook and builds the link directives.
func (o *Orchestrator) Run(ctx context.Context, req locator.Request, opts Options) (*Result, error) {
	if o.Locator == nil {
		return nil, fmt.Errorf("locator is not configured")
	}

	extra := append([]string{}, opts.ExtraLibs...)

	if o.hasHook(hooks.PreResolve) {
		emit(o.Events, Event{Phase: "pre-resolve", ID: string(hooks.PreResolve)})
		result, err := o.Hooks.Execute(ctx, hooks.PreResolve, preResolveContext(req, opts.Vars))
		if err != nil {
			return nil, err
		}
		extra = append(extra, result.ExtraLibs...)
	}

	emit(o.Events, Event{Phase: "resolving", Msg: req.Platform.String()})
	res, err := o.Locator.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	if o.hasHook(hooks.PostResolve) {
		emit(o.Events, Event{Phase: "post-resolve", ID: string(hooks.PostResolve)})
		result, err := o.Hooks.Execute(ctx, hooks.PostResolve, postResolveContext(res, opts.Vars))
		if err != nil {
			return nil, err
		}
		extra = append(extra, result.ExtraLibs...)
	}

	directives := linkflags.Build(res, extra)
	emit(o.Events, Event{Phase: "done", ID: res.RunID})
	return &Result{Resolution: res, Directives: directives}, nil
}

func (o *Orchestrator) hasHook(hookType hooks.HookType) bool {
	return o.Hooks != nil && o.Hooks.HasHook(hookType)
}

func preResolveContext(req locator.Request, vars map[string]interface{}) hooks.HookContext {
	hc := hooks.HookContext{Version: req.Version, Platform: req.Platform, Vars: vars}
	for _, kind := range locator.AllKinds() {
		a := hooks.Artifact{Source: locator.ActionAcquire}
		if v := req.Overrides.Get(kind); v.Set {
			a = hooks.Artifact{Path: v.Path, Source: locator.ActionOverride}
		}
		setArtifact(&hc, kind, a)
	}
	return hc
}

func postResolveContext(res *locator.Resolution, vars map[string]interface{}) hooks.HookContext {
	hc := hooks.HookContext{Version: res.Version, Platform: res.Platform, Vars: vars}
	for _, a := range res.Artifacts {
		setArtifact(&hc, a.Kind, hooks.Artifact{Path: a.Path, Source: string(a.Source)})
	}
	return hc
}

func setArtifact(hc *hooks.HookContext, kind locator.Kind, a hooks.Artifact) {
	switch kind {
	case locator.KindWebRTC:
		hc.WebRTC = a
	case locator.KindSys:
		hc.Sys = a
	}
}
