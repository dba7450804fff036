package hooks

import "context"

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the hook of the given type; a missing hook yields an empty Result.
	Execute(ctx context.Context, hookType HookType, hc HookContext) (*Result, error)

	// AddHook adds or replaces a hook
	AddHook(hook Hook) error

	// RemoveHook removes a hook of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
