package hooks

import (
	"context"

	"github.com/batrachia/libfetch/internal/logger"
)

// DefaultHookManager is the default implementation of HookManager.
type DefaultHookManager struct {
	executor *TengoExecutor
}

var _ HookManager = (*DefaultHookManager)(nil)

// NewHookManager creates a new hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the specified hook type with the given context.
func (m *DefaultHookManager) Execute(ctx context.Context, hookType HookType, hc HookContext) (*Result, error) {
	if !m.HasHook(hookType) {
		return &Result{}, nil
	}

	hcCopy := hc
	if hcCopy.Vars == nil {
		hcCopy.Vars = make(map[string]interface{})
	}

	logger.Debug("Running hook", logger.Fields{"hook": hookType})
	res, err := m.executor.Execute(ctx, hookType, hcCopy)
	if err != nil {
		return nil, err
	}
	if len(res.ExtraLibs) > 0 {
		logger.Debug("Hook added link libraries", logger.Fields{"hook": hookType, "libs": res.ExtraLibs})
	}
	return res, nil
}

// AddHook adds a new hook.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes a hook of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}
