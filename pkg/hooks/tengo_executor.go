package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Variables scripts may assign to.
const (
	varExtraLibs = "extra_libs"
	varErr       = "err"
)

var reservedVars = map[string]struct{}{
	"version": {}, "os": {}, "arch": {},
	"webrtc_path": {}, "webrtc_source": {},
	"sys_path": {}, "sys_source": {},
	varExtraLibs: {}, varErr: {},
}

// IsReservedVar reports whether name is set by the executor and cannot be a custom variable.
func IsReservedVar(name string) bool {
	_, ok := reservedVars[name]
	return ok
}

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script for hookType. Scripts see version, os, arch,
// webrtc_path, sys_path, webrtc_source, sys_source and any custom Vars, and
// may assign extra_libs (array of strings) and err (string or error).
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hc HookContext) (*Result, error) {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return &Result{}, nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))

	inputs := map[string]interface{}{
		"version":       hc.Version,
		"os":            hc.Platform.OS,
		"arch":          hc.Platform.Arch,
		"webrtc_path":   hc.WebRTC.Path,
		"webrtc_source": hc.WebRTC.Source,
		"sys_path":      hc.Sys.Path,
		"sys_source":    hc.Sys.Source,
		varExtraLibs:    []interface{}{},
		varErr:          nil,
	}
	for k, v := range hc.Vars {
		if IsReservedVar(k) {
			return nil, fmt.Errorf("%w: variable %q is reserved", errors.ErrHookExecution, k)
		}
		inputs[k] = v
	}
	for k, v := range inputs {
		if err := scriptInstance.Add(k, v); err != nil {
			return nil, fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookExecution, err)
	}

	if msg := scriptError(compiled.Get(varErr).Object()); msg != "" {
		return nil, fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, msg)
	}

	libs, err := stringList(compiled.Get(varExtraLibs).Value())
	if err != nil {
		return nil, fmt.Errorf("%s: %w: extra_libs: %w", hookType, errors.ErrHookScript, err)
	}
	return &Result{ExtraLibs: libs}, nil
}

// scriptError extracts the message of an err assignment, either error(...) or a plain string.
func scriptError(obj tengo.Object) string {
	switch o := obj.(type) {
	case *tengo.Error:
		if msg, ok := tengo.ToString(o.Value); ok {
			return msg
		}
		return o.String()
	case *tengo.String:
		return o.Value
	default:
		return ""
	}
}

func stringList(v interface{}) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if val == "" {
			return nil, nil
		}
		return []string{val}, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want string", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want array of strings", v)
	}
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
