// Package linkflags turns a resolution into the flags the cgo linking step consumes.
package linkflags

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/batrachia/libfetch/pkg/locator"
)

// Directives are the linker inputs for one resolution.
type Directives struct {
	SearchDirs []string `json:"search_dirs" yaml:"search_dirs"`
	// Libs are the resolved static libraries, dependents first so that
	// single-pass linkers see the shim before the library it calls into.
	// Overrides appear as absolute archive paths, everything else as -l names.
	Libs       []string `json:"libs" yaml:"libs"`
	SystemLibs []string `json:"system_libs,omitempty" yaml:"system_libs,omitempty"`
	Frameworks []string `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
}

// Build derives directives from res. extra libraries are appended after the
// system libraries; duplicates are dropped.
//
// Override artifacts are linked by their exact path and contribute no search
// directory: the linker must never find a different archive of the same name.
func Build(res *locator.Resolution, extra []string) Directives {
	var d Directives
	reserved := make([]string, 0, 2*len(res.Artifacts))
	for _, a := range res.Artifacts {
		reserved = append(reserved, a.LinkName, a.Kind.LinkName())
		if a.Source != locator.SourceOverride {
			d.SearchDirs = appendUnique(d.SearchDirs, a.SearchDir)
		}
	}
	for i := len(res.Artifacts) - 1; i >= 0; i-- {
		a := res.Artifacts[i]
		if a.Source == locator.SourceOverride {
			d.Libs = appendUnique(d.Libs, a.Path)
			continue
		}
		d.Libs = appendUnique(d.Libs, a.LinkName)
	}
	for _, lib := range res.SystemLibs {
		d.SystemLibs = appendUnique(d.SystemLibs, lib)
	}
	for _, lib := range extra {
		if slices.Contains(reserved, lib) {
			continue
		}
		d.SystemLibs = appendUnique(d.SystemLibs, lib)
	}
	for _, fw := range res.Frameworks {
		d.Frameworks = appendUnique(d.Frameworks, fw)
	}
	return d
}

// Args returns the linker arguments in order: search dirs, static libs, system libs, frameworks.
func (d Directives) Args() []string {
	args := make([]string, 0, len(d.SearchDirs)+len(d.Libs)+len(d.SystemLibs)+2*len(d.Frameworks))
	for _, dir := range d.SearchDirs {
		args = append(args, "-L"+dir)
	}
	for _, lib := range d.Libs {
		args = append(args, libArg(lib))
	}
	for _, lib := range d.SystemLibs {
		args = append(args, "-l"+lib)
	}
	for _, fw := range d.Frameworks {
		args = append(args, "-framework", fw)
	}
	return args
}

// LDFLAGS renders Args as a CGO_LDFLAGS value. Arguments containing spaces are
// double-quoted, which both cgo and the go command understand.
func (d Directives) LDFLAGS() string {
	args := d.Args()
	for i, arg := range args {
		args[i] = quoteArg(arg)
	}
	return strings.Join(args, " ")
}

// libArg passes archive paths through unchanged; cgo accepts absolute .a paths in LDFLAGS.
func libArg(lib string) string {
	if filepath.IsAbs(lib) {
		return lib
	}
	return "-l" + lib
}

func quoteArg(arg string) string {
	if !strings.ContainsAny(arg, " \t'\"") {
		return arg
	}
	if !strings.Contains(arg, `"`) {
		return `"` + arg + `"`
	}
	return "'" + arg + "'"
}

func appendUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
