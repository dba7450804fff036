package linkflags

import (
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"gopkg.in/yaml.v3"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCgo  Format = "cgo"
	FormatEnv  Format = "env"
	FormatGo   Format = "go"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatCgo, FormatEnv, FormatGo}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, 0, len(Formats()))
	for _, known := range Formats() {
		names = append(names, string(known))
	}
	return "", fmt.Errorf("unsupported format %q (valid: %s)", s, strings.Join(names, ", "))
}

// RenderOptions tune individual renderers.
type RenderOptions struct {
	// GoPackage is the package clause of the generated Go file.
	GoPackage string
}

// Output is the document written by the json and yaml renderers.
type Output struct {
	Resolution *locator.Resolution `json:"resolution" yaml:"resolution"`
	Directives Directives          `json:"directives" yaml:"directives"`
	LDFLAGS    string              `json:"ldflags" yaml:"ldflags"`
}

// Render writes res and d to w in the requested format.
func Render(w io.Writer, f Format, res *locator.Resolution, d Directives, opts RenderOptions) error {
	switch f {
	case FormatText:
		return renderText(w, res, d)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Output{Resolution: res, Directives: d, LDFLAGS: d.LDFLAGS()})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Output{Resolution: res, Directives: d, LDFLAGS: d.LDFLAGS()}); err != nil {
			return err
		}
		return enc.Close()
	case FormatCgo:
		_, err := fmt.Fprintln(w, d.LDFLAGS())
		return err
	case FormatEnv:
		return renderEnv(w, res, d)
	case FormatGo:
		return renderGo(w, res, d, opts)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func renderText(w io.Writer, res *locator.Resolution, d Directives) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Version:\t%s\n", displayVersion(res.Version))
	_, _ = fmt.Fprintf(tw, "Platform:\t%s\n", res.Platform)
	for _, a := range res.Artifacts {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\t(%s)\n", a.Kind, a.Path, a.Source)
	}
	_, _ = fmt.Fprintf(tw, "CGO_LDFLAGS:\t%s\n", d.LDFLAGS())
	return tw.Flush()
}

func displayVersion(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func renderEnv(w io.Writer, res *locator.Resolution, d Directives) error {
	lines := []string{"export CGO_LDFLAGS=" + shellQuote(d.LDFLAGS())}
	for _, kind := range locator.AllKinds() {
		if path := res.Path(kind); path != "" {
			lines = append(lines, "export "+kind.EnvVar()+"="+shellQuote(path))
		}
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var goFileTemplate = template.Must(template.New("go").Parse(`// Code generated by libfetch. DO NOT EDIT.

{{if .BuildTag}}//go:build {{.BuildTag}}

{{end}}package {{.Package}}

/*
{{range .Lines}}#cgo LDFLAGS: {{.}}
{{end}}*/
import "C"
`))

func renderGo(w io.Writer, res *locator.Resolution, d Directives, opts RenderOptions) error {
	pkg := opts.GoPackage
	if pkg == "" {
		pkg = "webrtc"
	}

	var lines []string
	static := Directives{SearchDirs: d.SearchDirs, Libs: d.Libs}
	if args := static.LDFLAGS(); args != "" {
		lines = append(lines, args)
	}
	system := Directives{SystemLibs: d.SystemLibs, Frameworks: d.Frameworks}
	if args := system.LDFLAGS(); args != "" {
		lines = append(lines, args)
	}

	var buf strings.Builder
	err := goFileTemplate.Execute(&buf, struct {
		Package  string
		BuildTag string
		Lines    []string
	}{Package: pkg, BuildTag: buildTag(res.Platform), Lines: lines})
	if err != nil {
		return err
	}

	src, err := format.Source([]byte(buf.String()))
	if err != nil {
		return fmt.Errorf("generated Go source is invalid: %w", err)
	}
	_, err = w.Write(src)
	return err
}

// buildTag restricts generated files to the platform they were resolved for.
func buildTag(p platform.Platform) string {
	if p.OS == "" || p.Arch == "" {
		return ""
	}
	goos := p.OS
	if goos == platform.OSMacOS {
		goos = "darwin"
	}
	return goos + " && " + p.Arch
}
