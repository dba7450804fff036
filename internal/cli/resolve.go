package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/config"
	"github.com/batrachia/libfetch/pkg/errors"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/linkflags"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/orchestrator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// TabWidth is the width of tabs in formatted output.
const TabWidth = 2

type resolveOptions struct {
	version   string
	format    string
	manifest  string
	goPackage string
	out       string
	offline   bool
	refresh   bool
	dryRun    bool
	overrides overrideFlags
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Locate the native libraries and print link directives",
		Long: `Locate the prebuilt WebRTC and sys static libraries for the target platform.

A library named by ` + locator.EnvWebRTCLibraryPath + ` or ` + locator.EnvSysLibraryPath + ` (or the matching flag)
is used as is and must exist. Any library without an override is downloaded from the
configured release location into the cache, or taken from the cache if already present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "release version to acquire (default: release.version)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (text, json, yaml, cgo, env, go)")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "write a JSON resolution manifest to this file")
	cmd.Flags().StringVar(&opts.goPackage, "go-package", "", "package name for the go format (default: link.go_package or webrtc)")
	cmd.Flags().StringVar(&opts.out, "out", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "never download; fail unless the libraries are cached")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached libraries and download again")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show where each library would come from without acquiring anything")
	cmd.Flags().AddFlagSet(opts.overrides.FlagSet())

	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.version != "" {
		cfg.Release.Version = opts.version
	}
	if opts.offline {
		cfg.Release.Offline = true
	}
	formatName := cfg.Settings.OutputFormat
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := linkflags.ParseFormat(formatName)
	if err != nil {
		return err
	}

	req := locator.Request{
		Version:   cfg.Release.Version,
		Platform:  cfg.Platform(),
		Overrides: opts.overrides.Apply(cmd.Flags(), locator.OverridesFromEnv(lookupEnv)),
	}

	if opts.dryRun {
		steps, err := orchestrator.New(locator.New(nil), nil, orchestrator.Events{}).Plan(req)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), opts.out, func(w io.Writer) error {
			return renderPlan(w, format, steps)
		})
	}

	hookManager, err := loadHooks(cfg)
	if err != nil {
		return err
	}

	loc, err := newLocator(cfg, req.Overrides, opts.refresh)
	if err != nil {
		return err
	}

	orch := orchestrator.New(loc, hookManager, orchestrator.Events{OnEvent: logEvent})
	result, err := orch.Run(cmd.Context(), req, orchestrator.Options{
		ExtraLibs: cfg.Link.ExtraLibs,
		Vars:      hookVars(cfg),
	})
	if err != nil {
		return err
	}
	res := result.Resolution

	if opts.manifest != "" {
		if err := res.WriteManifest(opts.manifest); err != nil {
			return err
		}
		logger.Debug("Wrote manifest", logger.Fields{"path": opts.manifest})
	}

	goPackage := cfg.Link.GoPackage
	if opts.goPackage != "" {
		goPackage = opts.goPackage
	}
	return writeOutput(cmd.OutOrStdout(), opts.out, func(w io.Writer) error {
		return linkflags.Render(w, format, res, result.Directives, linkflags.RenderOptions{GoPackage: goPackage})
	})
}

// newLocator creates the locator. The acquirer is only built when a library has no override.
func newLocator(cfg *config.Config, overrides locator.Overrides, refresh bool) (*locator.Locator, error) {
	var opts []locator.Option
	if len(cfg.Link.SystemLibs) > 0 {
		opts = append(opts, locator.WithSystemLibs(cfg.Link.SystemLibs))
	}
	if len(cfg.Link.Frameworks) > 0 {
		opts = append(opts, locator.WithFrameworks(cfg.Link.Frameworks))
	}

	if overrides.WebRTC.Set && overrides.Sys.Set {
		return locator.New(nil, opts...), nil
	}
	if cfg.Release.Version == "" {
		return nil, fmt.Errorf("%w: a release version is required (--version or release.version)", errors.ErrConfigValidation)
	}
	acquirer, err := newAcquirer(cfg, refresh)
	if err != nil {
		return nil, err
	}
	return locator.New(acquirer, opts...), nil
}

func logEvent(e orchestrator.Event) {
	logger.Debug("Resolve progress", logger.Fields{"phase": e.Phase, "id": e.ID, "msg": e.Msg})
}

func renderPlan(w io.Writer, format linkflags.Format, steps []locator.PlanStep) error {
	switch format {
	case linkflags.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(steps)
	case linkflags.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(config.YAMLIndent)
		if err := enc.Encode(steps); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tw, "LIBRARY\tACTION\tORIGIN\tPATH\tPROBLEM")
		for _, s := range steps {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Kind, s.Action, dash(s.Origin), dash(s.Path), dash(s.Problem))
		}
		return tw.Flush()
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeOutput writes to stdout, or atomically to path when set.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".libfetch-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Debug("Wrote output", logger.Fields{"path": path})
	return nil
}
