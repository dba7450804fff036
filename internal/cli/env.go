package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/spf13/cobra"
)

type envEntry struct {
	Kind     locator.Kind `json:"kind"`
	Variable string       `json:"variable"`
	Set      bool         `json:"set"`
	Value    string       `json:"value,omitempty"`
	Path     string       `json:"path,omitempty"`
	Valid    bool         `json:"valid"`
	Problem  string       `json:"problem,omitempty"`
	err      error
}

// NewEnvCmd creates the env command.
func NewEnvCmd() *cobra.Command {
	var (
		overrides overrideFlags
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show library path overrides",
		Long: "Show whether " + locator.EnvWebRTCLibraryPath + " and " + locator.EnvSysLibraryPath +
			" are set and whether the files they name are usable.\nExits with an error if a set override is invalid.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := overrides.Apply(cmd.Flags(), locator.OverridesFromEnv(lookupEnv))
			entries := envEntries(o)

			out := cmd.OutOrStdout()
			if asJSON || (OutputFormat != nil && *OutputFormat == "json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(entries); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
				_, _ = fmt.Fprintln(tw, "VARIABLE\tSTATUS\tPATH")
				for _, e := range entries {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Variable, e.status(), dash(e.Path))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			for _, e := range entries {
				if e.err != nil {
					return e.err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().AddFlagSet(overrides.FlagSet())

	return cmd
}

func envEntries(o locator.Overrides) []envEntry {
	entries := make([]envEntry, 0, len(locator.AllKinds()))
	for _, kind := range locator.AllKinds() {
		v := o.Get(kind)
		e := envEntry{Kind: kind, Variable: kind.EnvVar(), Set: v.Set, Value: v.Path}
		if v.Origin != "" {
			e.Variable = v.Origin
		}
		if v.Set {
			path, err := locator.ValidateOverride(kind, v)
			if err != nil {
				e.Problem = err.Error()
				e.err = err
			} else {
				e.Path = path
				e.Valid = true
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func (e envEntry) status() string {
	switch {
	case !e.Set:
		return "unset (acquire automatically)"
	case e.Valid:
		return "ok"
	default:
		return "invalid: " + e.Problem
	}
}
