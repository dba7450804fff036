package cli

import (
	"fmt"
	"os"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/fsutil"
	"github.com/batrachia/libfetch/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHookCmd creates the hook command with subcommands.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Work with resolution hooks",
	}

	cmd.AddCommand(newHookTemplateCmd())

	return cmd
}

func newHookTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "template TYPE",
		Short:     "Print a starter hook script",
		Long:      "Print a starter Tengo script for a hook type (pre-resolve or post-resolve)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PreResolve), string(hooks.PostResolve)},
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType, err := hooks.ParseHookType(args[0])
			if err != nil {
				return err
			}
			script := hooks.HookTemplate(hookType)

			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), script)
				return err
			}
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("refusing to overwrite existing file %s", out)
			}
			if err := fsutil.EnsureFileDir(out); err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(script), fsutil.FileModeDefault); err != nil {
				return fmt.Errorf("failed to write hook script: %w", err)
			}
			logger.Success("Hook script created", logger.Fields{"path": out, "type": hookType})
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the script to this file")

	return cmd
}
