package cli

import (
	"fmt"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the library cache",
		Long:  "Clean, show information about, and locate the cache of downloaded libraries",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var opts cache.CleanOptions

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the library cache",
		Long: `Remove cached files to free up disk space.
With --keep, only versions that do not satisfy the constraint are removed (e.g. --keep ">= 1.2").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := newCacheOperation()
			if err != nil {
				return err
			}
			msg, err := op.Clean(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			logger.Success("Cache cleaning completed", logger.Fields{"directory": op.GetDirectory()})
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&opts.Artifacts, "artifacts", false, "Clean only extracted libraries")
	cmd.Flags().BoolVar(&opts.Downloads, "downloads", false, "Clean only downloaded release assets")
	cmd.Flags().StringVar(&opts.Keep, "keep", "", "Keep versions matching this constraint")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display sizes, file counts and cached versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := newCacheOperation()
			if err != nil {
				return err
			}
			info, err := op.GetInfo()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := newCacheOperation()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), op.GetDirectory())
			return nil
		},
	}
}

func newCacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if dir := cfg.GetCacheDir(); dir != "" {
		return cache.NewOperation(cache.NewManager(dir)), nil
	}
	mgr, err := cache.NewDefaultManager()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(mgr), nil
}
