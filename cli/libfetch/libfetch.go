package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/batrachia/libfetch/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	outputFormat string
	logFormat    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libfetch",
		Short: "Locate the native WebRTC libraries batrachia links against",
		Long: `libfetch finds the prebuilt WebRTC and sys static libraries for a build:
- honours WEBRTC_LIBRARY_PATH and SYS_LIBRARY_PATH overrides
- otherwise downloads the versioned release assets into a local cache
- prints linker directives for cgo and build scripts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json, yaml, cgo, env, go)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format on stderr (text, json)")

	// Set up CLI package variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat
	cli.LogFormat = &logFormat

	cmd.AddCommand(
		cli.NewResolveCmd(),
		cli.NewEnvCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewPackageCmd(),
		cli.NewHookCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
