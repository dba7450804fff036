package cli

import (
	"fmt"

	"github.com/batrachia/libfetch/internal/logger"
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/batrachia/libfetch/pkg/platform"
	"github.com/batrachia/libfetch/pkg/release"
	"github.com/spf13/cobra"
)

// NewPackageCmd creates the package command.
func NewPackageCmd() *cobra.Command {
	var (
		kind     string
		libPath  string
		outDir   string
		version  string
		osName   string
		arch     string
		template string
		archive  bool
	)

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Publish a locally built library as a release asset",
		Long: `Copy a locally built static library into a release directory under the asset
name resolve downloads, and record its SHA-256 digest in SHA256SUMS.
With --archive the library is wrapped in a tar.gz under its linker file name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			k, err := locator.ParseKind(kind)
			if err != nil {
				return err
			}

			naming := cfg.Release.Naming()
			if cmd.Flags().Changed("archive") {
				naming.Archived = archive
			}
			if template != "" {
				naming.Template = template
			}

			p := cfg.Platform()
			if osName != "" || arch != "" {
				p = platform.Resolve(platform.Platform{OS: osName, Arch: arch})
			}

			result, err := release.Publish(cmd.Context(), release.PublishRequest{
				Kind:     k,
				LibPath:  libPath,
				OutDir:   outDir,
				Version:  version,
				Platform: p,
				Naming:   naming,
			})
			if err != nil {
				return fmt.Errorf("failed to package library: %w", err)
			}

			logger.Success("Packaged library", logger.Fields{"asset": result.Asset, "sha256": result.SHA256})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", result.SHA256, result.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Library kind (webrtc or sys)")
	cmd.Flags().StringVar(&libPath, "lib", "", "Path to the built static library")
	cmd.Flags().StringVar(&outDir, "out", "", "Release directory to write the asset into")
	cmd.Flags().StringVar(&version, "version", "", "Release version of the asset")
	cmd.Flags().StringVar(&osName, "os", "", "Target operating system (default: settings.platform.os or host)")
	cmd.Flags().StringVar(&arch, "arch", "", "Target architecture (default: settings.platform.arch or host)")
	cmd.Flags().StringVar(&template, "template", "", "Asset name template (default: release.asset_template)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Publish as a tar.gz archive (default: release.archived)")

	for _, name := range []string{"kind", "lib", "out", "version"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
