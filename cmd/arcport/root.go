package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"arcport/pkg/config"
	"arcport/pkg/console"
	"arcport/pkg/migrate"
	"arcport/pkg/report"
)

var (
	// Flags
	flagProfile   string
	flagOverwrite bool
	flagTransform string
	flagAllow     []string
	flagDeny      []string
	flagIgnore    []string
	flagLimit     int
	flagVerbose   int
	flagQuiet     int
)

// newRootCmd builds the arcport root command. The final exit code is
// written through exitCode so main can distinguish partial failure (1)
// from fatal failure (2).
func newRootCmd(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arcport <source> [destination]",
		Short: "Migrate a fanbox-dl archive into an archive-manager layout",
		Long: `arcport walks a fanbox-dl download tree, filters creators through
allow/deny lists, and materializes every file into the destination
archive layout by copy, move or hardlink under a concurrency limit.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := verbosityLevel()
			zerolog.SetGlobalLevel(level)
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
			ctx := logger.WithContext(cmd.Context())

			cfg, err := buildConfig(ctx, cmd, args)
			if err != nil {
				*exitCode = report.ExitFatal
				return err
			}

			ui := console.New(os.Stdout, level)
			printBanner(ui, cfg)

			if err := ensureDestination(ui, cfg.Destination); err != nil {
				*exitCode = report.ExitFatal
				return err
			}

			rep, err := migrate.Run(ctx, migrate.Options{
				Config:  *cfg,
				Console: ui,
			})
			if err != nil {
				*exitCode = report.ExitFatal
				return err
			}

			ui.Summary(rep)
			*exitCode = rep.ExitCode()
			return nil
		},
	}

	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds the flag surface to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "profile file (.arcport.yaml or .arcport.hcl)")
	cmd.Flags().BoolVarP(&flagOverwrite, "overwrite", "o", false, "overwrite existing destination files")
	cmd.Flags().StringVarP(&flagTransform, "transform", "t", "copy", "transform method (copy, move, hardlink)")
	cmd.Flags().StringSliceVarP(&flagAllow, "allow", "a", nil, "creator IDs to include (repeatable)")
	cmd.Flags().StringSliceVarP(&flagDeny, "deny", "d", nil, "creator IDs to exclude (repeatable)")
	cmd.Flags().StringSliceVar(&flagIgnore, "ignore", nil, "glob patterns for files to skip (repeatable)")
	cmd.Flags().IntVarP(&flagLimit, "limit", "l", config.DefaultLimit, "max concurrent transform operations")
	cmd.Flags().CountVarP(&flagVerbose, "verbose", "v", "increase logging verbosity")
	cmd.Flags().CountVarP(&flagQuiet, "quiet", "q", "decrease logging verbosity")
}

// verbosityLevel maps -v/-q counts onto a zerolog level
func verbosityLevel() zerolog.Level {
	level := int(zerolog.InfoLevel) + flagQuiet - flagVerbose
	if level < int(zerolog.TraceLevel) {
		level = int(zerolog.TraceLevel)
	}
	if level > int(zerolog.Disabled) {
		level = int(zerolog.Disabled)
	}
	return zerolog.Level(level)
}

// buildConfig assembles the run configuration: flags win over the profile
// file, the profile wins over environment fallbacks.
func buildConfig(ctx context.Context, cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Config{
		Source: args[0],
		Allow:  flagAllow,
		Deny:   flagDeny,
		Ignore: flagIgnore,
	}
	if len(args) == 2 {
		cfg.Destination = args[1]
	}

	if cmd.Flags().Changed("overwrite") {
		cfg.Overwrite = flagOverwrite
	}
	if cmd.Flags().Changed("transform") {
		kind, err := config.ParseTransformKind(flagTransform)
		if err != nil {
			return nil, err
		}
		cfg.Transform = kind
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit = flagLimit
	}

	profilePath := flagProfile
	if profilePath == "" {
		for _, candidate := range []string{".arcport.yaml", ".arcport.hcl"} {
			if _, err := os.Stat(candidate); err == nil {
				profilePath = candidate
				break
			}
		}
	}
	if profilePath != "" {
		profile, err := config.LoadProfile(ctx, profilePath)
		if err != nil {
			return nil, errors.Errorf("loading profile %s: %w", profilePath, err)
		}
		cfg.ApplyProfile(profile)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// printBanner mirrors the source tool's startup banner
func printBanner(ui *console.Logger, cfg *config.Config) {
	ui.Header("fanbox-dl archive migration")
	ui.Info("==================================")
	ui.Infof("Overwrite: %v", cfg.Overwrite)
	ui.Infof("Transform: %s", cfg.Transform)
	ui.Infof("Limit:     %d", cfg.Limit)
	ui.Infof("Input:     %s", cfg.Source)
	ui.Infof("Output:    %s", cfg.Destination)
	ui.Info("==================================")
	ui.LogNewline()
}

// ensureDestination creates the destination root when missing
func ensureDestination(ui *console.Logger, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	ui.Warning("creating output folder")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Errorf("creating destination %s: %w", dest, err)
	}
	return nil
}
