package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reloop/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var initPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := initPath
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initPath, "path", "", "Destination path (default ~/.config/reloop/config.toml)")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config file:        %s\n", ctx.configPath)
			}
			fmt.Fprintf(out, "Library directory:  %s\n", cfg.Paths.LibraryDir)
			fmt.Fprintf(out, "Log directory:      %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "API bind:           %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "FFmpeg binary:      %s\n", cfg.Tools.FFmpegBinary)
			fmt.Fprintf(out, "FFprobe binary:     %s\n", cfg.Tools.FFprobeBinary)
			fmt.Fprintf(out, "Frame size:         %d\n", cfg.Similarity.FrameSize)
			fmt.Fprintf(out, "Default threshold:  %g\n", cfg.Similarity.DefaultThreshold)
			fmt.Fprintf(out, "Log format:         %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log level:          %s\n", cfg.Logging.Level)
			return nil
		},
	})

	return cmd
}
