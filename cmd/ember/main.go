// Package main provides the Ember compute engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ember-ml/ember/backend/webgpu"
	internalwebgpu "github.com/ember-ml/ember/internal/backend/webgpu"
)

const version = "v0.1.0-dev"

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "ember",
		Short: "Ember compute engine",
		Long:  "Layout-aware tensor reductions and fused kernels for CPU and WebGPU.",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(versionCmd(), devicesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ember %s\n", version)
		},
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available compute devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "cpu: available")

			if !webgpu.IsAvailable() {
				fmt.Fprintln(out, "webgpu: unavailable")
				return nil
			}

			adapters, err := internalwebgpu.ListAdapters()
			if err != nil {
				return err
			}
			log := newLogger()
			for _, info := range adapters {
				log.Debug().
					Str("architecture", info.Architecture).
					Str("description", info.Description).
					Msg("adapter details")
				fmt.Fprintf(out, "webgpu: %s %s\n", info.Vendor, info.Device)
			}
			return nil
		},
	}
}
