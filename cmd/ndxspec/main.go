// Package main provides the ndxspec binary. It exports the schema documents
// of the ndx-facemap-motionsvd extension and summarises files written with it.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	motionsvd "github.com/yyyoichi/facemap_motionsvd"
	"github.com/yyyoichi/facemap_motionsvd/spec"
)

const appName = "ndxspec"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Schema tool for the ndx-facemap-motionsvd extension",
		Long: `ndxspec writes the namespace and extension YAML documents that
describe MotionSVDSeries and MotionSVDMasks, and inspects files that store them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), logLevel))
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(exportCmd(), inspectCmd(), versionCmd())
	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the namespace and extension documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := motionsvd.NewNamespaceBuilder()
			if err != nil {
				return err
			}
			if err := spec.Export(b, motionsvd.Extensions(), out); err != nil {
				return err
			}
			slog.Info("exported namespace", "namespace", b.Name(), "version", b.Version(), "dir", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "spec", "Output directory")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarise the processing modules of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := motionsvd.Read(cmd.Context(), args[0], motionsvd.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), f)
			return nil
		},
	}
}

func printFile(w io.Writer, f *motionsvd.File) {
	fmt.Fprintf(w, "identifier: %s\n", f.Identifier())
	fmt.Fprintf(w, "session: %s (%s)\n", f.SessionDescription(), f.SessionStartTime().Format("2006-01-02 15:04:05"))
	for _, m := range f.ProcessingModules() {
		fmt.Fprintf(w, "%s/\n", m.Name())
		for _, c := range m.Containers() {
			switch c := c.(type) {
			case *motionsvd.MotionSVDMasks:
				fmt.Fprintf(w, "  %s [%s] rows=%d downsampling=%g\n", c.Name(), c.NeurodataType(), c.Len(), c.DownsamplingFactor())
			case *motionsvd.MotionSVDSeries:
				timing := fmt.Sprintf("rate=%gHz", c.Rate())
				if c.HasTimestamps() {
					timing = "timestamps"
				}
				fmt.Fprintf(w, "  %s [%s] %dx%d %s unit=%s masks=%s\n", c.Name(), c.NeurodataType(),
					c.NumSamples(), c.NumComponents(), timing, c.Unit(), c.MotionMasks().Table().Name())
			default:
				fmt.Fprintf(w, "  %s [%s]\n", c.Name(), c.NeurodataType())
			}
		}
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", appName, motionsvd.NamespaceName, motionsvd.NamespaceVersion)
		},
	}
}
