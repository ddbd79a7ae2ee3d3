/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
	"github.com/NVIDIA/ceph-diagnostics/pkg/serializer"
)

const (
	name           = "ceph-collect"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Shared flags are built per command; urfave flags keep parsed state.

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path, ConfigMap URI (cm://namespace/name), or stdout when empty",
	}
}

func formatFlag(def serializer.Format) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("Output format (supported values: %s)", serializer.SupportedFormats()),
		Value:   string(def),
	}
}

func kubeconfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "Path to kubeconfig (defaults to in-cluster config, then ~/.kube/config)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

// newRootCmd builds the command tree. collect runs when no subcommand is given.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Collect diagnostic information from a Ceph cluster",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		DefaultCommand:        "collect",
		Description: `ceph-collect captures one diagnostic snapshot of a Ceph cluster and packages
it into a timestamped tar.gz for offline triage.

  collect - run the query table and write the archive (default)
  show    - summarize the cluster report of an extracted collection
  queries - print the effective query table`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.EnvLogLevel),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				Sources: cli.EnvVars("CEPH_COLLECT_LOG_FORMAT"),
				Value:   string(logging.FormatJSON),
			},
		},
		Commands: []*cli.Command{
			collectCmd(),
			showCmd(),
			queriesCmd(),
		},
	}
}

// Execute runs the CLI with the process arguments and exits non-zero on error.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// newLogger builds the logger for one command from the global flags.
// --verbose, where the command has it, forces debug.
func newLogger(cmd *cli.Command) *slog.Logger {
	level := cmd.String("log-level")
	if cmd.Bool("verbose") {
		level = "debug"
	}
	logger := logging.New(logging.Options{
		Name:    name,
		Version: version,
		Level:   level,
		Format:  logging.ParseFormat(cmd.String("log-format")),
		Output:  errWriter(cmd),
	})
	logger.Debug("starting",
		"command", cmd.Name,
		"commit", commit,
		"date", date)
	return logger
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
