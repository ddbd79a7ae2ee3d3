/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/archive"
	"github.com/NVIDIA/ceph-diagnostics/pkg/ceph"
	"github.com/NVIDIA/ceph-diagnostics/pkg/collector"
	"github.com/NVIDIA/ceph-diagnostics/pkg/collector/systemd"
	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/k8s/toolbox"
	"github.com/NVIDIA/ceph-diagnostics/pkg/oci"
	"github.com/NVIDIA/ceph-diagnostics/pkg/redact"
)

// AnnotationFSID carries the cluster id on pushed artifacts.
const AnnotationFSID = "com.nvidia.ceph-diagnostics.fsid"

const defaultTimeoutSeconds = 10

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Collect diagnostic information from a Ceph cluster",
		Description: `Run the diagnostic query table against a Ceph cluster and write one archive:
  - system information (kernel, packages, network, disks)
  - cluster configuration, health and version
  - monitor, manager, OSD, PG, MDS and filesystem state
  - radosgw-admin data when RGW pools exist
  - orchestrator state

Secrets in configuration output are censored unless --uncensored is given.
Next to the archive a manifest (<base>.manifest.yaml) records per-item status
and checksums, and <base>.tar.gz.sha256 holds the archive checksum.

# Rook Mode

With --rook, every command runs inside the Rook toolbox pod:

  ceph-collect collect --rook --rook-namespace rook-ceph

# Examples

Collect into the current directory:
  ceph-collect collect --results-dir .

Collect with inactive PG queries, four queries at a time:
  ceph-collect collect --query-inactive-pg --parallel 4

Collect and push the archive to a registry:
  ceph-collect collect --push oci://ghcr.io/acme/ceph-diagnostics`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ceph-config-file",
				Usage:   "Ceph configuration file",
				Sources: cli.EnvVars("CEPH_CONF"),
				Value:   defaults.CephConfigPath,
			},
			&cli.StringFlag{
				Name:    "results-dir",
				Usage:   "Directory to store the collected archive",
				Sources: cli.EnvVars("CEPH_COLLECT_RESULTS_DIR"),
				Value:   os.TempDir(),
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Timeout in seconds for Ceph operations",
				Value: defaultTimeoutSeconds,
			},
			&cli.BoolFlag{
				Name:  "query-inactive-pg",
				Usage: "Query every inactive placement group",
			},
			&cli.BoolFlag{
				Name:  "uncensored",
				Usage: "Don't hide sensitive data",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Be verbose",
			},
			&cli.BoolFlag{
				Name:  "crash-info",
				Usage: "Collect crash info for every recorded crash",
				Value: true,
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Number of queries run concurrently within a category",
				Value: 1,
			},
			&cli.FloatFlag{
				Name:  "qps",
				Usage: "Maximum control-plane queries per second (0 = unlimited)",
			},
			&cli.StringFlag{
				Name:  "queries",
				Usage: "Query table file replacing the built-in table",
			},
			&cli.StringFlag{
				Name:  "ceph-binary",
				Usage: "Ceph CLI executable",
				Value: defaults.CephBinary,
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write collection metrics in Prometheus text format to this file",
			},
			&cli.StringFlag{
				Name:  "push",
				Usage: "Push the archive to an OCI registry (oci://registry/repository[:tag])",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for --push",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS verification for --push",
			},
			&cli.BoolFlag{
				Name:  "rook",
				Usage: "Run commands inside the Rook toolbox pod",
			},
			&cli.StringFlag{
				Name:    "rook-namespace",
				Usage:   "Namespace of the Rook toolbox pod",
				Sources: cli.EnvVars("ROOK_NAMESPACE"),
				Value:   defaults.RookNamespace,
			},
			&cli.StringFlag{
				Name:  "rook-selector",
				Usage: "Label selector of the Rook toolbox pod",
				Value: defaults.RookToolboxSelector,
			},
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)

			opts, missing := collectOptionsFromCmd(cmd)
			if len(missing) > 0 {
				printUsage(errWriter(cmd), cmd)
				logger.Warn("required options are empty, using defaults", "options", strings.Join(missing, ","))
			}

			runner, err := newRunner(ctx, opts, logger)
			if err != nil {
				return err
			}

			res, err := runCollect(ctx, opts, runner, newUnitLister(opts, logger), logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(outWriter(cmd), res.Path)
			return nil
		},
	}
}

// collectOptions are the parsed collect flags.
type collectOptions struct {
	ConfigPath      string
	ResultsDir      string
	Timeout         time.Duration
	QueryInactivePG bool
	Uncensored      bool
	CrashInfo       bool
	Parallel        int
	QPS             float64
	QueriesFile     string
	CephBinary      string
	MetricsFile     string

	Push        string
	PlainHTTP   bool
	InsecureTLS bool

	Rook          bool
	RookNamespace string
	RookSelector  string
	Kubeconfig    string
}

// collectOptionsFromCmd reads the collect flags. Empty config file, results
// directory or timeout fall back to their defaults and are returned as missing
// so the caller can print usage; the run still proceeds.
func collectOptionsFromCmd(cmd *cli.Command) (collectOptions, []string) {
	opts := collectOptions{
		ConfigPath:      strings.TrimSpace(cmd.String("ceph-config-file")),
		ResultsDir:      strings.TrimSpace(cmd.String("results-dir")),
		Timeout:         time.Duration(cmd.Int("timeout")) * time.Second,
		QueryInactivePG: cmd.Bool("query-inactive-pg"),
		Uncensored:      cmd.Bool("uncensored"),
		CrashInfo:       cmd.Bool("crash-info"),
		Parallel:        cmd.Int("parallel"),
		QPS:             cmd.Float("qps"),
		QueriesFile:     cmd.String("queries"),
		CephBinary:      cmd.String("ceph-binary"),
		MetricsFile:     cmd.String("metrics-file"),
		Push:            cmd.String("push"),
		PlainHTTP:       cmd.Bool("plain-http"),
		InsecureTLS:     cmd.Bool("insecure-tls"),
		Rook:            cmd.Bool("rook"),
		RookNamespace:   cmd.String("rook-namespace"),
		RookSelector:    cmd.String("rook-selector"),
		Kubeconfig:      cmd.String("kubeconfig"),
	}

	var missing []string
	if opts.ConfigPath == "" {
		missing = append(missing, "ceph-config-file")
		opts.ConfigPath = defaults.CephConfigPath
	}
	if opts.ResultsDir == "" {
		missing = append(missing, "results-dir")
		opts.ResultsDir = os.TempDir()
	}
	if opts.Timeout <= 0 {
		missing = append(missing, "timeout")
		opts.Timeout = defaultTimeoutSeconds * time.Second
	}
	if opts.CephBinary == "" {
		opts.CephBinary = defaults.CephBinary
	}
	return opts, missing
}

// newRunner returns the local shell runner, or a runner bound to the Rook
// toolbox pod in Rook mode.
func newRunner(ctx context.Context, opts collectOptions, logger *slog.Logger) (executor.Runner, error) {
	if !opts.Rook {
		return executor.NewLocalRunner(), nil
	}

	client, restConfig, err := toolbox.BuildKubeClient(opts.Kubeconfig)
	if err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, defaults.K8sPodLookupTimeout)
	defer cancel()
	pod, err := toolbox.FindPod(lookupCtx, client, opts.RookNamespace, opts.RookSelector)
	if err != nil {
		return nil, err
	}
	logger.Info("using rook toolbox", "namespace", pod.Namespace, "pod", pod.Name)

	r := &toolbox.PodRunner{
		RESTClient: client.CoreV1().RESTClient(),
		Config:     restConfig,
		Namespace:  pod.Namespace,
		Pod:        pod.Name,
	}
	if len(pod.Spec.Containers) > 0 {
		r.Container = pod.Spec.Containers[0].Name
	}
	return r, nil
}

// newUnitLister reads unit states from the local system bus. Inside the
// Rook toolbox there is none.
func newUnitLister(opts collectOptions, logger *slog.Logger) collector.UnitLister {
	if opts.Rook {
		return nil
	}
	return &systemd.Lister{Logger: logger}
}

// runCollect connects, collects, archives and optionally pushes. units may
// be nil. The run has no overall deadline: each call is bounded by its own
// timeout and only cancellation of ctx aborts it.
func runCollect(ctx context.Context, opts collectOptions, runner executor.Runner, units collector.UnitLister, logger *slog.Logger) (*archive.Result, error) {
	table, err := loadTable(opts.QueriesFile)
	if err != nil {
		return nil, err
	}

	var ref *oci.Reference
	if opts.Push != "" {
		if ref, err = oci.ParseReference(opts.Push); err != nil {
			return nil, err
		}
	}

	logger.Info("connecting to cluster", "config", opts.ConfigPath)
	client, err := ceph.Connect(ctx, runner, ceph.Config{
		ConfigPath:     opts.ConfigPath,
		Binary:         opts.CephBinary,
		ConnectTimeout: max(opts.Timeout, defaults.ConnectTimeout),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	ex := &executor.Executor{
		Runner:       runner,
		ControlPlane: client,
		Timeout:      opts.Timeout,
		Limiter:      executor.NewLimiter(opts.QPS),
		Logger:       logger,
	}

	c := &collector.Collector{
		Executor: ex,
		Table:    table,
		Vars: collector.Vars{
			CephBinary: opts.CephBinary,
			ConfigPath: opts.ConfigPath,
			Timeout:    opts.Timeout,
		},
		FSID:            client.FSID(),
		Redactor:        redact.New(!opts.Uncensored),
		Units:           units,
		Parallel:        opts.Parallel,
		QueryInactivePG: opts.QueryInactivePG,
		CrashInfo:       opts.CrashInfo,
		Logger:          logger,
	}
	run, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}

	a := &archive.Archiver{
		Dir:         opts.ResultsDir,
		ToolVersion: version,
		Logger:      logger,
	}
	res, err := a.Write(ctx, run, archive.Info{
		FSID:     client.FSID(),
		Monitors: client.Monitors(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("diagnostics collected", "archive", res.Path, "manifest", res.ManifestPath)

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, prometheus.DefaultGatherer); err != nil {
			logger.Warn("failed to write metrics file", "path", opts.MetricsFile, "error", err)
		}
	}

	if ref != nil {
		if err := pushArchive(ctx, ref, opts, res, logger); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func loadTable(path string) (*collector.Table, error) {
	if path == "" {
		return collector.DefaultTable()
	}
	return collector.LoadTable(path)
}

// pushArchive publishes the archive and its sidecars as one OCI artifact.
// Without a tag in the reference the archive timestamp is used.
func pushArchive(ctx context.Context, ref *oci.Reference, opts collectOptions, res *archive.Result, logger *slog.Logger) error {
	if ref.Tag == "" {
		ref = ref.WithTag(strings.TrimPrefix(res.Base, defaults.ArchivePrefix+"_"))
	}

	workDir, err := os.MkdirTemp("", res.Base+"-oci-")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create OCI work directory", err)
	}
	defer os.RemoveAll(workDir)

	ctx, cancel := context.WithTimeout(ctx, defaults.PushTimeout)
	defer cancel()

	annotations := map[string]string{
		ociv1.AnnotationCreated: res.Manifest.Started.Format(time.RFC3339),
		ociv1.AnnotationVersion: version,
		ociv1.AnnotationTitle:   res.Base,
		AnnotationFSID:          res.Manifest.Cluster.FSID,
	}
	layers := []oci.Layer{
		{Path: res.Path, MediaType: oci.MediaTypeArchive},
		{Path: res.ManifestPath, MediaType: oci.MediaTypeManifest},
		{Path: res.ChecksumPath, MediaType: oci.MediaTypeChecksum},
	}

	_, err = oci.Publish(ctx, workDir, layers, annotations, oci.PushOptions{
		Reference:   ref,
		PlainHTTP:   opts.PlainHTTP,
		InsecureTLS: opts.InsecureTLS,
	}, logger)
	return err
}
