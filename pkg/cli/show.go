/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/urfave/cli/v3"
	"github.com/valyala/fastjson"

	"github.com/NVIDIA/ceph-diagnostics/pkg/archive"
	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/loader"
	"github.com/NVIDIA/ceph-diagnostics/pkg/serializer"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:                  "show",
		EnableShellCompletion: true,
		Usage:                 "Summarize the cluster report of a collection",
		Description: `Load the cluster_health-report of a collection and print a summary:
cluster fingerprint, version, health status and checks, pool count and
the number of non-finite ratios (nan, inf) in the report.

The report is read from an extracted collection directory (--dir, or
$CEPH_DIAGNOSTICS_COLLECT_DIR) or directly from an archive (--archive).
An archive is checked against its .sha256 file first (--verify), and the
status recorded for the report in the manifest is shown when the manifest
sits next to the archive.

# Examples

  ceph-collect show --dir /tmp/ceph-collect_20250101_120000
  ceph-collect show --archive /tmp/ceph-collect_20250101_120000.tar.gz --format json
  ceph-collect show --output cm://rook-ceph/ceph-summary`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Extracted collection directory (default: $" + defaults.CollectDirEnv + ")",
			},
			&cli.StringFlag{
				Name:    "archive",
				Aliases: []string{"f"},
				Usage:   "Collection archive to read the report from",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Check --archive against its checksum file before reading it",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "trim",
				Usage: "Skip leading non-JSON lines (such as warnings) before parsing",
				Value: true,
			},
			outputFlag(),
			formatFlag(serializer.FormatTable),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)

			opts := []loader.Option{loader.WithLogger(logger)}
			if cmd.Bool("trim") {
				opts = append(opts, loader.WithTrim())
			}

			var info *archiveInfo
			if path := cmd.String("archive"); path != "" {
				var err error
				if info, err = inspectArchive(path, cmd.Bool("verify"), logger); err != nil {
					return err
				}
			}

			doc, source, err := loadReport(cmd.String("archive"), cmd.String("dir"), opts...)
			if err != nil {
				return err
			}
			s := summarize(doc, source)
			if info != nil {
				s.Checksum = info.checksum
				s.ReportStatus = info.reportStatus
			}
			return writeDocument(ctx, cmd, s, logger)
		},
	}
}

// Checksum states of an archive.
const (
	checksumVerified = "verified"
	checksumMissing  = "missing"
	checksumSkipped  = "skipped"
)

type archiveInfo struct {
	checksum     string
	reportStatus dataset.Status
}

// inspectArchive verifies the archive's checksum file and reads the report's
// status from its manifest. A corrupt archive is an error; a missing
// checksum file or manifest is not.
func inspectArchive(path string, verify bool, logger *slog.Logger) (*archiveInfo, error) {
	info := &archiveInfo{checksum: checksumSkipped}
	if verify {
		err := archive.Verify(path)
		switch {
		case err == nil:
			info.checksum = checksumVerified
		case errors.IsCode(err, errors.ErrCodeNotFound):
			logger.Warn("archive has no checksum file, skipping verification", "archive", path)
			info.checksum = checksumMissing
		default:
			return nil, err
		}
	}

	m, err := archive.LoadManifest(archive.ManifestPath(path))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			logger.Debug("archive has no manifest", "archive", path)
			return info, nil
		}
		return nil, err
	}
	entry, ok := m.Entry(defaults.ReportMember)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("manifest lists no %s member", defaults.ReportMember))
	}
	if entry.Status != dataset.StatusOK {
		return nil, errors.New(errors.ErrCodeUnavailable, fmt.Sprintf("%s was not collected: status %s", defaults.ReportMember, entry.Status))
	}
	info.reportStatus = entry.Status
	return info, nil
}

// loadReport reads the cluster report from an archive when one is given,
// otherwise from a collection directory.
func loadReport(archivePath, dir string, opts ...loader.Option) (*loader.Document, string, error) {
	if archivePath != "" {
		data, err := archive.ReadMember(archivePath, defaults.ReportMember)
		if err != nil {
			return nil, "", err
		}
		doc, err := loader.Parse(data, opts...)
		return doc, archivePath, err
	}

	path, err := loader.ReportPath(dir)
	if err != nil {
		return nil, "", err
	}
	doc, err := loader.Load(path, opts...)
	return doc, path, err
}

// ClusterSummary is the condensed view of a cluster report.
type ClusterSummary struct {
	header.Header `json:",inline" yaml:",inline"`

	Source  string `json:"source" yaml:"source"`
	FSID    string `json:"fsid,omitempty" yaml:"fsid,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Health  string `json:"health,omitempty" yaml:"health,omitempty"`
	// Checks maps each active health check to its severity.
	Checks    map[string]string `json:"checks,omitempty" yaml:"checks,omitempty"`
	Pools     int               `json:"pools" yaml:"pools"`
	NonFinite int               `json:"nonFinite" yaml:"nonFinite"`

	// Checksum and ReportStatus are set for archives only.
	Checksum     string         `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	ReportStatus dataset.Status `json:"reportStatus,omitempty" yaml:"reportStatus,omitempty"`
}

func summarize(doc *loader.Document, source string) *ClusterSummary {
	s := &ClusterSummary{
		Header: *header.New(header.KindClusterSummary, version),
		Source: source,
	}
	s.FSID, _ = doc.String("cluster_fingerprint")
	s.Version, _ = doc.String("version")
	s.Health, _ = doc.String("health", "status")

	if checks := doc.Value().GetObject("health", "checks"); checks != nil && checks.Len() > 0 {
		s.Checks = make(map[string]string, checks.Len())
		checks.Visit(func(key []byte, v *fastjson.Value) {
			s.Checks[string(key)] = string(v.GetStringBytes("severity"))
		})
	}

	s.Pools = len(doc.Value().GetArray("pool_stats"))
	s.NonFinite = countNonFinite(doc.Value())
	return s
}

// countNonFinite counts NaN and infinite numbers anywhere under v.
func countNonFinite(v *fastjson.Value) int {
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return 1
		}
	case fastjson.TypeArray:
		n := 0
		for _, e := range v.GetArray() {
			n += countNonFinite(e)
		}
		return n
	case fastjson.TypeObject:
		n := 0
		v.GetObject().Visit(func(_ []byte, e *fastjson.Value) {
			n += countNonFinite(e)
		})
		return n
	}
	return 0
}
