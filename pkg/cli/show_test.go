/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/ceph-diagnostics/pkg/archive"
	"github.com/NVIDIA/ceph-diagnostics/pkg/archive/checksum"
	"github.com/NVIDIA/ceph-diagnostics/pkg/collector"
	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/gate"
	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/loader"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

const testReport = `2025-01-01T12:00:00.000+0000 7f3b2c0 -1 WARNING: all dangerous and experimental features are enabled.
{
    "cluster_fingerprint": "0f2b4c1e-8a3d-4f6e-9b21-7c5d3e1a9f40",
    "version": "17.2.6",
    "health": {
        "status": "HEALTH_WARN",
        "checks": {
            "OSD_DOWN": {"severity": "HEALTH_WARN", "summary": {"message": "1 osds down"}},
            "PG_DEGRADED": {"severity": "HEALTH_WARN", "summary": {"message": "Degraded data redundancy"}}
        }
    },
    "pool_stats": [
        {"pool_id": 1, "read_ratio": nan, "degraded_ratio": 0.0},
        {"pool_id": 5, "read_ratio": inf, "degraded_ratio": -inf, "active": true}
    ]
}
`

func writeReport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaults.ReportMember), []byte(testReport), 0o600))
	return dir
}

func TestSummarize(t *testing.T) {
	doc, err := loader.Parse([]byte(testReport), loader.WithTrim())
	require.NoError(t, err)

	s := summarize(doc, "report")
	assert.Equal(t, header.KindClusterSummary, s.Kind)
	assert.Equal(t, "0f2b4c1e-8a3d-4f6e-9b21-7c5d3e1a9f40", s.FSID)
	assert.Equal(t, "17.2.6", s.Version)
	assert.Equal(t, "HEALTH_WARN", s.Health)
	assert.Equal(t, map[string]string{"OSD_DOWN": "HEALTH_WARN", "PG_DEGRADED": "HEALTH_WARN"}, s.Checks)
	assert.Equal(t, 2, s.Pools)
	assert.Equal(t, 3, s.NonFinite)
}

func TestLoadReport(t *testing.T) {
	dir := writeReport(t)

	_, source, err := loadReport("", dir, loader.WithTrim())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, defaults.ReportMember), source)

	t.Setenv(defaults.CollectDirEnv, dir)
	_, source, err = loadReport("", "", loader.WithTrim())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, defaults.ReportMember), source)

	_, _, err = loadReport("", dir)
	assert.Error(t, err, "banner line requires trimming")

	_, _, err = loadReport(filepath.Join(dir, "missing.tar.gz"), "")
	assert.Error(t, err)
}

func TestShowCmd(t *testing.T) {
	dir := writeReport(t)

	var out bytes.Buffer
	root := newRootCmd()
	root.Writer = &out
	root.ErrWriter = io.Discard

	err := root.Run(context.Background(), []string{name, "show", "--dir", dir, "--format", "json"})
	require.NoError(t, err)

	var got ClusterSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, header.KindClusterSummary, got.Kind)
	assert.Equal(t, header.APIVersion, got.APIVersion)
	assert.Equal(t, "HEALTH_WARN", got.Health)
	assert.Equal(t, 3, got.NonFinite)
}

func TestShowCmd_InvalidFormat(t *testing.T) {
	dir := writeReport(t)

	root := newRootCmd()
	root.Writer = io.Discard
	root.ErrWriter = io.Discard

	err := root.Run(context.Background(), []string{name, "show", "--dir", dir, "--format", "xml"})
	assert.Error(t, err)
}

func writeArchive(t *testing.T, report string, status dataset.Status) string {
	t.Helper()
	ds := dataset.New()
	_, err := ds.Schedule("cluster_health")
	require.NoError(t, err)
	require.NoError(t, ds.Put("cluster_health", dataset.Item{Name: "report", Content: []byte(report), Status: status}))

	a := &archive.Archiver{Dir: t.TempDir(), ToolVersion: "v0.1.0"}
	res, err := a.Write(context.Background(), &collector.Run{Dataset: ds, Gate: gate.Fixed(17)}, archive.Info{FSID: "0f2b4c1e"})
	require.NoError(t, err)
	return res.Path
}

func showArchive(t *testing.T, args ...string) (ClusterSummary, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.Writer = &out
	root.ErrWriter = io.Discard

	err := root.Run(context.Background(), append([]string{name, "show", "--format", "json"}, args...))
	var got ClusterSummary
	if err == nil {
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	}
	return got, err
}

func TestShowCmd_Archive(t *testing.T) {
	path := writeArchive(t, testReport, dataset.StatusOK)

	got, err := showArchive(t, "--archive", path)
	require.NoError(t, err)
	assert.Equal(t, path, got.Source)
	assert.Equal(t, "verified", got.Checksum)
	assert.Equal(t, dataset.StatusOK, got.ReportStatus)
	assert.Equal(t, "HEALTH_WARN", got.Health)

	got, err = showArchive(t, "--archive", path, "--verify=false")
	require.NoError(t, err)
	assert.Equal(t, "skipped", got.Checksum)
}

func TestShowCmd_ArchiveWithoutSidecars(t *testing.T) {
	path := writeArchive(t, testReport, dataset.StatusOK)
	require.NoError(t, os.Remove(path+checksum.Extension))
	require.NoError(t, os.Remove(archive.ManifestPath(path)))

	got, err := showArchive(t, "--archive", path)
	require.NoError(t, err)
	assert.Equal(t, "missing", got.Checksum)
	assert.Empty(t, got.ReportStatus)
}

func TestShowCmd_CorruptArchive(t *testing.T) {
	path := writeArchive(t, testReport, dataset.StatusOK)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("trailing garbage")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = showArchive(t, "--archive", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformed), "got %v", err)
}

func TestInspectArchive_ReportNotCollected(t *testing.T) {
	path := writeArchive(t, "", dataset.StatusTimeout)

	_, err := inspectArchive(path, true, logging.Discard())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable), "got %v", err)
	assert.Contains(t, err.Error(), "timeout")
}
