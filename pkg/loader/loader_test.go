// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_NonConformingNumbers(t *testing.T) {
	doc, err := Load("testdata/cluster_health-report")
	require.NoError(t, err)

	status, ok := doc.String("health", "status")
	require.True(t, ok)
	assert.Equal(t, "HEALTH_WARN", status)

	nan, ok := doc.Float64("pool_stats", "0", "read_ratio")
	require.True(t, ok)
	assert.True(t, math.IsNaN(nan))

	inf, ok := doc.Float64("pool_stats", "1", "read_ratio")
	require.True(t, ok)
	assert.True(t, math.IsInf(inf, 1))

	ninf, ok := doc.Float64("pool_stats", "1", "degraded_ratio")
	require.True(t, ok)
	assert.True(t, math.IsInf(ninf, -1))
}

func TestLoad_Interface(t *testing.T) {
	doc, err := Load("testdata/cluster_health-report")
	require.NoError(t, err)

	m, ok := doc.Interface().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "17.2.6", m["version"])
	assert.Nil(t, m["osd_stats"])
	assert.Contains(t, m, "osd_stats")

	pools, ok := m["pool_stats"].([]any)
	require.Len(t, pools, 2)
	second := pools[1].(map[string]any)
	assert.Equal(t, float64(5), second["pool_id"])
	assert.Equal(t, true, second["active"])

	assert.Equal(t, map[string]any{}, doc.Get("health", "checks"))
	assert.Nil(t, doc.Get("health", "missing"))
}

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(float64) bool
	}{
		{"inf", `{"a": inf, "b": 1}`, func(f float64) bool { return math.IsInf(f, 1) }},
		{"negative inf", `{"a": -inf, "b": 1}`, func(f float64) bool { return math.IsInf(f, -1) }},
		{"nan", `{"a": nan, "b": 1}`, math.IsNaN},
		{"array", `[1, inf, 2]`, func(f float64) bool { return f == 1 }},
		{"plain", `{"a": 0.25, "b": 1}`, func(f float64) bool { return f == 0.25 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			key := "a"
			if tt.name == "array" {
				key = "0"
			}
			f, ok := doc.Float64(key)
			require.True(t, ok)
			assert.True(t, tt.check(f), "got %v", f)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.ErrorCode
		msg  string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			code: errors.ErrCodeNotFound,
			msg:  "file not found",
		},
		{
			name: "empty file",
			path: func(t *testing.T) string { return writeFile(t, "") },
			code: errors.ErrCodeMalformed,
			msg:  "file is empty",
		},
		{
			name: "whitespace only",
			path: func(t *testing.T) string { return writeFile(t, "\n  \n") },
			code: errors.ErrCodeMalformed,
			msg:  "file is empty",
		},
		{
			name: "invalid json",
			path: func(t *testing.T) string { return writeFile(t, `{"health": `) },
			code: errors.ErrCodeMalformed,
		},
		{
			name: "directory",
			path: func(t *testing.T) string { return t.TempDir() },
			code: errors.ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err), "got %v", err)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoad_Trim(t *testing.T) {
	_, err := Load("testdata/osd_metadata_with_banner")
	require.Error(t, err, "surrounding log lines are rejected without trimming")

	doc, err := Load("testdata/osd_metadata_with_banner", WithTrim())
	require.NoError(t, err)
	host, ok := doc.String("1", "hostname")
	require.True(t, ok)
	assert.Equal(t, "ceph-2", host)
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		lookAhead int
		want      string
		ok        bool
	}{
		{"clean", "{\"a\": 1}\n", 10, "{\"a\": 1}\n", true},
		{"leading and trailing noise", "warn\n{\n\"a\": 1\n}\ndone\n", 10, "{\n\"a\": 1\n}\n", true},
		{"no trailing newline", "warn\n[1]", 10, "[1]", true},
		{"only noise", "warn\nmore\n", 10, "", false},
		{"look-ahead exhausted", "a\nb\nc\n{\"a\": 1}\n", 2, "c\n{\"a\": 1}\n", true},
		{"empty", "", 10, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Trim(tt.input, tt.lookAhead)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithExitOnError(t *testing.T) {
	code := -1
	exitStub := func(o *options) {
		o.exit = func(c int) { code = c }
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing"), WithExitOnError(), exitStub)
	require.Error(t, err)
	assert.Equal(t, 1, code)

	code = -1
	_, err = Load("testdata/cluster_health-report", WithExitOnError(), exitStub)
	require.NoError(t, err)
	assert.Equal(t, -1, code)
}

func TestReportPath(t *testing.T) {
	t.Setenv(defaults.CollectDirEnv, "/var/tmp/ceph-collect_20260112_103005")

	path, err := ReportPath("")
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/ceph-collect_20260112_103005/cluster_health-report", path)

	path, err = ReportPath("testdata")
	require.NoError(t, err)
	assert.Equal(t, "testdata/cluster_health-report", path)

	doc, err := LoadReport("testdata")
	require.NoError(t, err)
	assert.Equal(t, "testdata/cluster_health-report", doc.Path)

	t.Setenv(defaults.CollectDirEnv, "")
	_, err = ReportPath("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
