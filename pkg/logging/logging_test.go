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

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("logfmt"))
}

func TestNew_JSONCarriesModuleAndVersion(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer

	logger := New(Options{Name: "ceph-collect", Version: "v1.2.3", Level: "info", Output: &buf})
	logger.Info("collecting", "category", "osd_info")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "collecting", rec["msg"])
	assert.Equal(t, "ceph-collect", rec["module"])
	assert.Equal(t, "v1.2.3", rec["version"])
	assert.Equal(t, "osd_info", rec["category"])
}

func TestNew_EnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	var buf bytes.Buffer

	logger := New(Options{Level: "error", Output: &buf})
	logger.Debug("visible")

	assert.Contains(t, buf.String(), "visible")
}

func TestNew_TextFormatWithoutTerminalHasNoColor(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer

	logger := New(Options{Level: "info", Format: FormatText, Output: &buf})
	logger.Info("plain", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "plain")
	assert.Contains(t, out, "k=v")
	assert.NotContains(t, out, "\x1b[")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
