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

package gate

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
	"github.com/NVIDIA/ceph-diagnostics/pkg/version"
)

// Unknown is the cluster version recorded when the banner cannot be parsed.
const Unknown = 0

// ShellRunner is the executor subset the gate needs.
type ShellRunner interface {
	RunShell(ctx context.Context, command string) (executor.Result, error)
}

// Gate holds the cluster major version detected once per run.
type Gate struct {
	// Major is the cluster's major version, or Unknown.
	Major int
	// Version is the full parsed version, zero when Unknown.
	Version version.Version
	// Banner is the raw version query output.
	Banner []byte
	// Status of the version query itself.
	Status dataset.Status
}

// Fixed returns a Gate pinned to major, for callers that already know it.
func Fixed(major int) *Gate {
	return &Gate{Major: major, Version: version.Version{Major: major, Precision: 1}, Status: dataset.StatusOK}
}

// Detect runs command (normally "ceph -v") once and parses the major version
// from the third token of its output. An unparsable banner does not abort
// the run: the gate is left Unknown and every version-gated query is skipped.
// Only a fatal executor error is returned.
func Detect(ctx context.Context, ex ShellRunner, command string, logger *slog.Logger) (*Gate, error) {
	log := logging.OrDiscard(logger)

	res, err := ex.RunShell(ctx, command)
	if err != nil {
		return nil, err
	}

	g := &Gate{Banner: res.Content, Status: res.Status}
	v, perr := version.ParseBanner(string(res.Content))
	if perr != nil {
		log.Warn("cannot determine cluster version, version-gated queries will be skipped",
			"command", command, "output", string(res.Content), "error", perr)
		return g, nil
	}

	g.Major = v.Major
	g.Version = v
	log.Info("detected cluster version", "version", v.String(), "release", version.ReleaseName(v.Major))
	return g, nil
}

// Known reports whether a version was detected.
func (g *Gate) Known() bool {
	return g != nil && g.Major != Unknown
}

// SupportsMinVersion reports whether the cluster is at least major version n.
// A non-positive n is always supported; with an Unknown version nothing
// else is.
func (g *Gate) SupportsMinVersion(n int) bool {
	if n <= 0 {
		return true
	}
	if !g.Known() {
		return false
	}
	return g.Version.Compare(version.NewVersion(n, 0, 0)) >= 0
}
