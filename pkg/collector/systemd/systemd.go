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

package systemd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// DefaultPatterns match the units of every Ceph daemon on a host.
var DefaultPatterns = []string{"ceph*.service", "ceph*.target"}

// Conn is the part of the systemd D-Bus connection the Lister uses.
type Conn interface {
	ListUnitsByPatternsContext(ctx context.Context, states []string, patterns []string) ([]dbus.UnitStatus, error)
	Close()
}

// Lister reports the state of systemd units matching glob patterns.
type Lister struct {
	// Connect defaults to a system bus connection.
	Connect func(ctx context.Context) (Conn, error)
	Logger  *slog.Logger
}

// ListUnits returns the units matching patterns, sorted by name, in the
// column layout of "systemctl list-units". No matching unit yields empty
// output. Failing to reach systemd is ErrCodeUnavailable.
func (l *Lister) ListUnits(ctx context.Context, patterns []string) ([]byte, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	logging.OrDiscard(l.Logger).Debug("listing systemd units", "patterns", patterns)

	connect := l.Connect
	if connect == nil {
		connect = func(ctx context.Context) (Conn, error) {
			return dbus.NewSystemdConnectionContext(ctx)
		}
	}

	conn, err := connect(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to systemd", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsByPatternsContext(ctx, nil, patterns)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list units", err)
	}
	return Format(units), nil
}

// Format renders units as UNIT LOAD ACTIVE SUB DESCRIPTION columns.
func Format(units []dbus.UnitStatus) []byte {
	if len(units) == 0 {
		return nil
	}
	sorted := make([]dbus.UnitStatus, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tLOAD\tACTIVE\tSUB\tDESCRIPTION")
	for _, u := range sorted {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Name, u.LoadState, u.ActiveState, u.SubState, u.Description)
	}
	_ = w.Flush()
	return buf.Bytes()
}
