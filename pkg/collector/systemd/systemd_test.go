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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

type fakeConn struct {
	units    []dbus.UnitStatus
	err      error
	patterns []string
	closed   bool
}

func (f *fakeConn) ListUnitsByPatternsContext(_ context.Context, _ []string, patterns []string) ([]dbus.UnitStatus, error) {
	f.patterns = patterns
	return f.units, f.err
}

func (f *fakeConn) Close() {
	f.closed = true
}

func listerFor(conn *fakeConn) *Lister {
	return &Lister{Connect: func(context.Context) (Conn, error) { return conn, nil }}
}

func TestListUnits(t *testing.T) {
	conn := &fakeConn{units: []dbus.UnitStatus{
		{Name: "ceph-osd@0.service", LoadState: "loaded", ActiveState: "failed", SubState: "failed", Description: "Ceph object storage daemon osd.0"},
		{Name: "ceph-mon@a.service", LoadState: "loaded", ActiveState: "active", SubState: "running", Description: "Ceph cluster monitor daemon"},
	}}

	out, err := listerFor(conn).ListUnits(context.Background(), []string{"ceph*.service"})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if !conn.closed {
		t.Error("connection was not closed")
	}
	if len(conn.patterns) != 1 || conn.patterns[0] != "ceph*.service" {
		t.Errorf("patterns = %v", conn.patterns)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "UNIT") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ceph-mon@a.service") {
		t.Errorf("units not sorted: %q", lines[1])
	}
	if !strings.Contains(lines[2], "failed") {
		t.Errorf("osd line = %q", lines[2])
	}
}

func TestListUnits_DefaultPatterns(t *testing.T) {
	conn := &fakeConn{}
	out, err := listerFor(conn).ListUnits(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no output without units, got %q", out)
	}
	if strings.Join(conn.patterns, " ") != strings.Join(DefaultPatterns, " ") {
		t.Errorf("patterns = %v, want %v", conn.patterns, DefaultPatterns)
	}
}

func TestListUnits_Errors(t *testing.T) {
	l := &Lister{Connect: func(context.Context) (Conn, error) {
		return nil, fmt.Errorf("dial unix /run/dbus/system_bus_socket: no such file or directory")
	}}
	if _, err := l.ListUnits(context.Background(), nil); !errors.IsCode(err, errors.ErrCodeUnavailable) {
		t.Errorf("connect failure: got %v, want UNAVAILABLE", err)
	}

	conn := &fakeConn{err: fmt.Errorf("access denied")}
	if _, err := listerFor(conn).ListUnits(context.Background(), nil); !errors.IsCode(err, errors.ErrCodeInternal) {
		t.Errorf("list failure: got %v, want INTERNAL", err)
	}
	if !conn.closed {
		t.Error("connection was not closed after a list failure")
	}
}
