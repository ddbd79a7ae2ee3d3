/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
)

func hasName(flags []cli.Flag, name string) bool {
	for _, f := range flags {
		if slices.Contains(f.Names(), name) {
			return true
		}
	}
	return false
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	if root.Name != name {
		t.Errorf("Name = %q, want %q", root.Name, name)
	}
	if root.DefaultCommand != "collect" {
		t.Errorf("DefaultCommand = %q, want collect", root.DefaultCommand)
	}

	for _, want := range []string{"collect", "show", "queries"} {
		if root.Command(want) == nil {
			t.Errorf("missing subcommand %q", want)
		}
	}
	for _, want := range []string{"log-level", "log-format"} {
		if !hasName(root.Flags, want) {
			t.Errorf("missing global flag %q", want)
		}
	}
}

func TestCollectCmd_Flags(t *testing.T) {
	cmd := collectCmd()

	want := []string{
		"ceph-config-file", "results-dir", "timeout", "query-inactive-pg",
		"uncensored", "verbose", "crash-info", "parallel", "qps", "queries",
		"ceph-binary", "metrics-file", "push", "plain-http", "insecure-tls",
		"rook", "rook-namespace", "rook-selector", "kubeconfig",
	}
	for _, n := range want {
		if !hasName(cmd.Flags, n) {
			t.Errorf("collect is missing flag %q", n)
		}
	}
}

func runWithFlags(t *testing.T, flags []cli.Flag, args []string, fn func(*cli.Command)) {
	t.Helper()
	cmd := &cli.Command{
		Flags: flags,
		Action: func(_ context.Context, c *cli.Command) error {
			fn(c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("failed to run command: %v", err)
	}
}

func TestCollectOptionsFromCmd(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantMissing []string
		validate    func(*testing.T, collectOptions)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, o collectOptions) {
				if o.ConfigPath != defaults.CephConfigPath {
					t.Errorf("ConfigPath = %q", o.ConfigPath)
				}
				if o.ResultsDir != os.TempDir() {
					t.Errorf("ResultsDir = %q", o.ResultsDir)
				}
				if o.Timeout != 10*time.Second {
					t.Errorf("Timeout = %v", o.Timeout)
				}
				if !o.CrashInfo {
					t.Error("CrashInfo should default to true")
				}
				if o.QueryInactivePG || o.Uncensored || o.Rook {
					t.Error("opt-in flags should default to false")
				}
				if o.Parallel != 1 {
					t.Errorf("Parallel = %d", o.Parallel)
				}
			},
		},
		{
			name: "explicit values",
			args: []string{"--ceph-config-file", "/tmp/c.conf", "--timeout", "3", "--uncensored", "--crash-info=false", "--parallel", "4", "--qps", "2.5"},
			validate: func(t *testing.T, o collectOptions) {
				if o.ConfigPath != "/tmp/c.conf" || o.Timeout != 3*time.Second {
					t.Errorf("got %+v", o)
				}
				if !o.Uncensored || o.CrashInfo {
					t.Errorf("Uncensored = %v, CrashInfo = %v", o.Uncensored, o.CrashInfo)
				}
				if o.Parallel != 4 || o.QPS != 2.5 {
					t.Errorf("Parallel = %d, QPS = %v", o.Parallel, o.QPS)
				}
			},
		},
		{
			name:        "empty required values fall back",
			args:        []string{"--ceph-config-file", "", "--results-dir", " ", "--timeout", "0"},
			wantMissing: []string{"ceph-config-file", "results-dir", "timeout"},
			validate: func(t *testing.T, o collectOptions) {
				if o.ConfigPath != defaults.CephConfigPath || o.ResultsDir != os.TempDir() || o.Timeout != 10*time.Second {
					t.Errorf("defaults not applied: %+v", o)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runWithFlags(t, collectCmd().Flags, tt.args, func(c *cli.Command) {
				opts, missing := collectOptionsFromCmd(c)
				if !slices.Equal(missing, tt.wantMissing) {
					t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
				}
				tt.validate(t, opts)
			})
		})
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf, collectCmd())

	out := buf.String()
	if !strings.HasPrefix(out, "usage: ") {
		t.Errorf("usage line missing: %q", out)
	}
	for _, want := range []string{"--ceph-config-file", "--results-dir", "--timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage does not mention %s", want)
		}
	}
}
