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

package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

type runnerFunc func(ctx context.Context, command string) ([]byte, []byte, error)

func (f runnerFunc) Run(ctx context.Context, command string) ([]byte, []byte, error) {
	return f(ctx, command)
}

type fakeControlPlane struct {
	replies map[string][]byte
	errs    map[string]error
	block   bool
	issued  []string
}

func (f *fakeControlPlane) Issue(ctx context.Context, prefix string, _ time.Duration) ([]byte, error) {
	f.issued = append(f.issued, prefix)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := f.errs[prefix]; ok {
		return nil, err
	}
	return f.replies[prefix], nil
}

func (f *fakeControlPlane) CommandLine(prefix string, timeout time.Duration) string {
	return "ceph --connect-timeout=" + timeout.String() + " " + prefix
}

func fakeRunner(actions ...testingexec.FakeAction) (*LocalRunner, *testingexec.FakeExec) {
	fexec := &testingexec.FakeExec{}
	for _, a := range actions {
		fcmd := &testingexec.FakeCmd{RunScript: []testingexec.FakeAction{a}}
		fexec.CommandScript = append(fexec.CommandScript, func(cmd string, args ...string) utilexec.Cmd {
			return testingexec.InitFakeCmd(fcmd, cmd, args...)
		})
	}
	return &LocalRunner{Exec: fexec}, fexec
}

func TestLocalRunner_Run(t *testing.T) {
	r, fexec := fakeRunner(func() ([]byte, []byte, error) {
		return []byte("Linux node-1 6.1.0\n"), []byte("warn\n"), nil
	})

	stdout, stderr, err := r.Run(context.Background(), "uname -a")
	require.NoError(t, err)
	assert.Equal(t, "Linux node-1 6.1.0\n", string(stdout))
	assert.Equal(t, "warn\n", string(stderr))
	assert.Equal(t, 1, fexec.CommandCalls)
}

func TestRunShell(t *testing.T) {
	tests := []struct {
		name       string
		action     testingexec.FakeAction
		wantStatus dataset.Status
		wantOut    string
		wantFatal  bool
	}{
		{
			name:       "trailing whitespace trimmed",
			action:     func() ([]byte, []byte, error) { return []byte("  Linux node-1\n\n\t"), nil, nil },
			wantStatus: dataset.StatusOK,
			wantOut:    "  Linux node-1",
		},
		{
			name:       "empty output is soft",
			action:     func() ([]byte, []byte, error) { return []byte("\n"), nil, nil },
			wantStatus: dataset.StatusEmpty,
		},
		{
			name: "non-zero exit keeps output",
			action: func() ([]byte, []byte, error) {
				return []byte("partial\n"), []byte("boom"), testingexec.FakeExitError{Status: 1}
			},
			wantStatus: dataset.StatusOK,
			wantOut:    "partial",
		},
		{
			name: "non-zero exit without output",
			action: func() ([]byte, []byte, error) {
				return nil, []byte("dpkg: no packages found"), testingexec.FakeExitError{Status: 1}
			},
			wantStatus: dataset.StatusFailed,
		},
		{
			name:      "shell missing is fatal",
			action:    func() ([]byte, []byte, error) { return nil, nil, utilexec.ErrExecutableNotFound },
			wantFatal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := fakeRunner(tt.action)
			ex := &Executor{Runner: r}

			res, err := ex.RunShell(context.Background(), "cmd")
			if tt.wantFatal {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantOut, string(res.Content))
		})
	}
}

func TestRunShell_TimeoutIsSoft(t *testing.T) {
	ex := &Executor{
		ShellTimeout: 20 * time.Millisecond,
		Runner: runnerFunc(func(ctx context.Context, _ string) ([]byte, []byte, error) {
			<-ctx.Done()
			return nil, nil, ctx.Err()
		}),
	}

	res, err := ex.RunShell(context.Background(), "sleep 60")
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusTimeout, res.Status)
	assert.Empty(t, res.Content)
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeTimeout))
}

func TestRunShell_CancelledRunIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &Executor{Runner: runnerFunc(func(ctx context.Context, _ string) ([]byte, []byte, error) {
		return nil, nil, ctx.Err()
	})}

	_, err := ex.RunShell(ctx, "uname -a")
	require.Error(t, err)
}

func TestRunShell_ExpiredDeadlineIsSoft(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ex := &Executor{
		ShellTimeout: time.Minute,
		Runner: runnerFunc(func(ctx context.Context, _ string) ([]byte, []byte, error) {
			<-ctx.Done()
			return nil, nil, ctx.Err()
		}),
	}

	res, err := ex.RunShell(ctx, "ceph pg 2.1f query")
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusTimeout, res.Status)
	assert.False(t, Cancelled(ctx))
}

func TestRunCephShell_UsesControlPlaneCommandLine(t *testing.T) {
	var got string
	ex := &Executor{
		Timeout:      7 * time.Second,
		ControlPlane: &fakeControlPlane{},
		Runner: runnerFunc(func(_ context.Context, command string) ([]byte, []byte, error) {
			got = command
			return []byte("HEALTH_OK\n"), nil, nil
		}),
	}

	res, err := ex.RunCephShell(context.Background(), "health detail")
	require.NoError(t, err)
	assert.Equal(t, "ceph --connect-timeout=7s health detail", got)
	assert.Equal(t, "HEALTH_OK", string(res.Content))
}

func TestRunControlPlane(t *testing.T) {
	cp := &fakeControlPlane{
		replies: map[string][]byte{
			"osd tree":   []byte("ID  CLASS  WEIGHT\n-1  0.1  root default\n\n"),
			"osd stat":   []byte("  \n"),
			"mon getmap": {0x01, 0x00, 0x0a, 0x20, 0x0a},
		},
		errs: map[string]error{
			"device ls": errors.New(errors.ErrCodeUnsupported, "command not known"),
			"pg dump":   errors.New(errors.ErrCodeTimeout, "timed out"),
			"mgr dump":  errors.New(errors.ErrCodeInternal, "connection reset"),
		},
	}
	ex := &Executor{ControlPlane: cp}

	tests := []struct {
		prefix     string
		raw        bool
		wantStatus dataset.Status
		wantOut    []byte
	}{
		{"osd tree", false, dataset.StatusOK, []byte("ID  CLASS  WEIGHT\n-1  0.1  root default")},
		{"osd stat", false, dataset.StatusEmpty, []byte{}},
		{"mon getmap", true, dataset.StatusOK, []byte{0x01, 0x00, 0x0a, 0x20, 0x0a}},
		{"device ls", false, dataset.StatusUnsupported, nil},
		{"pg dump", false, dataset.StatusTimeout, nil},
		{"mgr dump", false, dataset.StatusFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			res := ex.RunControlPlane(context.Background(), tt.prefix, tt.raw)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantStatus == dataset.StatusOK {
				assert.Equal(t, tt.wantOut, res.Content)
			} else {
				assert.Empty(t, res.Content)
			}
		})
	}
}

func TestRunControlPlane_DeadlineIsTimeout(t *testing.T) {
	ex := &Executor{Timeout: 20 * time.Millisecond, ControlPlane: &fakeControlPlane{block: true}}

	res := ex.RunControlPlane(context.Background(), "report", false)
	assert.Equal(t, dataset.StatusTimeout, res.Status)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-1))

	l := NewLimiter(0.5)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.Equal(t, 4, NewLimiter(4).Burst())
}

func TestExitCode(t *testing.T) {
	code, ok := ExitCode(testingexec.FakeExitError{Status: 22})
	assert.True(t, ok)
	assert.Equal(t, 22, code)

	_, ok = ExitCode(utilexec.ErrExecutableNotFound)
	assert.False(t, ok)
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"":                    "''",
		"/etc/ceph/ceph.conf": "/etc/ceph/ceph.conf",
		"/tmp/my ceph.conf":   "'/tmp/my ceph.conf'",
		"it's":                `'it'\''s'`,
		"$(reboot)":           "'$(reboot)'",
		"client.admin@ceph-1": "client.admin@ceph-1",
	}
	for in, want := range tests {
		assert.Equal(t, want, Quote(in), in)
	}
}
