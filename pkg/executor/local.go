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
	"bytes"
	"context"
	stderrors "errors"
	osexec "os/exec"
	"time"

	utilexec "k8s.io/utils/exec"

	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
)

// LocalRunner runs commands on this host through /bin/sh.
type LocalRunner struct {
	// Exec replaces the host process runner when set. The process-group
	// kill on timeout applies only when it is nil.
	Exec utilexec.Interface
	// Shell defaults to "sh".
	Shell string
	// WaitDelay bounds waiting for inherited output pipes once the command
	// was killed. Defaults to defaults.ProcessWaitDelay.
	WaitDelay time.Duration
}

// NewLocalRunner returns a LocalRunner backed by the host's processes.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{Shell: "sh"}
}

// Run implements Runner. The shell and every process it starts share one
// process group, which is killed when ctx is done.
func (r *LocalRunner) Run(ctx context.Context, command string) ([]byte, []byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	if r.Exec != nil {
		return r.runExec(ctx, shell, command)
	}

	var stdout, stderr bytes.Buffer
	cmd := osexec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaults.ProcessWaitDelay
	}
	killProcessGroup(cmd)

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), wrapExecError(err)
}

func (r *LocalRunner) runExec(ctx context.Context, shell, command string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := r.Exec.CommandContext(ctx, shell, "-c", command)
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// wrapExecError maps os/exec errors onto the k8s.io/utils/exec types the
// rest of the package classifies.
func wrapExecError(err error) error {
	if err == nil || stderrors.Is(err, osexec.ErrWaitDelay) {
		// ErrWaitDelay: the command succeeded but a child still held its output.
		return nil
	}
	var ee *osexec.ExitError
	if stderrors.As(err, &ee) {
		return &utilexec.ExitErrorWrapper{ExitError: ee}
	}
	if stderrors.Is(err, osexec.ErrNotFound) {
		return utilexec.ErrExecutableNotFound
	}
	return err
}
