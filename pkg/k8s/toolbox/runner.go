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

package toolbox

import (
	"bytes"
	"context"
	"net/url"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
)

// ExecutorFactory creates the stream executor for one exec request.
type ExecutorFactory func(config *rest.Config, method string, u *url.URL) (remotecommand.Executor, error)

// PodRunner runs shell commands inside a Rook toolbox pod through the pods/exec
// subresource. It satisfies executor.Runner.
type PodRunner struct {
	// RESTClient is the CoreV1 REST client used to build exec requests.
	RESTClient rest.Interface
	Config     *rest.Config

	Namespace string
	Pod       string
	// Container is optional when the pod has a single container.
	Container string

	// NewExecutor defaults to remotecommand.NewSPDYExecutor.
	NewExecutor ExecutorFactory
}

// Run implements executor.Runner. A non-zero exit inside the pod is returned
// as client-go's CodeExitError, which carries the exit status. Failures to
// reach the pod are returned unchanged and abort collection.
func (r *PodRunner) Run(ctx context.Context, command string) ([]byte, []byte, error) {
	req := r.RESTClient.Post().
		Resource("pods").
		Namespace(r.Namespace).
		Name(r.Pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: r.Container,
			Command:   []string{"sh", "-c", command},
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	factory := r.NewExecutor
	if factory == nil {
		factory = remotecommand.NewSPDYExecutor
	}
	exec, err := factory(r.Config, "POST", req.URL())
	if err != nil {
		return nil, nil, err
	}

	var stdout, stderr bytes.Buffer
	err = exec.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return stdout.Bytes(), stderr.Bytes(), err
}
