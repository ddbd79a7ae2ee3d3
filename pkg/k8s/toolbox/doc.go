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

// Package toolbox runs collection commands inside a Rook Ceph toolbox pod.
//
// On Kubernetes clusters managed by Rook, the ceph CLI and its configuration
// live in the rook-ceph-tools deployment rather than on the host. FindPod
// locates a ready toolbox pod by label selector, and PodRunner executes
// "sh -c <command>" in it via the pods/exec subresource:
//
//	clientset, config, err := toolbox.BuildKubeClient(kubeconfig)
//	if err != nil {
//	    return err
//	}
//	pod, err := toolbox.FindPod(ctx, clientset, "rook-ceph", "app=rook-ceph-tools")
//	if err != nil {
//	    return err
//	}
//	runner := &toolbox.PodRunner{
//	    RESTClient: clientset.CoreV1().RESTClient(),
//	    Config:     config,
//	    Namespace:  pod.Namespace,
//	    Pod:        pod.Name,
//	}
//
// The runner is a drop-in replacement for executor.LocalRunner.
package toolbox
