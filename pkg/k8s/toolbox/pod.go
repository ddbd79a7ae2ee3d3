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
	"context"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

// FindPod returns the toolbox pod matching selector in namespace. Among
// running pods whose containers are all ready, the first by name wins so
// repeated runs pick the same pod.
func FindPod(ctx context.Context, client kubernetes.Interface, namespace, selector string) (*corev1.Pod, error) {
	pods, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to list toolbox pods", err,
			map[string]any{"namespace": namespace, "selector": selector})
	}

	var ready []corev1.Pod
	for _, p := range pods.Items {
		if isReady(&p) {
			ready = append(ready, p)
		}
	}
	if len(ready) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound, "no ready toolbox pod found",
			map[string]any{"namespace": namespace, "selector": selector, "candidates": len(pods.Items)})
	}

	slices.SortFunc(ready, func(a, b corev1.Pod) int { return strings.Compare(a.Name, b.Name) })
	return &ready[0], nil
}

func isReady(p *corev1.Pod) bool {
	if p.Status.Phase != corev1.PodRunning || p.DeletionTimestamp != nil {
		return false
	}
	if len(p.Status.ContainerStatuses) == 0 {
		return false
	}
	for _, cs := range p.Status.ContainerStatuses {
		if !cs.Ready {
			return false
		}
	}
	return true
}
