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

// Package serializer writes documents such as the collection manifest, the
// cluster summary and the effective query table.
//
// # Formats
//
//   - json: indented JSON
//   - yaml: two-space YAML
//   - table: FIELD/VALUE rows with flattened keys (Pools.[0].Name)
//
// # Targets
//
// NewFileWriterOrStdout picks the target from a path:
//
//	""                      stdout
//	"summary.yaml"          a file, closed with Close
//	"cm://rook-ceph/name"   a ConfigMap, created or updated with server-side apply
//
// Usage:
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path, kubeconfig)
//	if err != nil {
//	    return err
//	}
//	if c, ok := w.(serializer.Closer); ok {
//	    defer c.Close()
//	}
//	return w.Serialize(ctx, summary)
package serializer
