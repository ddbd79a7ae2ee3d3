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

// Package gate decides which version-dependent queries run against a cluster.
//
// The cluster version is detected once per run from the `ceph -v` banner and
// never re-queried. Queries declare a minimum major version in the query
// table; for example the aggregated `versions` listing and `config dump`
// need mimic (13) or newer:
//
//	g, err := gate.Detect(ctx, ex, "ceph -v", logger)
//	if err != nil {
//	    return err
//	}
//	if g.SupportsMinVersion(13) {
//	    // collect versions and config dump
//	}
package gate
