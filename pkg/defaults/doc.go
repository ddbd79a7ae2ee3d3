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

// Package defaults provides centralized configuration constants for the collector.
//
// This package defines timeout values, well-known paths, and other defaults used
// across the codebase. Centralizing these values ensures consistency and makes
// tuning easier.
//
// # Timeout Categories
//
//   - Command timeouts: per control-plane query and per shell invocation
//   - Run timeouts: the whole collection, publishing the archive
//   - Kubernetes timeouts: locating the Rook toolbox pod
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CommandTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Control-plane queries: 10s default, overridden by --timeout
//   - Shell invocations: 2m, they may wrap slow tools such as radosgw-admin
//   - Whole run: 30m
package defaults
