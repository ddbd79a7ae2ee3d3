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

// Package enumerate turns tabular ceph listings into per-row sub-queries.
//
// Some diagnostics only exist per sub-resource: every crash report listed by
// `ceph crash ls` has its own `ceph crash info <id>`, and every stuck
// placement group from `ceph pg dump_stuck inactive` has its own
// `ceph pg <id> query`. The listings are plain text tables, so rows are
// parsed by token: the first token is the identifier, header and short rows
// are dropped.
//
//	crash := enumerate.Spec{
//	    Name:    "crash",
//	    Rows:    enumerate.RowSpec{SkipMarker: "ID", MinTokens: 1},
//	    Command: "crash info {id}",
//	    Key:     "crash_info_{id}",
//	}
//	items, err := (&enumerate.Enumerator{Logger: logger}).Expand(ctx, listing, crash, fetch)
package enumerate
