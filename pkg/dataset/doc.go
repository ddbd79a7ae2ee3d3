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

// Package dataset holds the in-memory result of one collection run.
//
// A Dataset is an ordered list of categories, each an ordered list of
// uniquely named items. Items are addressed in the archive by the flat entry
// name "<category>-<item>", which must be unique across the run:
//
//	ds := dataset.New()
//	if _, err := ds.Schedule("osd_info"); err != nil {
//	    return err
//	}
//	err := ds.Put("osd_info", dataset.Item{Name: "tree", Content: out})
//
// A Dataset is built once, handed to the archiver, and discarded. It is not
// safe for concurrent mutation; the collector serializes writes.
package dataset
