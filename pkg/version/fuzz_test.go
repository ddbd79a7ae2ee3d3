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

package version

import (
	"testing"
)

func valid(v Version) bool {
	return v.Major >= 0 && v.Minor >= 0 && v.Patch >= 0 && v.Precision >= 1 && v.Precision <= 3
}

// FuzzParseVersion performs fuzz testing on ParseVersion to find edge cases
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"17", "v17", "17.2", "17.2.6", "v17.2.6", "18.0.0-1234-gabcdef0",
		"0", "0.0.0", "", ".", "..", "17.", ".2", "17..2", "v", "-1",
		"17.-2", "a.b.c", "17.2.6.1", " 17.2.6", "17.2.6 ", "Development",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}

		if !valid(v) {
			t.Errorf("ParseVersion(%q) returned invalid version: %+v", input, v)
		}

		// Round trip through String keeps the numeric components.
		v2, err := ParseVersion(v.String())
		if err != nil {
			t.Errorf("re-parsing %q (from %q) failed: %v", v.String(), input, err)
		} else if v.Major != v2.Major || v.Minor != v2.Minor || v.Patch != v2.Patch || v.Precision != v2.Precision {
			t.Errorf("round-trip mismatch for %q: %+v != %+v", input, v, v2)
		}

		if c := v.Compare(v); c != 0 {
			t.Errorf("Compare(%q, itself) = %d", input, c)
		}
	})
}

// FuzzParseBanner checks that arbitrary banners never panic and that any
// parsed version is valid.
func FuzzParseBanner(f *testing.F) {
	f.Add("ceph version 17.2.6 (d7ff0d10654d2280e08f1ab989c7cdf3064446a5) quincy (stable)")
	f.Add("ceph version 12.2.13 (584a20eb0237c657dc0567da126be145106aa47e) luminous (stable)")
	f.Add("ceph version Development (no_version) reef (dev)")
	f.Add("ceph")
	f.Add("")

	f.Fuzz(func(t *testing.T, banner string) {
		v, err := ParseBanner(banner)
		if err == nil && !valid(v) {
			t.Errorf("ParseBanner(%q) returned invalid version: %+v", banner, v)
		}
	})
}
