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

package enumerate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// Placeholder is substituted with each identifier in Spec.Command and Spec.Key.
const Placeholder = "{id}"

// safeID matches identifiers that can be spliced into a command line
// unquoted. Crash ids (timestamps plus uuids) and pg ids both qualify.
var safeID = regexp.MustCompile(`^[A-Za-z0-9._:+-]+$`)

// RowSpec selects the rows of a tabular listing that name a sub-resource.
// The identifier is always the first whitespace-delimited token.
type RowSpec struct {
	// SkipMarker is a header token that is never an identifier ("ID").
	SkipMarker string `yaml:"skip_marker,omitempty" json:"skipMarker,omitempty"`
	// LeadingDigit keeps only identifiers starting with a digit.
	LeadingDigit bool `yaml:"leading_digit,omitempty" json:"leadingDigit,omitempty"`
	// MinTokens drops rows with fewer tokens. Zero means one.
	MinTokens int `yaml:"min_tokens,omitempty" json:"minTokens,omitempty"`
}

// Spec describes one fan-out: which rows to read and what to run per row.
type Spec struct {
	Name    string  `yaml:"name" json:"name"`
	Rows    RowSpec `yaml:"rows" json:"rows"`
	Command string  `yaml:"command" json:"command"`
	Key     string  `yaml:"key" json:"key"`
}

// Validate checks that the templates reference the identifier.
func (s Spec) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("enumerator has no name")
	case !strings.Contains(s.Command, Placeholder):
		return fmt.Errorf("enumerator %s: command %q does not contain %s", s.Name, s.Command, Placeholder)
	case !strings.Contains(s.Key, Placeholder):
		return fmt.Errorf("enumerator %s: key %q does not contain %s", s.Name, s.Key, Placeholder)
	case s.Rows.MinTokens < 0:
		return fmt.Errorf("enumerator %s: negative min_tokens", s.Name)
	}
	return nil
}

// ParseRows extracts identifiers from listing in row order. Empty lines, the
// header marker, short rows, rows failing the leading-digit check and
// repeated identifiers are dropped. Identifiers that are not safe shell words
// are returned separately so callers can log them.
func ParseRows(listing []byte, spec RowSpec) (ids, unsafe []string) {
	minTokens := max(spec.MinTokens, 1)
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(bytes.NewReader(listing))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < minTokens {
			continue
		}
		id := fields[0]
		if spec.SkipMarker != "" && id == spec.SkipMarker {
			continue
		}
		if spec.LeadingDigit && (id[0] < '0' || id[0] > '9') {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !safeID.MatchString(id) {
			unsafe = append(unsafe, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unsafe
}

// Fetch issues one sub-query.
type Fetch func(ctx context.Context, command string) (executor.Result, error)

// Enumerator fans out one sub-query per listing row.
type Enumerator struct {
	Logger *slog.Logger
}

// Expand parses listing with spec.Rows and fetches spec.Command for every
// identifier, returning one item per identifier named by spec.Key. A failing
// sub-query yields an empty item with a soft status and does not stop the
// others. Only a fatal fetch error is returned.
func (e *Enumerator) Expand(ctx context.Context, listing []byte, spec Spec, fetch Fetch) ([]dataset.Item, error) {
	log := logging.OrDiscard(e.Logger).With("enumerator", spec.Name)

	ids, unsafe := ParseRows(listing, spec.Rows)
	for _, id := range unsafe {
		log.Warn("skipping identifier that is not a safe shell word", "id", id)
	}
	log.Debug("expanding listing", "count", len(ids))

	items := make([]dataset.Item, 0, len(ids))
	for _, id := range ids {
		command := strings.ReplaceAll(spec.Command, Placeholder, id)
		res, err := fetch(ctx, command)
		if err != nil {
			return items, err
		}
		if res.Status.Soft() {
			log.Info("sub-query failed", "id", id, "status", res.Status)
		}
		items = append(items, dataset.Item{
			Name:    strings.ReplaceAll(spec.Key, Placeholder, id),
			Content: res.Content,
			Status:  res.Status,
			Command: command,
		})
	}
	return items, nil
}
