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

package collector

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/enumerate"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/redact"
)

//go:embed queries.yaml
var defaultTable []byte

// Kind selects how a query is executed.
type Kind string

const (
	KindShell   Kind = "shell"
	KindCeph    Kind = "ceph"
	KindMon     Kind = "mon"
	KindFile    Kind = "file"
	KindFSID    Kind = "fsid"
	KindVersion Kind = "version"
	KindUnits   Kind = "units"
)

// needsCommand reports whether the kind executes Query.Command.
func (k Kind) needsCommand() bool {
	switch k {
	case KindShell, KindCeph, KindMon, KindFile, KindUnits:
		return true
	default:
		return false
	}
}

// Query is one named diagnostic within a category.
type Query struct {
	Name    string `yaml:"name" json:"name"`
	Kind    Kind   `yaml:"kind" json:"kind"`
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
	// MinVersion is the lowest cluster major version running this query.
	MinVersion int `yaml:"min_version,omitempty" json:"minVersion,omitempty"`
	// Redact lists redaction rules applied to the output.
	Redact []string `yaml:"redact,omitempty" json:"redact,omitempty"`
	// Enumerate names an enumerator fanning out over this query's output.
	Enumerate string `yaml:"enumerate,omitempty" json:"enumerate,omitempty"`
	// When names a precondition; the query is skipped when it does not hold.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
	// Binary keeps the payload byte-exact (no trimming, no redaction).
	Binary bool `yaml:"binary,omitempty" json:"binary,omitempty"`
}

// CategorySpec is an ordered group of queries.
type CategorySpec struct {
	Name string `yaml:"name" json:"name"`
	// Requires names a precondition; when it fails the category is empty.
	Requires string  `yaml:"requires,omitempty" json:"requires,omitempty"`
	Queries  []Query `yaml:"queries" json:"queries"`
}

// EnumeratorSpec is an enumerate.Spec with an optional precondition.
type EnumeratorSpec struct {
	enumerate.Spec `yaml:",inline"`
	When           string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Table is the declarative description of one collection run.
type Table struct {
	// VersionQuery is the shell command whose banner drives feature gating.
	VersionQuery string           `yaml:"version_query" json:"versionQuery"`
	Enumerators  []EnumeratorSpec `yaml:"enumerators,omitempty" json:"enumerators,omitempty"`
	Categories   []CategorySpec   `yaml:"categories" json:"categories"`
}

// DefaultTable returns the built-in query table.
func DefaultTable() (*Table, error) {
	return ParseTable(bytes.NewReader(defaultTable))
}

// LoadTable reads a query table from path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("query table %s not found", path), err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to open query table %s", path), err)
	}
	defer f.Close()
	return ParseTable(f)
}

// ParseTable decodes and validates a YAML query table. Unknown fields are
// rejected so typos do not silently disable a query.
func ParseTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	// Tables printed by "ceph-collect queries" carry a document header.
	var doc struct {
		header.Header `yaml:",inline"`
		Table         `yaml:",inline"`
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformed, "failed to decode query table", err)
	}
	if doc.Kind != "" && !doc.Kind.IsValid() {
		return nil, errors.New(errors.ErrCodeMalformed, fmt.Sprintf("unknown document kind %q", doc.Kind))
	}
	if doc.Kind != "" && doc.Kind != header.KindQueryTable {
		return nil, errors.New(errors.ErrCodeMalformed, fmt.Sprintf("unexpected document kind %q", doc.Kind))
	}
	t := doc.Table
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Enumerator returns the named enumerator.
func (t *Table) Enumerator(name string) (EnumeratorSpec, bool) {
	for _, e := range t.Enumerators {
		if e.Name == name {
			return e, true
		}
	}
	return EnumeratorSpec{}, false
}

// Validate checks names, kinds and references.
func (t *Table) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidRequest, "invalid query table: "+fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(t.VersionQuery) == "" {
		return invalid("version_query is empty")
	}
	if len(t.Categories) == 0 {
		return invalid("no categories")
	}

	enums := make(map[string]struct{}, len(t.Enumerators))
	for _, e := range t.Enumerators {
		if err := e.Validate(); err != nil {
			return invalid("%v", err)
		}
		if _, dup := enums[e.Name]; dup {
			return invalid("duplicate enumerator %q", e.Name)
		}
		if e.When != "" && !IsPrecondition(e.When) {
			return unknownPrecondition("enumerator "+e.Name, e.When)
		}
		enums[e.Name] = struct{}{}
	}

	cats := make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		if err := dataset.ValidateName(c.Name); err != nil {
			return invalid("category: %v", err)
		}
		if _, dup := cats[c.Name]; dup {
			return invalid("duplicate category %q", c.Name)
		}
		cats[c.Name] = struct{}{}
		if c.Requires != "" && !IsPrecondition(c.Requires) {
			return unknownPrecondition("category "+c.Name, c.Requires)
		}

		names := make(map[string]struct{}, len(c.Queries))
		for _, q := range c.Queries {
			where := c.Name + "/" + q.Name
			if err := dataset.ValidateName(q.Name); err != nil {
				return invalid("%s: %v", where, err)
			}
			if _, dup := names[q.Name]; dup {
				return invalid("duplicate query %q", where)
			}
			names[q.Name] = struct{}{}

			switch q.Kind {
			case KindShell, KindCeph, KindMon, KindFile, KindFSID, KindVersion, KindUnits:
			default:
				return invalid("%s: unknown kind %q", where, q.Kind)
			}
			if q.Kind.needsCommand() && strings.TrimSpace(q.Command) == "" {
				return invalid("%s: kind %s needs a command", where, q.Kind)
			}
			if q.MinVersion < 0 {
				return invalid("%s: negative min_version", where)
			}
			for _, rule := range q.Redact {
				if _, ok := redact.Lookup(rule); !ok {
					return invalid("%s: unknown redaction rule %q (known: %s)", where, rule, strings.Join(redact.Names(), ", "))
				}
			}
			if q.Binary && len(q.Redact) > 0 {
				return invalid("%s: binary output cannot be redacted", where)
			}
			if q.Enumerate != "" {
				if _, ok := enums[q.Enumerate]; !ok {
					return invalid("%s: unknown enumerator %q", where, q.Enumerate)
				}
			}
			if q.When != "" && !IsPrecondition(q.When) {
				return unknownPrecondition(where, q.When)
			}
		}
	}
	return nil
}

func unknownPrecondition(where, name string) error {
	return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid query table: %s: unknown precondition %q (known: %s)",
		where, name, strings.Join(Preconditions(), ", ")))
}

// Vars are the values substituted into query commands.
type Vars struct {
	CephBinary string
	ConfigPath string
	Timeout    time.Duration
}

// Render substitutes {ceph}, {config} and {timeout} in command. The config
// path is shell-quoted.
func (v Vars) Render(command string) string {
	secs := int(v.Timeout.Round(time.Second) / time.Second)
	return strings.NewReplacer(
		"{ceph}", v.CephBinary,
		"{config}", executor.Quote(v.ConfigPath),
		"{timeout}", strconv.Itoa(max(secs, 1)),
	).Replace(command)
}
