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

package redact

import (
	"fmt"
	"regexp"
	"slices"
	"unicode/utf8"
)

// Marker replaces every redacted value.
const Marker = "<CENSORED>"

// Built-in rule names referenced from the query table.
const (
	RuleSecrets  = "secrets"
	RuleAuthKeys = "auth-keys"
)

// Rule rewrites every match of Pattern with Replacement. Patterns are
// matched line by line: '.' never crosses a newline.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// builtin rules. Each keeps the matched key token in group 1 and replaces
// the remainder of the line, so a second pass rewrites the marker to itself.
var builtin = map[string]Rule{
	// config dump: access/secret keys and passwords.
	RuleSecrets: {
		Name:        RuleSecrets,
		Pattern:     regexp.MustCompile(`(?i)(ACCESS_KEY|SECRET_KEY|PASSWORD).*`),
		Replacement: "${1} " + Marker,
	},
	// auth list: "key: AQ..." lines.
	RuleAuthKeys: {
		Name:        RuleAuthKeys,
		Pattern:     regexp.MustCompile(`(key:) .*`),
		Replacement: "${1} " + Marker,
	},
}

// Lookup returns a built-in rule by name.
func Lookup(name string) (Rule, bool) {
	r, ok := builtin[name]
	return r, ok
}

// Names returns the built-in rule names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Redactor applies named rules when Enabled. A disabled Redactor (an
// uncensored run) returns content unchanged.
type Redactor struct {
	Enabled bool
}

// New returns a Redactor; censored selects whether rules are applied.
func New(censored bool) *Redactor {
	return &Redactor{Enabled: censored}
}

// Apply runs the named rules over content in order. Content that is not
// valid UTF-8 is treated as binary and returned unchanged.
func (r *Redactor) Apply(content []byte, rules ...string) ([]byte, error) {
	if r == nil || !r.Enabled || len(rules) == 0 || len(content) == 0 {
		return content, nil
	}
	if !utf8.Valid(content) {
		return content, nil
	}

	out := content
	for _, name := range rules {
		rule, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("unknown redaction rule %q", name)
		}
		out = rule.Pattern.ReplaceAll(out, []byte(rule.Replacement))
	}
	return out, nil
}
