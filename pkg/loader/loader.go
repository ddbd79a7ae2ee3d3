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

package loader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// Ceph emits bare inf, -inf and nan in some JSON dumps. They are rewritten
// to the spellings fastjson parses as IEEE values. Only occurrences followed
// by a comma are recognized.
var literals = strings.NewReplacer(
	" inf,", " +Inf,",
	" -inf,", " -Inf,",
	" nan,", " NaN,",
)

type options struct {
	trim        bool
	exitOnError bool
	exit        func(code int)
	lookAhead   int
	logger      *slog.Logger
}

// Option configures Load and Parse.
type Option func(*options)

// WithTrim retries a failed parse after dropping leading lines without '{'
// or '[' (looking at most LoaderLookAheadLines lines ahead) and trailing
// lines without '}' or ']'. This tolerates banners and warnings printed
// around the JSON document.
func WithTrim() Option {
	return func(o *options) {
		o.trim = true
	}
}

// WithExitOnError logs the error and exits the process with status 1
// instead of returning it.
func WithExitOnError() Option {
	return func(o *options) {
		o.exitOnError = true
	}
}

// WithLogger sets the logger used for WithExitOnError.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		exit:      os.Exit,
		lookAhead: defaults.LoaderLookAheadLines,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Document is a parsed JSON document.
type Document struct {
	// Path is the file the document was read from, if any.
	Path  string
	value *fastjson.Value
}

// Value returns the underlying fastjson value.
func (d *Document) Value() *fastjson.Value {
	return d.value
}

// Get returns the value at the key path converted with Interface, or nil
// when it does not exist. Array elements are addressed by decimal index.
func (d *Document) Get(keys ...string) any {
	v := d.value.Get(keys...)
	if v == nil {
		return nil
	}
	return toInterface(v)
}

// Float64 returns the number at the key path.
func (d *Document) Float64(keys ...string) (float64, bool) {
	v := d.value.Get(keys...)
	if v == nil || v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	f, err := v.Float64()
	return f, err == nil
}

// String returns the string at the key path.
func (d *Document) String(keys ...string) (string, bool) {
	v := d.value.Get(keys...)
	if v == nil || v.Type() != fastjson.TypeString {
		return "", false
	}
	return string(v.GetStringBytes()), true
}

// Interface converts the whole document to map[string]any, []any, float64,
// string, bool or nil.
func (d *Document) Interface() any {
	return toInterface(d.value)
}

func toInterface(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		m := make(map[string]any, o.Len())
		o.Visit(func(key []byte, val *fastjson.Value) {
			m[string(key)] = toInterface(val)
		})
		return m
	case fastjson.TypeArray:
		vs, _ := v.Array()
		out := make([]any, len(vs))
		for i, val := range vs {
			out[i] = toInterface(val)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// Load reads and parses the JSON file at path. Errors carry
// ErrCodeNotFound for a missing file, ErrCodeMalformed for an empty or
// unparsable one and ErrCodeInternal otherwise.
func Load(path string, opts ...Option) (*Document, error) {
	o := newOptions(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, o.fail(errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err))
		}
		return nil, o.fail(errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read %s", path), err))
	}

	doc, err := parse(data, o)
	if err != nil {
		return nil, o.fail(errors.WrapWithContext(errors.ErrCodeMalformed, fmt.Sprintf("failed to parse JSON file %s", path), err, map[string]any{"path": path}))
	}
	doc.Path = path
	return doc, nil
}

// Parse parses data with the same tolerance as Load.
func Parse(data []byte, opts ...Option) (*Document, error) {
	o := newOptions(opts)
	doc, err := parse(data, o)
	if err != nil {
		return nil, o.fail(errors.Wrap(errors.ErrCodeMalformed, "failed to parse JSON", err))
	}
	return doc, nil
}

func parse(data []byte, o *options) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	text := literals.Replace(string(data))
	var p fastjson.Parser
	v, err := p.Parse(text)
	if err == nil {
		return &Document{value: v}, nil
	}
	if !o.trim {
		return nil, err
	}

	trimmed, ok := Trim(text, o.lookAhead)
	if !ok {
		return nil, fmt.Errorf("no JSON document found: %w", err)
	}
	v, terr := p.Parse(trimmed)
	if terr != nil {
		return nil, terr
	}
	return &Document{value: v}, nil
}

// Trim drops up to lookAhead leading lines that contain neither '{' nor
// '[', then every trailing line without '}' or ']'. It reports false when
// nothing is left.
func Trim(text string, lookAhead int) (string, bool) {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	begin, end := 0, len(lines)
	for begin < lookAhead && begin < end && !strings.ContainsAny(lines[begin], "{[") {
		begin++
	}
	if begin == end {
		return "", false
	}
	for end > begin && !strings.ContainsAny(lines[end-1], "}]") {
		end--
	}
	if end == begin {
		return "", false
	}
	return strings.Join(lines[begin:end], ""), true
}

func (o *options) fail(err error) error {
	if o.exitOnError {
		logging.OrDiscard(o.logger).Error("failed to load JSON", "error", err)
		o.exit(1)
	}
	return err
}

// ReportPath returns the path of the cluster_health-report member under
// dir, or under $CEPH_DIAGNOSTICS_COLLECT_DIR when dir is empty.
func ReportPath(dir string) (string, error) {
	if dir == "" {
		dir = os.Getenv(defaults.CollectDirEnv)
	}
	if dir == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("no collection directory: set %s or pass a directory", defaults.CollectDirEnv))
	}
	return filepath.Join(dir, defaults.ReportMember), nil
}

// LoadReport loads the cluster report from dir, see ReportPath.
func LoadReport(dir string, opts ...Option) (*Document, error) {
	path, err := ReportPath(dir)
	if err != nil {
		return nil, newOptions(opts).fail(err)
	}
	return Load(path, opts...)
}
