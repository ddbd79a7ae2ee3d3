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

package checksum

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	// sha256 of the empty string
	if got := Bytes(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Bytes(nil) = %s", got)
	}
}

func TestWriteSidecar(t *testing.T) {
	t.Parallel()

	t.Run("writes sha256sum lines", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		archive := filepath.Join(dir, "ceph-collect_20260112_103000.tar.gz")
		manifest := filepath.Join(dir, "ceph-collect_20260112_103000.manifest.yaml")
		if err := os.WriteFile(archive, []byte("archive"), 0o644); err != nil {
			t.Fatalf("failed to create archive: %v", err)
		}
		if err := os.WriteFile(manifest, []byte("manifest"), 0o644); err != nil {
			t.Fatalf("failed to create manifest: %v", err)
		}

		path, err := WriteSidecar(context.Background(), archive, manifest)
		if err != nil {
			t.Fatalf("WriteSidecar() error = %v", err)
		}
		if path != archive+Extension {
			t.Errorf("path = %s, want %s", path, archive+Extension)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read sidecar: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if want := Bytes([]byte("archive")) + "  ceph-collect_20260112_103000.tar.gz"; lines[0] != want {
			t.Errorf("line = %q, want %q", lines[0], want)
		}

		if err := Verify(path); err != nil {
			t.Errorf("Verify() error = %v", err)
		}
	})

	t.Run("detects modification", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		archive := filepath.Join(dir, "a.tar.gz")
		if err := os.WriteFile(archive, []byte("archive"), 0o644); err != nil {
			t.Fatalf("failed to create archive: %v", err)
		}
		path, err := WriteSidecar(context.Background(), archive)
		if err != nil {
			t.Fatalf("WriteSidecar() error = %v", err)
		}
		if err := os.WriteFile(archive, []byte("tampered"), 0o644); err != nil {
			t.Fatalf("failed to rewrite archive: %v", err)
		}
		if err := Verify(path); err == nil {
			t.Error("expected checksum mismatch")
		}
	})

	t.Run("returns error on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := WriteSidecar(ctx, filepath.Join(t.TempDir(), "a")); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := WriteSidecar(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
