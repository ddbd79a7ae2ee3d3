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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extension is appended to a file name to form its sidecar checksum file.
const Extension = ".sha256"

// Bytes returns the hex SHA256 of b.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// File streams path through SHA256 and returns the hex digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteSidecar writes a sha256sum-compatible "<digest>  <name>" line for
// each file into <first file>.sha256 next to it. File names are written
// relative to that directory.
func WriteSidecar(ctx context.Context, files ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files to checksum")
	}

	dir := filepath.Dir(files[0])
	lines := make([]string, 0, len(files))
	for _, file := range files {
		digest, err := File(file)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", digest, rel))
	}

	path := files[0] + Extension
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}
	return path, nil
}

// Verify recomputes every digest listed in a sidecar written by
// WriteSidecar and reports the first mismatch.
func Verify(sidecar string) error {
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sidecar, err)
	}
	dir := filepath.Dir(sidecar)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		want, name, ok := strings.Cut(line, "  ")
		if !ok {
			return fmt.Errorf("invalid checksum line: %q", line)
		}
		got, err := File(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("checksum mismatch for %s: want %s, got %s", name, want, got)
		}
	}
	return nil
}
