// Copyright 2025 the arcport authors
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

package transform

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcport/pkg/config"
)

// fixture creates a source file and returns a job pointing at a fresh
// destination inside the same temp tree
func fixture(t *testing.T, kind config.TransformKind, content string) Job {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "photo.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	return Job{
		Source:      src,
		Destination: filepath.Join(dir, "dst", "alice", "archive", "photo.png"),
		Kind:        kind,
		CreatorID:   "alice",
	}
}

// readFile returns the file content as a string
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	return string(data)
}

// assertNoTempFiles checks that no temp artifacts linger beside dst
func assertNoTempFiles(t *testing.T, dst string) {
	t.Helper()
	dirents, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err, "reading destination directory")
	for _, ent := range dirents {
		assert.False(t, strings.HasSuffix(ent.Name(), ".tmp"), "temp file %s left behind", ent.Name())
	}
}

func TestApplyCopy(t *testing.T) {
	tr := NewFSTransformer(FSOptions{})
	job := fixture(t, config.TransformCopy, "hello")

	res := tr.Apply(context.Background(), job)

	require.Equal(t, OutcomeSucceeded, res.Outcome, "copy should succeed: %s", res.Reason)
	assert.Equal(t, "hello", readFile(t, job.Destination), "destination holds the source bytes")
	assert.FileExists(t, job.Source, "copy leaves the source untouched")
	assertNoTempFiles(t, job.Destination)
}

func TestApplyMove(t *testing.T) {
	tr := NewFSTransformer(FSOptions{})
	job := fixture(t, config.TransformMove, "hello")

	res := tr.Apply(context.Background(), job)

	require.Equal(t, OutcomeSucceeded, res.Outcome, "move should succeed: %s", res.Reason)
	assert.Equal(t, "hello", readFile(t, job.Destination), "destination holds the source bytes")
	assert.NoFileExists(t, job.Source, "move removes the source")
	assertNoTempFiles(t, job.Destination)
}

func TestApplyHardlink(t *testing.T) {
	tr := NewFSTransformer(FSOptions{})
	job := fixture(t, config.TransformHardlink, "hello")

	res := tr.Apply(context.Background(), job)

	require.Equal(t, OutcomeSucceeded, res.Outcome, "hardlink should succeed: %s", res.Reason)

	srcInfo, err := os.Stat(job.Source)
	require.NoError(t, err)
	dstInfo, err := os.Stat(job.Destination)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo), "destination shares storage with the source")
}

func TestApplyHardlinkCrossDeviceFallback(t *testing.T) {
	tr := NewFSTransformer(FSOptions{
		Link: func(src, dst string) error {
			return &os.LinkError{Op: "link", Old: src, New: dst, Err: syscall.EXDEV}
		},
	})
	job := fixture(t, config.TransformHardlink, "hello")

	res := tr.Apply(context.Background(), job)

	require.Equal(t, OutcomeSucceeded, res.Outcome, "cross-device fallback is not a failure")
	assert.Equal(t, "hello", readFile(t, job.Destination), "fallback copies the bytes")

	srcInfo, err := os.Stat(job.Source)
	require.NoError(t, err)
	dstInfo, err := os.Stat(job.Destination)
	require.NoError(t, err)
	assert.False(t, os.SameFile(srcInfo, dstInfo), "fallback produces an independent copy")
}

func TestApplySkipsExisting(t *testing.T) {
	tr := NewFSTransformer(FSOptions{})
	job := fixture(t, config.TransformCopy, "new")

	require.NoError(t, os.MkdirAll(filepath.Dir(job.Destination), 0o755))
	require.NoError(t, os.WriteFile(job.Destination, []byte("old"), 0o644))

	res := tr.Apply(context.Background(), job)

	assert.Equal(t, OutcomeSkippedExisting, res.Outcome, "existing destination is skipped")
	assert.Equal(t, "old", readFile(t, job.Destination), "destination is not mutated")
}

func TestApplyOverwrite(t *testing.T) {
	for _, kind := range []config.TransformKind{config.TransformCopy, config.TransformMove, config.TransformHardlink} {
		t.Run(string(kind), func(t *testing.T) {
			tr := NewFSTransformer(FSOptions{})
			job := fixture(t, kind, "new")
			job.Overwrite = true

			require.NoError(t, os.MkdirAll(filepath.Dir(job.Destination), 0o755))
			require.NoError(t, os.WriteFile(job.Destination, []byte("old"), 0o644))

			res := tr.Apply(context.Background(), job)

			require.Equal(t, OutcomeSucceeded, res.Outcome, "overwrite should succeed: %s", res.Reason)
			assert.Equal(t, "new", readFile(t, job.Destination), "destination holds the new bytes")
		})
	}
}

func TestApplyMissingSource(t *testing.T) {
	tr := NewFSTransformer(FSOptions{})
	job := fixture(t, config.TransformCopy, "hello")
	require.NoError(t, os.Remove(job.Source))

	res := tr.Apply(context.Background(), job)

	require.Equal(t, OutcomeFailed, res.Outcome, "a broken source fails the job")
	assert.NotEmpty(t, res.Reason, "failures carry a human-readable reason")
	assert.NoFileExists(t, job.Destination, "no partial destination is left behind")
}
