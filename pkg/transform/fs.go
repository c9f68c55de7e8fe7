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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"arcport/pkg/config"
)

// 🔌 Transformer applies one job and reports its outcome. The executor only
// schedules; all filesystem work lives behind this interface.
type Transformer interface {
	Apply(ctx context.Context, job Job) Result
}

// 🔧 FSOptions configures the filesystem transformer
type FSOptions struct {
	// Link overrides os.Link, used by tests to simulate cross-device links
	Link func(src, dst string) error
}

// 💾 FSTransformer materializes jobs on the real filesystem. Copy and move
// write to a temporary file in the destination directory and rename into
// place, so no partially written file is ever visible at its final path.
type FSTransformer struct {
	link  func(src, dst string) error
	runID string // uniquifies temp file names across concurrent runs
}

// 🏭 NewFSTransformer creates a filesystem transformer
func NewFSTransformer(opts FSOptions) *FSTransformer {
	link := opts.Link
	if link == nil {
		link = os.Link
	}
	return &FSTransformer{
		link:  link,
		runID: uuid.NewString()[:8],
	}
}

// 🏃 Apply runs one job: existence check, then the transform itself.
func (t *FSTransformer) Apply(ctx context.Context, job Job) Result {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		return NewFailure(job, errors.Errorf("creating destination directory: %w", err))
	}

	exists, err := destinationExists(job.Destination)
	if err != nil {
		return NewFailure(job, err)
	}
	if exists && !job.Overwrite {
		logger.Debug().Str("dest", job.Destination).Msg("destination exists, skipping")
		return skipped(job)
	}

	switch job.Kind {
	case config.TransformCopy:
		if err := t.copyAtomic(job.Source, job.Destination); err != nil {
			return NewFailure(job, err)
		}
	case config.TransformMove:
		// The source is removed only once the destination has been fully
		// written and renamed into place, so there is no window in which
		// neither side holds a complete copy.
		if err := t.copyAtomic(job.Source, job.Destination); err != nil {
			return NewFailure(job, err)
		}
		if err := os.Remove(job.Source); err != nil {
			return NewFailure(job, errors.Errorf("removing source after move: %w", err))
		}
	case config.TransformHardlink:
		if err := t.hardlink(ctx, job, exists); err != nil {
			return NewFailure(job, err)
		}
	default:
		return NewFailure(job, errors.Errorf("unknown transform kind %q", job.Kind))
	}

	return succeeded(job)
}

// hardlink links destination to source, remove-then-link on overwrite.
// Cross-device links degrade to a copy and still count as success.
func (t *FSTransformer) hardlink(ctx context.Context, job Job, exists bool) error {
	logger := zerolog.Ctx(ctx)

	if exists {
		if err := os.Remove(job.Destination); err != nil {
			return errors.Errorf("removing destination before link: %w", err)
		}
	}

	err := t.link(job.Source, job.Destination)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return errors.Errorf("linking destination: %w", err)
	}

	logger.Debug().
		Str("source", job.Source).
		Str("dest", job.Destination).
		Msg("cross-device link, falling back to copy")
	return t.copyAtomic(job.Source, job.Destination)
}

// copyAtomic duplicates source bytes into a temp file beside the
// destination and renames it into place.
func (t *FSTransformer) copyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dst), fmt.Sprintf(".%s.%s.tmp", filepath.Base(dst), t.runID))
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Errorf("copying content: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// destinationExists checks the destination path without following symlinks
func destinationExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking destination: %w", err)
}

// isCrossDevice reports whether a link failed because source and
// destination live on different filesystems
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err == syscall.EXDEV
	}
	return errors.Is(err, syscall.EXDEV)
}
