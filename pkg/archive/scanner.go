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

package archive

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// maxDepth bounds recursion inside a post directory; the source tool never
// nests deeper than this.
const maxDepth = 5

// 🔍 Scanner enumerates creators, posts and files of a source archive. It
// holds no state between calls, so every walk restarts from disk.
type Scanner struct {
	root   string
	ignore []string // doublestar globs, matched against root-relative paths
}

// 🏭 NewScanner creates a scanner for the given source root
func NewScanner(root string, ignore []string) *Scanner {
	return &Scanner{
		root:   filepath.Clean(root),
		ignore: ignore,
	}
}

// 🎯 VisitFunc receives each scanned file entry. Returning an error stops
// the walk and is propagated to the caller.
type VisitFunc func(FileEntry) error

// ⚠️ ProblemFunc receives per-entry structural problems (unreadable
// directory, missing file). Problems never abort the walk.
type ProblemFunc func(path string, err error)

// 👥 Creators lists the creator directories under the source root. An
// unreadable root is the only fatal scan error.
func (s *Scanner) Creators(ctx context.Context) ([]Creator, error) {
	logger := zerolog.Ctx(ctx)

	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Errorf("reading source root %s: %w", s.root, err)
	}

	var creators []Creator
	for _, ent := range dirents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") || !ent.IsDir() {
			logger.Debug().Str("path", filepath.Join(s.root, name)).Msg("ignoring entry")
			continue
		}
		creators = append(creators, Creator{
			ID:   name,
			Path: filepath.Join(s.root, name),
		})
	}

	return creators, nil
}

// 🚶 WalkFiles enumerates every file entry of one creator: plan and dated
// post directories recursively, everything else as the ungrouped post.
func (s *Scanner) WalkFiles(ctx context.Context, creator Creator, visit VisitFunc, problem ProblemFunc) error {
	logger := zerolog.Ctx(ctx)

	dirents, err := os.ReadDir(creator.Path)
	if err != nil {
		problem(creator.Path, errors.Errorf("reading creator directory: %w", err))
		return nil
	}

	ungrouped := Post{
		CreatorID: creator.ID,
		Kind:      PostUngrouped,
		Title:     "Fanbox archive",
	}

	for _, ent := range dirents {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := ent.Name()
		full := filepath.Join(creator.Path, name)
		if strings.HasPrefix(name, ".") {
			logger.Debug().Str("path", full).Msg("ignoring entry")
			continue
		}

		switch {
		case ent.IsDir():
			post, ok := parsePostDir(creator.ID, name)
			if !ok {
				logger.Debug().Str("path", full).Msg("ignoring directory")
				continue
			}
			if err := s.collectFiles(ctx, full, full, post, 1, visit, problem); err != nil {
				return err
			}
		case ent.Type().IsRegular():
			if err := s.visitFile(ctx, full, name, ungrouped, ent, visit, problem); err != nil {
				return err
			}
		default:
			logger.Warn().Str("path", full).Msg("not a file or directory")
		}
	}

	return nil
}

// collectFiles gathers the files of one post directory, recursing up to
// maxDepth levels below the post root.
func (s *Scanner) collectFiles(ctx context.Context, dir, postRoot string, post Post, depth int, visit VisitFunc, problem ProblemFunc) error {
	logger := zerolog.Ctx(ctx)

	if depth > maxDepth {
		logger.Warn().Str("path", dir).Int("depth", depth).Msg("over expected depth, skipping")
		return nil
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		problem(dir, errors.Errorf("reading post directory: %w", err))
		return nil
	}

	for _, ent := range dirents {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := ent.Name()
		full := filepath.Join(dir, name)
		if strings.HasPrefix(name, ".") {
			logger.Debug().Str("path", full).Msg("ignoring entry")
			continue
		}

		switch {
		case ent.IsDir():
			if err := s.collectFiles(ctx, full, postRoot, post, depth+1, visit, problem); err != nil {
				return err
			}
		case ent.Type().IsRegular():
			rel, relErr := filepath.Rel(postRoot, full)
			if relErr != nil {
				problem(full, errors.Errorf("resolving relative path: %w", relErr))
				continue
			}
			if err := s.visitFile(ctx, full, filepath.ToSlash(rel), post, ent, visit, problem); err != nil {
				return err
			}
		default:
			logger.Warn().Str("path", full).Msg("not a file or directory")
		}
	}

	return nil
}

// visitFile builds the FileEntry for one regular file and hands it to visit
func (s *Scanner) visitFile(ctx context.Context, full, rel string, post Post, ent os.DirEntry, visit VisitFunc, problem ProblemFunc) error {
	logger := zerolog.Ctx(ctx)

	if s.ignored(full) {
		logger.Debug().Str("path", full).Msg("ignored by pattern")
		return nil
	}

	var size int64
	info, err := ent.Info()
	if err != nil {
		// The entry vanished between readdir and stat; report it as a
		// structural problem instead of scheduling a doomed job.
		problem(full, errors.Errorf("stat source file: %w", err))
		return nil
	}
	size = info.Size()

	return visit(FileEntry{
		SourcePath: full,
		RelPath:    path.Clean(rel),
		Post:       post,
		Size:       size,
		Kind:       detectFileKind(filepath.Base(full)),
	})
}

// 🔍 ignored checks the root-relative path against the ignore globs
func (s *Scanner) ignored(full string) bool {
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.ignore {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// parsePostDir recognizes "<N>yen" plan directories and
// "YYYY-MM-DD-<Title>" dated directories.
func parsePostDir(creatorID, name string) (Post, bool) {
	if yen := strings.TrimSuffix(name, "yen"); yen != name {
		if plan, err := strconv.Atoi(yen); err == nil && plan >= 0 {
			return Post{
				CreatorID: creatorID,
				Kind:      PostPlan,
				Plan:      plan,
				Title:     name + " fanbox archive",
			}, true
		}
	}

	if len(name) > 11 && name[10] == '-' {
		if date, err := time.Parse("2006-01-02", name[:10]); err == nil {
			return Post{
				CreatorID: creatorID,
				Kind:      PostDated,
				Date:      date.UTC(),
				Title:     name[11:],
			}, true
		}
	}

	return Post{}, false
}
