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

// Package layout maps source file entries onto the destination archive
// tree: <destination>/<creator>/<post-slug>/<flattened-filename>.
//
// The mapping is a pure function of the entry's identity, so repeated runs
// land every file at the same path and the executor's overwrite check is
// meaningful across processes.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"arcport/pkg/archive"
)

// ⚠️ ErrMissingIdentity marks an entry without enough identifying fields
// to compute a stable destination path.
var ErrMissingIdentity = errors.New("entry lacks identifying fields for a stable path")

// 🗺️ Mapper computes destination paths under one destination root.
type Mapper struct {
	dest string
}

// 🏭 NewMapper creates a mapper rooted at the destination archive
func NewMapper(dest string) *Mapper {
	return &Mapper{dest: filepath.Clean(dest)}
}

// 🎯 Map computes the destination path for a file entry.
func (m *Mapper) Map(entry archive.FileEntry) (string, error) {
	if entry.Post.CreatorID == "" {
		return "", errors.Errorf("%w: empty creator id for %s", ErrMissingIdentity, entry.SourcePath)
	}
	if entry.RelPath == "" || entry.RelPath == "." {
		return "", errors.Errorf("%w: empty file path under post", ErrMissingIdentity)
	}

	name := flatten(entry.RelPath)
	if name == "" {
		return "", errors.Errorf("%w: file name reduces to nothing: %s", ErrMissingIdentity, entry.RelPath)
	}

	return filepath.Join(m.dest, entry.Post.CreatorID, PostSlug(entry.Post), name), nil
}

// 📝 PostSlug derives the per-post directory name from the post identity
func PostSlug(p archive.Post) string {
	switch p.Kind {
	case archive.PostPlan:
		return fmt.Sprintf("plan-%dyen", p.Plan)
	case archive.PostDated:
		slug := Slugify(p.Title)
		if slug == "" {
			slug = "post"
		}
		return p.Date.Format("2006-01-02") + "-" + slug
	default:
		return "archive"
	}
}

// 📝 Slugify lowercases s and collapses every non-alphanumeric run into a
// single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// flatten turns a post-relative path into a single file name, keeping
// nested entries distinct after their directories are collapsed.
func flatten(rel string) string {
	parts := strings.Split(strings.Trim(rel, "/"), "/")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "-")
}
