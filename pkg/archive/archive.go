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

// Package archive reads the fanbox-dl source tree: creators at the top
// level, posts grouped by plan ("500yen") or date ("2023-04-01-Title")
// directories, and loose files forming one ungrouped pseudo-post.
package archive

import (
	"path/filepath"
	"strings"
	"time"
)

// 👤 Creator is a top-level creator directory in the source archive.
type Creator struct {
	ID   string // directory name, unique per source archive
	Path string // absolute path of the creator directory
}

// 📊 PostKind classifies how a post was grouped in the source tree
type PostKind int

const (
	PostUngrouped PostKind = iota // loose files directly under the creator
	PostPlan                      // "<N>yen" plan directory
	PostDated                     // "YYYY-MM-DD-<Title>" directory
)

func (k PostKind) String() string {
	switch k {
	case PostPlan:
		return "plan"
	case PostDated:
		return "dated"
	default:
		return "ungrouped"
	}
}

// 📦 Post is one unit of published content belonging to a creator.
type Post struct {
	CreatorID string
	Kind      PostKind
	Plan      int       // price in yen, PostPlan only
	Date      time.Time // publish date, PostDated only
	Title     string
}

// 📊 FileKind marks what role a file plays inside its post
type FileKind int

const (
	FileAttachment FileKind = iota
	FileCover
)

func (k FileKind) String() string {
	if k == FileCover {
		return "cover"
	}
	return "attachment"
}

// 📄 FileEntry is a single source file owned by a post. Entries are
// immutable once produced by the scanner.
type FileEntry struct {
	SourcePath string   // absolute path of the source file
	RelPath    string   // path relative to the post root, "/"-separated
	Post       Post
	Size       int64    // bytes, reporting only (0 when unknown)
	Kind       FileKind
}

// detectFileKind classifies a file by its basename
func detectFileKind(name string) FileKind {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.EqualFold(base, "cover") {
		return FileCover
	}
	return FileAttachment
}
