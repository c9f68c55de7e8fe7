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

package layout

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcport/pkg/archive"
)

func entry(creator string, kind archive.PostKind, title, rel string) archive.FileEntry {
	return archive.FileEntry{
		SourcePath: filepath.Join("/src", creator, rel),
		RelPath:    rel,
		Post: archive.Post{
			CreatorID: creator,
			Kind:      kind,
			Plan:      500,
			Date:      time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
			Title:     title,
		},
	}
}

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		entry   archive.FileEntry
		want    string
		wantErr bool
	}{
		{
			name:  "ungrouped_file",
			entry: entry("alice", archive.PostUngrouped, "Fanbox archive", "photo.png"),
			want:  filepath.Join("/dst", "alice", "archive", "photo.png"),
		},
		{
			name:  "plan_post_file",
			entry: entry("alice", archive.PostPlan, "500yen fanbox archive", "a.png"),
			want:  filepath.Join("/dst", "alice", "plan-500yen", "a.png"),
		},
		{
			name:  "dated_post_file",
			entry: entry("alice", archive.PostDated, "Spring Set!", "a.png"),
			want:  filepath.Join("/dst", "alice", "2023-04-01-spring-set", "a.png"),
		},
		{
			name:  "nested_file_is_flattened",
			entry: entry("alice", archive.PostPlan, "500yen fanbox archive", "pages/01/a.png"),
			want:  filepath.Join("/dst", "alice", "plan-500yen", "pages-01-a.png"),
		},
		{
			name:  "unicode_title_falls_back",
			entry: entry("alice", archive.PostDated, "お知らせ", "a.png"),
			want:  filepath.Join("/dst", "alice", "2023-04-01-post", "a.png"),
		},
		{
			name:    "missing_creator_id",
			entry:   archive.FileEntry{RelPath: "a.png"},
			wantErr: true,
		},
		{
			name:    "missing_file_path",
			entry:   archive.FileEntry{Post: archive.Post{CreatorID: "alice"}},
			wantErr: true,
		},
	}

	m := NewMapper("/dst")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Map(tt.entry)
			if tt.wantErr {
				require.Error(t, err, "mapping should fail")
				assert.ErrorIs(t, err, ErrMissingIdentity, "should be a mapping error")
				return
			}
			require.NoError(t, err, "mapping should succeed")
			assert.Equal(t, tt.want, got, "destination path should match")
		})
	}
}

func TestMapIsDeterministic(t *testing.T) {
	m := NewMapper("/dst")
	e := entry("alice", archive.PostDated, "Spring Set!", "pages/a.png")

	first, err := m.Map(e)
	require.NoError(t, err, "first mapping should succeed")
	second, err := m.Map(e)
	require.NoError(t, err, "second mapping should succeed")

	assert.Equal(t, first, second, "same entry must map to the same path")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spring Set!", "spring-set"},
		{"hello", "hello"},
		{"A--B  C", "a-b-c"},
		{"123", "123"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "slug of %q", tt.in)
	}
}
