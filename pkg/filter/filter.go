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

// Package filter decides per-creator inclusion from allow and deny lists.
package filter

import "arcport/pkg/archive"

// 🎯 Filter is an allow/deny membership test over creator IDs. An empty
// allow list admits every creator; the deny list always wins.
type Filter struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

// 🏭 New builds a filter from the configured lists
func New(allow, deny []string) *Filter {
	f := &Filter{
		allow: make(map[string]struct{}, len(allow)),
		deny:  make(map[string]struct{}, len(deny)),
	}
	for _, id := range allow {
		f.allow[id] = struct{}{}
	}
	for _, id := range deny {
		f.deny[id] = struct{}{}
	}
	return f
}

// ✅ Include reports whether a creator passes the filter
func (f *Filter) Include(creatorID string) bool {
	if len(f.allow) > 0 {
		if _, ok := f.allow[creatorID]; !ok {
			return false
		}
	}
	_, denied := f.deny[creatorID]
	return !denied
}

// ✂️ Partition splits creators into included and excluded sets, preserving
// scan order.
func (f *Filter) Partition(creators []archive.Creator) (included, excluded []archive.Creator) {
	for _, c := range creators {
		if f.Include(c.ID) {
			included = append(included, c)
		} else {
			excluded = append(excluded, c)
		}
	}
	return included, excluded
}
