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

// Package migrate wires the pipeline: scan, filter, map, execute,
// aggregate.
package migrate

import (
	"context"
	"path/filepath"
	"sort"

	"gitlab.com/tozd/go/errors"

	"arcport/pkg/archive"
	"arcport/pkg/config"
	"arcport/pkg/console"
	"arcport/pkg/filter"
	"arcport/pkg/layout"
	"arcport/pkg/report"
	"arcport/pkg/transform"
)

// 🔧 Options configures a migration run
type Options struct {
	// Config is the immutable run configuration
	Config config.Config
	// Console receives human-oriented progress output
	Console *console.Logger
	// Transformer overrides the filesystem transformer, used by tests
	Transformer transform.Transformer
}

// 🏃 Run executes a full migration and returns the aggregated report.
// Only an unreadable source root (or a cancelled context) produces an
// error; every per-file problem surfaces through the report instead.
func Run(ctx context.Context, opts Options) (report.RunReport, error) {
	cfg := opts.Config
	ui := opts.Console

	scanner := archive.NewScanner(cfg.Source, cfg.Ignore)
	creators, err := scanner.Creators(ctx)
	if err != nil {
		return report.RunReport{}, errors.Errorf("scanning creators: %w", err)
	}

	included, excluded := filter.New(cfg.Allow, cfg.Deny).Partition(creators)
	displayCreators(ui, creators, included, excluded)

	transformer := opts.Transformer
	if transformer == nil {
		transformer = transform.NewFSTransformer(transform.FSOptions{})
	}

	results := make(chan transform.Result, cfg.Limit)
	exec, err := transform.NewExecutor(transform.Options{
		Limit:       cfg.Limit,
		Transformer: transformer,
		Results:     results,
	})
	if err != nil {
		return report.RunReport{}, errors.Errorf("creating executor: %w", err)
	}

	agg := report.NewAggregator()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			logResult(ui, cfg, r)
			agg.Add(r)
		}
	}()

	mapper := layout.NewMapper(cfg.Destination)

	var walkErr error
	for _, creator := range included {
		ui.StartCreator(creator.ID)

		walkErr = scanner.WalkFiles(ctx, creator,
			func(entry archive.FileEntry) error {
				dst, mapErr := mapper.Map(entry)
				if mapErr != nil {
					exec.Report(transform.NewFailure(transform.Job{
						Source:    entry.SourcePath,
						Kind:      cfg.Transform,
						CreatorID: entry.Post.CreatorID,
					}, mapErr))
					return nil
				}
				return exec.Submit(ctx, transform.Job{
					Source:      entry.SourcePath,
					Destination: dst,
					Kind:        cfg.Transform,
					Overwrite:   cfg.Overwrite,
					CreatorID:   entry.Post.CreatorID,
					Size:        entry.Size,
				})
			},
			func(path string, problemErr error) {
				exec.Report(transform.NewFailure(transform.Job{
					Source:    path,
					Kind:      cfg.Transform,
					CreatorID: creator.ID,
				}, problemErr))
			})
		if walkErr != nil {
			break
		}
	}

	// In-flight jobs always run to completion, even on a dispatch error.
	exec.Wait()
	close(results)
	<-done

	rep := agg.Report()
	if walkErr != nil {
		return rep, errors.Errorf("walking source archive: %w", walkErr)
	}
	return rep, nil
}

// displayCreators prints the filter counts and the sorted included list
func displayCreators(ui *console.Logger, all, included, excluded []archive.Creator) {
	ui.Infof("%d total", len(all))
	ui.Infof("%d included", len(included))
	ui.Infof("%d excluded", len(excluded))
	ui.LogNewline()

	ids := make([]string, 0, len(included))
	for _, c := range included {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ui.Infof("  %s", id)
	}
	ui.LogNewline()
}

// logResult emits one per-file console line
func logResult(ui *console.Logger, cfg config.Config, r transform.Result) {
	path := r.Job.Destination
	if path == "" {
		path = r.Job.Source
	} else if rel, err := filepath.Rel(cfg.Destination, path); err == nil {
		path = rel
	}

	ui.LogFileOperation(console.FileOperation{
		Path:      path,
		Creator:   r.Job.CreatorID,
		Transform: cfg.Transform.String(),
		Status:    r.Outcome.String(),
		Reason:    r.Reason,
	})
}
