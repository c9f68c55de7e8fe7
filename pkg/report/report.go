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

// Package report aggregates per-job outcomes into the final run report.
package report

import (
	"sync"

	"arcport/pkg/transform"
)

// Process exit codes. Partial failure is distinct from a fatal scan or
// configuration failure so scripting callers can tell them apart.
const (
	ExitSuccess        = 0
	ExitPartialFailure = 1
	ExitFatal          = 2
)

// ❌ Failure records one failed job with enough context to be actionable
type Failure struct {
	Source      string
	Destination string
	Reason      string
}

// 📊 RunReport is the externally observable artifact of a run
type RunReport struct {
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// 🧮 Total returns the number of aggregated results
func (r RunReport) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

// 🎯 ExitCode maps the report onto the process exit status
func (r RunReport) ExitCode() int {
	if r.Failed > 0 {
		return ExitPartialFailure
	}
	return ExitSuccess
}

// 📈 Aggregator accumulates results. Add is safe to call from multiple
// workers; the usual wiring is a single consumer draining the executor's
// results channel via Consume.
type Aggregator struct {
	mu     sync.Mutex
	report RunReport
}

// 🏭 NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// ➕ Add folds one result into the report
func (a *Aggregator) Add(r transform.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch r.Outcome {
	case transform.OutcomeSucceeded:
		a.report.Succeeded++
	case transform.OutcomeSkippedExisting:
		a.report.Skipped++
	case transform.OutcomeFailed:
		a.report.Failed++
		a.report.Failures = append(a.report.Failures, Failure{
			Source:      r.Job.Source,
			Destination: r.Job.Destination,
			Reason:      r.Reason,
		})
	}
}

// 🚰 Consume drains a results channel until it is closed
func (a *Aggregator) Consume(results <-chan transform.Result) {
	for r := range results {
		a.Add(r)
	}
}

// 📊 Report returns a copy of the accumulated report
func (a *Aggregator) Report() RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.report
	out.Failures = append([]Failure(nil), a.report.Failures...)
	return out
}
