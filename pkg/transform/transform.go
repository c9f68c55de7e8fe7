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

// Package transform executes file materialization jobs: copy, move or
// hardlink a source file to its destination path, under a bounded worker
// pool.
package transform

import (
	"arcport/pkg/config"
)

// 📦 Job is one file materialization unit. Jobs are immutable after
// creation and owned by the executor until their Result is emitted.
type Job struct {
	Source      string               // absolute source path
	Destination string               // absolute destination path
	Kind        config.TransformKind // copy, move or hardlink
	Overwrite   bool                 // replace an existing destination
	CreatorID   string               // owning creator, reporting only
	Size        int64                // bytes, reporting only
}

// 📊 Outcome tags the result of one job
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeSkippedExisting
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkippedExisting:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Result is the terminal record of one job. Every submitted job yields
// exactly one Result.
type Result struct {
	Job     Job
	Outcome Outcome
	Reason  string // human-readable failure reason, OutcomeFailed only
}

// ✅ succeeded builds a success result
func succeeded(job Job) Result {
	return Result{Job: job, Outcome: OutcomeSucceeded}
}

// ⏭️ skipped builds a skipped-existing result
func skipped(job Job) Result {
	return Result{Job: job, Outcome: OutcomeSkippedExisting}
}

// ❌ NewFailure builds a failed result carrying the underlying reason
func NewFailure(job Job, err error) Result {
	return Result{Job: job, Outcome: OutcomeFailed, Reason: err.Error()}
}
