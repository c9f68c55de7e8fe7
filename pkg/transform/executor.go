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
	"sync"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
)

// 🔧 Options configures the executor
type Options struct {
	// Limit is the maximum number of jobs in flight at once
	Limit int
	// Transformer applies each job
	Transformer Transformer
	// Results receives one Result per submitted job; the caller owns the
	// channel and must drain it while jobs run
	Results chan<- Result
}

// 🏃 Executor schedules jobs across a bounded pool. Jobs are independent:
// one job's failure is recorded in its Result and never cancels siblings.
type Executor struct {
	sem         *semaphore.Weighted
	transformer Transformer
	results     chan<- Result
	wg          sync.WaitGroup
}

// 🏭 NewExecutor creates an executor with the given options
func NewExecutor(opts Options) (*Executor, error) {
	if opts.Limit <= 0 {
		return nil, errors.Errorf("limit must be positive, got %d", opts.Limit)
	}
	if opts.Transformer == nil {
		return nil, errors.New("transformer is required")
	}
	if opts.Results == nil {
		return nil, errors.New("results channel is required")
	}
	return &Executor{
		sem:         semaphore.NewWeighted(int64(opts.Limit)),
		transformer: opts.Transformer,
		results:     opts.Results,
	}, nil
}

// 📤 Submit dispatches one job. It blocks until a pool slot is free, so
// dispatch itself provides the backpressure; the job then runs on its own
// goroutine and emits exactly one Result.
func (e *Executor) Submit(ctx context.Context, job Job) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return errors.Errorf("acquiring worker slot: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.sem.Release(1)
		e.results <- e.transformer.Apply(ctx, job)
	}()

	return nil
}

// 📤 Report forwards a result that did not go through a worker, keeping the
// one-result-per-entry invariant for mapping and scan failures.
func (e *Executor) Report(result Result) {
	e.results <- result
}

// ⏳ Wait blocks until every submitted job has emitted its Result. The
// caller closes the results channel afterwards.
func (e *Executor) Wait() {
	e.wg.Wait()
}
