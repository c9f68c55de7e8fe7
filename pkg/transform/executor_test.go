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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// countingTransformer tracks how many Apply calls run at once
type countingTransformer struct {
	mu        sync.Mutex
	active    int
	maxActive int
	delay     time.Duration
	failWhen  func(Job) bool
}

func (c *countingTransformer) Apply(ctx context.Context, job Job) Result {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()

	time.Sleep(c.delay)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()

	if c.failWhen != nil && c.failWhen(job) {
		return NewFailure(job, errors.New("injected failure"))
	}
	return Result{Job: job, Outcome: OutcomeSucceeded}
}

// runJobs submits n jobs and returns all collected results
func runJobs(t *testing.T, tr Transformer, limit, n int) []Result {
	t.Helper()

	results := make(chan Result, limit)
	exec, err := NewExecutor(Options{Limit: limit, Transformer: tr, Results: results})
	require.NoError(t, err, "creating executor")

	var collected []Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			collected = append(collected, r)
		}
	}()

	ctx := context.Background()
	for i := 0; i < n; i++ {
		require.NoError(t, exec.Submit(ctx, Job{Source: fmt.Sprintf("job-%d", i)}), "submitting job")
	}
	exec.Wait()
	close(results)
	<-done

	return collected
}

func TestExecutorConcurrencyBound(t *testing.T) {
	for _, limit := range []int{1, 5, 100} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			tr := &countingTransformer{delay: 2 * time.Millisecond}
			results := runJobs(t, tr, limit, 150)

			assert.Len(t, results, 150, "every job yields exactly one result")
			assert.LessOrEqual(t, tr.maxActive, limit, "no more than limit jobs run at once")
			assert.Greater(t, tr.maxActive, 0, "jobs actually ran")
		})
	}
}

func TestExecutorFailureIsolation(t *testing.T) {
	tr := &countingTransformer{
		delay: time.Millisecond,
		failWhen: func(job Job) bool {
			return job.Source == "job-3"
		},
	}

	results := runJobs(t, tr, 4, 10)

	require.Len(t, results, 10, "the run completes despite a failing job")

	var succeeded, failed int
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSucceeded:
			succeeded++
		case OutcomeFailed:
			failed++
			assert.Equal(t, "job-3", r.Job.Source, "only the injected job fails")
		}
	}
	assert.Equal(t, 9, succeeded, "siblings are not cancelled")
	assert.Equal(t, 1, failed, "failure count is accurate")
}

func TestExecutorReport(t *testing.T) {
	results := make(chan Result, 1)
	exec, err := NewExecutor(Options{Limit: 1, Transformer: &countingTransformer{}, Results: results})
	require.NoError(t, err, "creating executor")

	want := NewFailure(Job{Source: "/src/a.png"}, errors.New("no stable path"))
	exec.Report(want)

	got := <-results
	assert.Equal(t, want, got, "reported results pass through unchanged")
}

func TestNewExecutorValidation(t *testing.T) {
	results := make(chan Result)

	_, err := NewExecutor(Options{Limit: 0, Transformer: &countingTransformer{}, Results: results})
	assert.Error(t, err, "limit must be positive")

	_, err = NewExecutor(Options{Limit: 1, Results: results})
	assert.Error(t, err, "transformer is required")

	_, err = NewExecutor(Options{Limit: 1, Transformer: &countingTransformer{}})
	assert.Error(t, err, "results channel is required")
}

func TestSubmitHonorsCancelledContext(t *testing.T) {
	results := make(chan Result, 1)
	exec, err := NewExecutor(Options{Limit: 1, Transformer: &countingTransformer{delay: 50 * time.Millisecond}, Results: results})
	require.NoError(t, err, "creating executor")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, exec.Submit(ctx, Job{Source: "job-0"}), "first submit gets the only slot")

	cancel()
	err = exec.Submit(ctx, Job{Source: "job-1"})
	assert.Error(t, err, "a cancelled context aborts slot acquisition")

	exec.Wait()
	close(results)
	r := <-results
	assert.Equal(t, OutcomeSucceeded, r.Outcome, "the in-flight job still completes")
}
