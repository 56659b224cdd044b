// Copyright 2025 Poiesic Systems
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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/natiq/core"
)

// Runner executes feature invocations on a bounded worker pool. Invocations
// of one session run one at a time, while different sessions run
// concurrently up to the pool size.
type Runner struct {
	pool   *ants.Pool
	mu     sync.Mutex
	locks  map[core.SessionID]*sessionLock
	logger *slog.Logger
}

// sessionLock is a one-slot semaphore; acquire selects on it alongside ctx.
type sessionLock struct {
	held chan struct{}
	refs int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithPoolSize sets the number of invocations that may run at once.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) RunnerOption {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithRunnerLogger sets a custom logger.
// Default is slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "runner")
		return nil
	}
}

// NewRunner creates a runner with its worker pool.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	pool, err := ants.NewPool(max(1, runtime.NumCPU()))
	if err != nil {
		return nil, err
	}
	r := &Runner{
		pool:   pool,
		locks:  make(map[core.SessionID]*sessionLock),
		logger: slog.Default().With("component", "runner"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

// Do waits for the session's lock in the calling goroutine, then runs fn on
// the pool and waits for it to finish. Callers queued behind a busy session
// never occupy a worker. A panic in fn is returned as an error.
func (r *Runner) Do(ctx context.Context, sid core.SessionID, fn func(ctx context.Context) error) error {
	if r.pool.IsClosed() {
		return ErrRunnerClosed
	}

	lock, err := r.acquire(ctx, sid)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	err = r.pool.Submit(func() {
		defer r.release(sid, lock)
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("invocation panicked", "session", sid, "panic", p)
				done <- fmt.Errorf("invocation panicked: %v", p)
			}
		}()

		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- fn(ctx)
	})
	if err != nil {
		r.release(sid, lock)
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrRunnerClosed
		}
		return err
	}
	return <-done
}

// Running returns the number of invocations currently executing.
func (r *Runner) Running() int {
	return r.pool.Running()
}

// Release stops accepting work and releases the pool.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

func (r *Runner) acquire(ctx context.Context, sid core.SessionID) (*sessionLock, error) {
	r.mu.Lock()
	lock, ok := r.locks[sid]
	if !ok {
		lock = &sessionLock{held: make(chan struct{}, 1)}
		r.locks[sid] = lock
	}
	lock.refs++
	r.mu.Unlock()

	select {
	case lock.held <- struct{}{}:
		return lock, nil
	case <-ctx.Done():
		r.unref(sid, lock)
		return nil, ctx.Err()
	}
}

func (r *Runner) release(sid core.SessionID, lock *sessionLock) {
	<-lock.held
	r.unref(sid, lock)
}

func (r *Runner) unref(sid core.SessionID, lock *sessionLock) {
	r.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, sid)
	}
	r.mu.Unlock()
}
