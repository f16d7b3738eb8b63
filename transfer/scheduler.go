/*
 * Copyright 2025 Transmission Dynamics Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package transfer

import (
	"errors"
	"fmt"
	"sync"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"
)

// scheduler runs tasks on a background worker pool and delivers every
// executed task to one completion loop goroutine, so completion callbacks
// never run concurrently with each other.
type scheduler struct {
	pool        *ants.Pool
	completions *completionQueue

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	loopDone chan struct{}
}

func newScheduler(config *Config) (*scheduler, error) {
	pool, err := ants.NewPool(config.WorkerPoolSize,
		ants.WithExpiryDuration(config.WorkerExpiry),
		ants.WithLogger(poolLogger),
		ants.WithPanicHandler(func(p interface{}) {
			internalLogger.errorf("worker panic escaped the transfer wrapper: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	s := &scheduler{
		pool:        pool,
		completions: newCompletionQueue(config.CompletionQueueHint, config.CompletionBatch),
		loopDone:    make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// submit hands t to the worker pool. work runs on a worker; onComplete runs
// afterwards on the completion loop. Both run exactly once per accepted task.
func (s *scheduler) submit(t *Task, work, onComplete func(*Task)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrRuntimeClosed
	}
	s.inflight.Add(1)
	err := s.pool.Submit(func() {
		defer s.finish(t, onComplete)
		work(t)
	})
	if err != nil {
		s.inflight.Done()
		return fmt.Errorf("submit transfer %s: %w", t.id, err)
	}
	return nil
}

// finish runs on the worker after work returns or panics.
func (s *scheduler) finish(t *Task, onComplete func(*Task)) {
	if r := recover(); r != nil {
		internalLogger.errorf("transfer %s: executor panic: %v", t.id, r)
		if t.state == outcomePending {
			t.fail(failure(KindTransfer, msgTransfer, fmt.Errorf("executor panic: %v", r)))
		}
	}
	if err := s.completions.put(completion{task: t, onComplete: onComplete}); err != nil {
		// the queue is only disposed after every in-flight task completed
		internalLogger.errorf("transfer %s: queue completion: %v", t.id, err)
		s.inflight.Done()
	}
}

func (s *scheduler) loop() {
	defer close(s.loopDone)
	for {
		batch, err := s.completions.take()
		if err != nil {
			if errors.Is(err, queuepkg.ErrDisposed) {
				return
			}
			internalLogger.errorf("completion loop: %v", err)
			continue
		}
		for _, c := range batch {
			s.complete(c)
		}
	}
}

func (s *scheduler) complete(c completion) {
	defer s.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			internalLogger.errorf("transfer %s: completion panic: %v", c.task.id, r)
		}
	}()
	c.onComplete(c.task)
}

func (s *scheduler) running() int {
	return s.pool.Running()
}

func (s *scheduler) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// close stops accepting tasks, waits until every accepted task has been
// completed, then stops the completion loop and the pool. It must not be
// called from a completion callback.
func (s *scheduler) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
	if left := s.completions.dispose(); len(left) > 0 {
		internalLogger.errorf("%d completions left after drain", len(left))
	}
	<-s.loopDone
	s.pool.Release()
}
