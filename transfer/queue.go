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
	queuepkg "github.com/Workiva/go-datastructures/queue"
)

// completion pairs an executed task with the callback that consumes it.
type completion struct {
	task       *Task
	onComplete func(*Task)
}

// completionQueue carries executed tasks from the worker pool back to the
// single completion loop.
type completionQueue struct {
	q     *queuepkg.Queue
	batch int64
}

func newCompletionQueue(hint, batch int64) *completionQueue {
	return &completionQueue{q: queuepkg.New(hint), batch: batch}
}

func (c *completionQueue) put(e completion) error {
	return c.q.Put(e)
}

// take blocks until at least one completion is queued and returns up to
// batch of them. It fails with queue.ErrDisposed once the queue is disposed.
func (c *completionQueue) take() ([]completion, error) {
	items, err := c.q.Get(c.batch)
	if err != nil {
		return nil, err
	}
	out := make([]completion, 0, len(items))
	for _, item := range items {
		e, ok := item.(completion)
		if !ok {
			internalLogger.errorf("invalid completion element %T", item)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *completionQueue) size() int64 {
	return c.q.Len()
}

// dispose wakes a blocked take and returns whatever was still queued.
func (c *completionQueue) dispose() []completion {
	var out []completion
	for _, item := range c.q.Dispose() {
		if e, ok := item.(completion); ok {
			out = append(out, e)
		}
	}
	return out
}
