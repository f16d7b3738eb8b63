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
	"sync"
	"testing"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/stretchr/testify/assert"
)

var (
	producers        = 16
	completionsPerGo = 500
)

func testCompletion(bus string) completion {
	return completion{task: &Task{bus: bus}, onComplete: func(*Task) {}}
}

func TestCompletionQueueOrder(t *testing.T) {
	q := newCompletionQueue(8, 4)
	defer q.dispose()

	for _, bus := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.Equal(t, nil, q.put(testCompletion(bus)))
	}
	assert.Equal(t, int64(6), q.size())

	batch, err := q.take()
	assert.Equal(t, nil, err)
	assert.Equal(t, 4, len(batch), "take returns at most one batch")
	for i, bus := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, bus, batch[i].task.bus)
	}

	batch, err = q.take()
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(batch))
	assert.Equal(t, "e", batch[0].task.bus)
	assert.Equal(t, int64(0), q.size())
}

func TestCompletionQueueSkipsForeignElements(t *testing.T) {
	q := newCompletionQueue(4, 4)
	defer q.dispose()

	assert.Equal(t, nil, q.q.Put("not a completion"))
	assert.Equal(t, nil, q.put(testCompletion("a")))
	batch, err := q.take()
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(batch))
	assert.Equal(t, "a", batch[0].task.bus)
}

func TestCompletionQueueDispose(t *testing.T) {
	q := newCompletionQueue(4, 4)

	done := make(chan error)
	go func() {
		_, err := q.take()
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)

	left := q.dispose()
	assert.Equal(t, 0, len(left))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, queuepkg.ErrDisposed)
	case <-time.After(time.Second):
		t.Fatal("take still blocked after dispose")
	}
	assert.ErrorIs(t, q.put(testCompletion("a")), queuepkg.ErrDisposed)
}

func TestCompletionQueueDisposeReturnsLeftovers(t *testing.T) {
	q := newCompletionQueue(4, 4)
	assert.Equal(t, nil, q.put(testCompletion("a")))
	assert.Equal(t, nil, q.put(testCompletion("b")))
	left := q.dispose()
	assert.Equal(t, 2, len(left))
}

func TestCompletionQueueMultiProducerSingleConsumer(t *testing.T) {
	q := newCompletionQueue(64, 16)
	defer q.dispose()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < completionsPerGo; k++ {
				if err := q.put(testCompletion("bus")); err != nil {
					panic(err)
				}
			}
		}()
	}

	taken := 0
	for taken != producers*completionsPerGo {
		batch, err := q.take()
		assert.Equal(t, nil, err)
		taken += len(batch)
	}
	wg.Wait()
	assert.Equal(t, int64(0), q.size())
}

func BenchmarkCompletionQueuePutTake(b *testing.B) {
	q := newCompletionQueue(1024, 64)
	defer q.dispose()
	c := testCompletion("bus")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = q.put(c)
		_, _ = q.take()
	}
}
