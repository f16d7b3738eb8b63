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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskOutcome(t *testing.T) {
	task := newTask()
	task.readLength = 2
	_, ferr := task.result()
	require.NotNil(t, ferr, "pending task has no data")
	assert.Equal(t, KindTransfer, ferr.Kind)

	task.read, _ = newAllocator(8).alloc(2)
	task.succeed()
	data, ferr := task.result()
	assert.Nil(t, ferr)
	assert.Equal(t, []byte{0, 0}, data)

	assert.Panics(t, task.succeed)
	assert.Panics(t, func() { task.fail(failure(KindTransfer, msgTransfer, nil)) })
	task.release()
}

func TestTaskSucceedChecksLength(t *testing.T) {
	task := newTask()
	task.readLength = 4
	assert.Panics(t, task.succeed, "no read buffer")

	task.read, _ = newAllocator(8).alloc(3)
	assert.Panics(t, task.succeed, "short read buffer")
	task.release()
}

func TestTaskFail(t *testing.T) {
	task := newTask()
	task.fail(failure(KindDeviceOpen, msgOpenBus, nil))
	data, ferr := task.result()
	assert.Nil(t, data)
	assert.Equal(t, ErrOpenBus.Error(), ferr.Error())
	assert.Panics(t, task.succeed)
}

func TestTaskRelease(t *testing.T) {
	task := newTask()
	task.bus = "/dev/i2c-1"
	task.setWrite([]byte{1, 2, 3})
	task.read, _ = newAllocator(8).alloc(4)
	task.deferred = newPromise(task.id)

	task.release()
	assert.Nil(t, task.write)
	assert.Nil(t, task.read)
	assert.Nil(t, task.deferred)
	assert.Empty(t, task.bus)
	assert.Nil(t, task.writePayload())

	// a second release has nothing left to return
	task.release()
}

func TestTaskWriteCopy(t *testing.T) {
	src := []byte{9, 8, 7}
	task := newTask()
	defer task.release()
	task.setWrite(src)
	src[0] = 0
	assert.Equal(t, []byte{9, 8, 7}, task.writePayload())
	assert.NotEqual(t, newTask().id, task.id)
}
