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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

type outcome uint8

const (
	outcomePending outcome = iota
	outcomeSuccess
	outcomeFailure
)

// Task is the plain-data descriptor of one transfer call. It is owned by
// exactly one pipeline stage at a time: built by the marshaler, handed to
// the scheduler, filled in by the executor and released by the completion
// step. No stage keeps a reference after handing it on.
type Task struct {
	id         uuid.UUID
	bus        string
	addr       int32
	tenBit     bool
	write      *bytebufferpool.ByteBuffer
	readLength uint32

	// set by the executor
	read  *bytebufferpool.ByteBuffer
	state outcome
	err   *Error

	deferred  *Promise
	submitted time.Time
}

func newTask() *Task {
	return &Task{id: uuid.New()}
}

// setWrite copies p so the caller may reuse its buffer immediately.
func (t *Task) setWrite(p []byte) {
	t.write = bytebufferpool.Get()
	t.write.B = append(t.write.B[:0], p...)
}

func (t *Task) writePayload() []byte {
	if t.write == nil {
		return nil
	}
	return t.write.B
}

func (t *Task) succeed() {
	if t.state != outcomePending {
		panic(fmt.Sprintf("transfer %s: outcome already set", t.id))
	}
	if t.read == nil || len(t.read.B) != int(t.readLength) {
		panic(fmt.Sprintf("transfer %s: read buffer does not hold %d bytes", t.id, t.readLength))
	}
	t.state = outcomeSuccess
}

func (t *Task) fail(err *Error) {
	if t.state != outcomePending {
		panic(fmt.Sprintf("transfer %s: outcome already set", t.id))
	}
	t.state = outcomeFailure
	t.err = err
}

// result returns the read bytes or the failure. The returned slice aliases
// the pooled read buffer and is only valid until release.
func (t *Task) result() ([]byte, *Error) {
	switch t.state {
	case outcomeSuccess:
		return t.read.B, nil
	case outcomeFailure:
		return nil, t.err
	default:
		return nil, failure(KindTransfer, msgTransfer, fmt.Errorf("transfer %s completed without an outcome", t.id))
	}
}

// release returns every pooled buffer and drops the remaining references.
// It is safe on a partially built task.
func (t *Task) release() {
	if t.write != nil {
		bytebufferpool.Put(t.write)
		t.write = nil
	}
	if t.read != nil {
		bytebufferpool.Put(t.read)
		t.read = nil
	}
	t.bus = ""
	t.deferred = nil
}
