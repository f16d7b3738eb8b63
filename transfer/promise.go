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
	"context"
	"sync"

	"github.com/google/uuid"
)

// Promise is the pending result of one I2CTransfer call. It settles exactly
// once, on the runtime's completion loop.
type Promise struct {
	id   uuid.UUID
	once sync.Once
	done chan struct{}
	data []byte
	err  error
}

func newPromise(id uuid.UUID) *Promise {
	return &Promise{id: id, done: make(chan struct{})}
}

// ID identifies the transfer in logs, spans and reports.
func (p *Promise) ID() uuid.UUID {
	return p.id
}

// Done is closed once the promise has settled.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has resolved or rejected.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the promise settles or ctx is done. Giving up on the
// wait does not cancel the transfer; it still runs to completion.
func (p *Promise) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-p.done:
		return p.data, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Promise) resolve(data []byte) {
	p.settle(data, nil)
}

func (p *Promise) reject(err error) {
	p.settle(nil, err)
}

func (p *Promise) settle(data []byte, err error) {
	settled := false
	p.once.Do(func() {
		p.data, p.err = data, err
		close(p.done)
		settled = true
	})
	if !settled {
		internalLogger.errorf("transfer %s: promise settled twice", p.id)
	}
}
