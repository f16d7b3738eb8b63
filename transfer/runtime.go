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

// Package transfer runs combined write-then-read I2C transactions off the
// caller's goroutine and hands back a Promise for the bytes read.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Transmission-Dynamics/i2c-transfer/api"
	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

// Report describes one completed transfer call.
type Report struct {
	ID          uuid.UUID
	Bus         string
	Addr        int32
	WriteLength int
	ReadLength  uint32
	// Err is nil on success, otherwise the *Error the promise rejected with.
	Err      error
	Duration time.Duration
}

// Observer is told about every completed call. It runs on the completion
// loop and must not block.
type Observer interface {
	ObserveTransfer(r Report)
}

// Runtime is the host for transfer calls: it validates arguments, schedules
// the device I/O on its worker pool and settles promises on its completion
// loop.
type Runtime struct {
	config    *Config
	exec      *executor
	sched     *scheduler
	metrics   *Metrics
	observers []Observer
}

var _ api.Transferer = (*Runtime)(nil)

// New creates a Runtime. A nil config selects DefaultConfig.
func New(config *Config) (*Runtime, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := VerifyConfig(config); err != nil {
		return nil, err
	}
	opener := config.Opener
	if opener == nil {
		dev, err := i2c.NewDevfs(i2c.Config{})
		if err != nil {
			return nil, fmt.Errorf("create devfs opener: %w", err)
		}
		opener = dev
	}
	sched, err := newScheduler(config)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		config:    config,
		exec:      &executor{opener: opener, alloc: newAllocator(config.MaxReadLength)},
		sched:     sched,
		observers: append([]Observer(nil), config.Observers...),
	}
	if config.Registerer != nil {
		m, err := NewMetrics(config.Registerer)
		if err != nil {
			sched.close()
			return nil, err
		}
		r.metrics = m
		r.observers = append(r.observers, m)
	}
	internalLogger.infof("transfer runtime started, worker pool size %d", config.WorkerPoolSize)
	return r, nil
}

// I2CTransfer is the transfer entry point. It takes exactly four positional
// arguments: bus (string), address (number), writeData (byte buffer) and
// readLength (non-negative number). Malformed calls fail synchronously with
// an InvalidArgument *Error and schedule nothing. Otherwise the returned
// promise resolves with exactly readLength bytes, or rejects with an *Error
// whose text is "Failed to open the I2C bus", "Memory allocation failed" or
// "Failed to transfer I2C data".
//
// An address of type i2c.TenBitAddr is sent as a 10-bit address; any other
// number is sent unchanged as a 7-bit address.
//
// The write data is copied before I2CTransfer returns.
func (r *Runtime) I2CTransfer(args ...interface{}) (*Promise, error) {
	t, err := buildTask(args)
	if err != nil {
		internalLogger.debugf("rejected call: %v", err)
		return nil, err
	}
	p := newPromise(t.id)
	t.deferred = p
	t.submitted = time.Now()
	internalLogger.tracef("transfer %s: submitting %s addr 0x%02x write %d read %d",
		t.id, t.bus, t.addr, len(t.writePayload()), t.readLength)
	if r.metrics != nil {
		r.metrics.submitted()
	}
	// t belongs to the scheduler once submit succeeds
	if err := r.sched.submit(t, r.exec.execute, r.complete); err != nil {
		if r.metrics != nil {
			r.metrics.abandoned()
		}
		t.release()
		return nil, err
	}
	return p, nil
}

// Transfer is the typed form of I2CTransfer that waits for the result.
// Returning early because ctx is done does not cancel the transfer.
func (r *Runtime) Transfer(ctx context.Context, bus string, addr int32, write []byte, readLength uint32) ([]byte, error) {
	p, err := r.I2CTransfer(bus, addr, write, readLength)
	if err != nil {
		return nil, err
	}
	return p.Await(ctx)
}

// complete runs on the completion loop and consumes t.
func (r *Runtime) complete(t *Task) {
	defer t.release()
	report := Report{
		ID:          t.id,
		Bus:         t.bus,
		Addr:        t.addr,
		WriteLength: len(t.writePayload()),
		ReadLength:  t.readLength,
		Duration:    time.Since(t.submitted),
	}
	if _, ferr := t.result(); ferr != nil {
		report.Err = ferr
		internalLogger.debugf("transfer %s: rejected: %v", t.id, ferr)
	}
	// observers see the outcome before anyone awaiting the promise does
	r.notify(report)
	_ = settle(t)
}

func (r *Runtime) notify(report Report) {
	for _, o := range r.observers {
		func() {
			defer func() {
				if p := recover(); p != nil {
					internalLogger.errorf("transfer %s: observer %T panic: %v", report.ID, o, p)
				}
			}()
			o.ObserveTransfer(report)
		}()
	}
}

// Running is the number of live worker goroutines, busy or idle.
func (r *Runtime) Running() int {
	return r.sched.running()
}

// Closed reports whether Close has been called.
func (r *Runtime) Closed() bool {
	return r.sched.isClosed()
}

// Close stops accepting calls and waits until every submitted transfer has
// settled its promise. It must not be called from an Observer.
func (r *Runtime) Close() error {
	if r.sched.isClosed() {
		return nil
	}
	r.sched.close()
	internalLogger.infof("transfer runtime closed")
	return nil
}
