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
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/valyala/bytebufferpool"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

// largeAllocation is the read size from which the allocator checks the
// memory the system reports as available.
const largeAllocation = 64 << 10

var (
	errReadTooLarge = errors.New("read length exceeds the configured maximum")
	errLowMemory    = errors.New("not enough available memory")
)

type allocator struct {
	max       uint32
	available func() (uint64, error)
}

func newAllocator(limit uint32) *allocator {
	return &allocator{max: limit, available: availableMemory}
}

func availableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// alloc returns a zeroed pooled buffer of exactly n bytes.
func (a *allocator) alloc(n uint32) (*bytebufferpool.ByteBuffer, error) {
	if n > a.max {
		return nil, fmt.Errorf("%d bytes: %w", n, errReadTooLarge)
	}
	if n >= largeAllocation {
		avail, err := a.available()
		if err != nil {
			internalLogger.debugf("available memory unknown: %v", err)
		} else if avail < uint64(n) {
			return nil, fmt.Errorf("%d bytes requested, %d available: %w", n, avail, errLowMemory)
		}
	}
	buf := bytebufferpool.Get()
	if cap(buf.B) < int(n) {
		buf.B = make([]byte, n)
	} else {
		buf.B = buf.B[:n]
		clear(buf.B)
	}
	return buf, nil
}

// executor performs the blocking device I/O of a task. It only reads and
// writes Task fields and never touches the caller's values.
type executor struct {
	opener i2c.Opener
	alloc  *allocator
}

func (e *executor) execute(t *Task) {
	ctx := context.Background()
	conn, err := e.opener.Open(ctx, t.bus)
	if err != nil {
		internalLogger.debugf("transfer %s: open %s: %v", t.id, t.bus, err)
		t.fail(failure(KindDeviceOpen, msgOpenBus, err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			internalLogger.warnf("transfer %s: close %s: %v", t.id, t.bus, err)
		}
	}()

	buf, err := e.alloc.alloc(t.readLength)
	if err != nil {
		internalLogger.debugf("transfer %s: %v", t.id, err)
		t.fail(failure(KindAllocation, msgAllocation, err))
		return
	}
	t.read = buf

	addr, flags, err := i2c.ResolveAddr(t.addr, t.tenBit)
	if err != nil {
		internalLogger.debugf("transfer %s: %s: %v", t.id, t.bus, err)
		t.fail(failure(KindTransfer, msgTransfer, err))
		return
	}
	msgs := []i2c.Message{
		{Addr: addr, Flags: flags, Buf: t.writePayload()},
		{Addr: addr, Flags: flags | i2c.FlagRead, Buf: buf.B},
	}
	if err := conn.Transfer(ctx, msgs); err != nil {
		internalLogger.debugf("transfer %s: %s addr 0x%02x: %v", t.id, t.bus, addr, err)
		t.fail(failure(KindTransfer, msgTransfer, err))
		return
	}
	internalLogger.tracef("transfer %s: %s addr 0x%02x wrote %d read %d", t.id, t.bus, addr, len(msgs[0].Buf), len(buf.B))
	t.succeed()
}
