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
	"bytes"
	"fmt"
	"math"
	"reflect"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

// argument positions of the call shape (bus, address, writeData, readLength)
const (
	argBus = iota
	argAddress
	argWriteData
	argReadLength
	argCount
)

// buildTask validates the positional call arguments and turns them into a
// pending Task. Every failure is an InvalidArgument error and leaves nothing
// allocated behind.
func buildTask(args []interface{}) (*Task, error) {
	if len(args) != argCount {
		return nil, invalidArgument(msgArgCount)
	}
	t := newTask()

	bus, ok := toText(args[argBus])
	if !ok {
		t.release()
		return nil, invalidArgument(msgBus)
	}
	t.bus = bus

	addr, ok := toInt32(args[argAddress])
	if !ok {
		t.release()
		return nil, invalidArgument(msgAddress)
	}
	t.addr = addr
	_, t.tenBit = args[argAddress].(i2c.TenBitAddr)

	write, ok := toBuffer(args[argWriteData])
	if !ok {
		t.release()
		return nil, invalidArgument(msgWriteData)
	}
	t.setWrite(write)

	readLength, ok := toUint32(args[argReadLength])
	if !ok {
		t.release()
		return nil, invalidArgument(msgReadLength)
	}
	t.readLength = readLength
	return t, nil
}

// settle resolves or rejects the task's promise from its outcome. A
// successful read is copied out so the pooled buffer can be released.
func settle(t *Task) error {
	data, ferr := t.result()
	if ferr != nil {
		t.deferred.reject(ferr)
		return ferr
	}
	out := make([]byte, len(data))
	copy(out, data)
	t.deferred.resolve(out)
	return nil
}

func toText(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		if rv := reflect.ValueOf(s); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "", false
		}
		return s.String(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func toInt32(v interface{}) (int32, bool) {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int32(i), true
}

func toUint32(v interface{}) (uint32, bool) {
	i, ok := toInt64(v)
	if !ok || i < 0 || i > math.MaxUint32 {
		return 0, false
	}
	return uint32(i), true
}

// toInt64 accepts every integer kind and finite floats, which are truncated
// toward zero the way a host number is read as an integer.
func toInt64(v interface{}) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(rv.Float())
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// toBuffer accepts raw byte buffers only: []byte, named byte slices and
// *bytes.Buffer. Text and generic sequences are rejected.
func toBuffer(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case *bytes.Buffer:
		if b == nil {
			return nil, false
		}
		return b.Bytes(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}
