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
)

// Kind classifies why a transfer call failed.
type Kind uint8

const (
	// KindInvalidArgument is a malformed call, reported synchronously.
	KindInvalidArgument Kind = iota + 1
	// KindDeviceOpen means the bus node could not be opened.
	KindDeviceOpen
	// KindAllocation means the read buffer could not be allocated.
	KindAllocation
	// KindTransfer means the combined bus transaction failed.
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindDeviceOpen:
		return "DeviceOpenFailure"
	case KindAllocation:
		return "AllocationFailure"
	case KindTransfer:
		return "TransferFailure"
	default:
		return "Unknown"
	}
}

const (
	msgArgCount   = "expected 4 arguments"
	msgBus        = "bus must be a string"
	msgAddress    = "address must be a number"
	msgWriteData  = "write data must be a buffer"
	msgReadLength = "read length must be a number"

	msgOpenBus    = "Failed to open the I2C bus"
	msgAllocation = "Memory allocation failed"
	msgTransfer   = "Failed to transfer I2C data"
)

// Error is the value a call fails or a promise rejects with. Its text is
// exactly Msg; the operating system cause, if any, is kept in Err.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target without a message
// matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	// ErrInvalidArgument matches every argument validation failure.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	// ErrOpenBus is the rejection for a bus node that cannot be opened.
	ErrOpenBus = &Error{Kind: KindDeviceOpen, Msg: msgOpenBus}
	// ErrAllocation is the rejection for a read buffer that cannot be allocated.
	ErrAllocation = &Error{Kind: KindAllocation, Msg: msgAllocation}
	// ErrTransfer is the rejection for a failed combined transaction.
	ErrTransfer = &Error{Kind: KindTransfer, Msg: msgTransfer}

	// ErrRuntimeClosed is returned by calls made after Close.
	ErrRuntimeClosed = errors.New("i2c transfer runtime is closed")
)

func invalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

func failure(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the Kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
