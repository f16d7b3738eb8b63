// Package api defines public API contracts for i2c-transfer.
package api

import "context"

// Transferer runs one combined write-then-read transaction on an I2C bus and
// waits for the bytes read.
type Transferer interface {
	Transfer(ctx context.Context, bus string, addr int32, write []byte, readLength uint32) ([]byte, error)
}
