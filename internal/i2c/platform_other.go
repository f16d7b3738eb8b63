//go:build !linux

package i2c

import (
	"errors"
	"fmt"
)

// Open always fails: i2c-dev nodes only exist on Linux.
func Open(path string) (int, error) {
	return -1, fmt.Errorf("open %s: %w", path, errors.ErrUnsupported)
}

// Close is a no-op outside Linux.
func Close(fd int) error {
	return nil
}

// Interrupted is always false outside Linux.
func Interrupted(err error) bool {
	return false
}

// Transfer always fails outside Linux.
func Transfer(fd int, msgs []Message) error {
	return fmt.Errorf("ioctl I2C_RDWR: %w", errors.ErrUnsupported)
}
