// Package i2c contains platform-specific helpers for the Linux i2c-dev interface.
package i2c

import "errors"

// Message is one segment of a combined I2C_RDWR transaction.
// Buf is written to the device, or filled from it when Flags has FlagRead.
type Message struct {
	Addr  uint16
	Flags uint16
	Buf   []byte
}

const (
	// FlagRead marks a message as a read (I2C_M_RD).
	FlagRead uint16 = 0x0001
	// FlagTenBit marks a 10-bit target address (I2C_M_TEN).
	FlagTenBit uint16 = 0x0010

	// MaxMessageLength is the largest payload an i2c_msg can describe.
	MaxMessageLength = 0xFFFF
	// MaxMessages is I2C_RDWR_IOCTL_MAX_MSGS.
	MaxMessages = 42
)

var (
	ErrMessageTooLong  = errors.New("i2c message longer than 65535 bytes")
	ErrTooManyMessages = errors.New("too many messages in one i2c transaction")
)

// Function implementations are provided in platform-specific files (platform_linux.go, platform_other.go).
