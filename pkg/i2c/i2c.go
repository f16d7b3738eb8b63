package i2c

import (
	"context"
	"errors"
	"fmt"

	internali2c "github.com/Transmission-Dynamics/i2c-transfer/internal/i2c"
)

// Message is one segment of a combined transaction.
type Message = internali2c.Message

const (
	FlagRead   = internali2c.FlagRead
	FlagTenBit = internali2c.FlagTenBit

	MaxMessageLength = internali2c.MaxMessageLength
)

var (
	ErrMessageTooLong  = internali2c.ErrMessageTooLong
	ErrTooManyMessages = internali2c.ErrTooManyMessages
)

// ErrAddressRange is returned for an address that an i2c_msg cannot carry.
var ErrAddressRange = errors.New("i2c address out of range")

const (
	maxAddr       = 0xFFFF
	maxTenBitAddr = 0x3FF
)

// TenBitAddr is a 10-bit target address. Passed where an address is expected
// it selects I2C_M_TEN; a plain integer address is always sent as given.
type TenBitAddr uint16

// TenBit marks addr as a 10-bit address.
func TenBit(addr uint16) TenBitAddr {
	return TenBitAddr(addr)
}

// ResolveAddr returns the wire address and message flags for addr. The
// address is sent unchanged; it fails with ErrAddressRange when addr does not
// fit the 16-bit address field, or the 10-bit range when tenBit is set.
func ResolveAddr(addr int32, tenBit bool) (uint16, uint16, error) {
	if tenBit {
		if addr < 0 || addr > maxTenBitAddr {
			return 0, 0, fmt.Errorf("10-bit address %#x: %w", addr, ErrAddressRange)
		}
		return uint16(addr), FlagTenBit, nil
	}
	if addr < 0 || addr > maxAddr {
		return 0, 0, fmt.Errorf("address %#x: %w", addr, ErrAddressRange)
	}
	return uint16(addr), 0, nil
}

// Conn is an open bus node. It must be closed once it is no longer in use.
type Conn interface {
	// Transfer runs msgs as one atomic bus transaction.
	Transfer(ctx context.Context, msgs []Message) error
	Close() error
}

// Opener opens bus nodes by path.
type Opener interface {
	Open(ctx context.Context, path string) (Conn, error)
}
