//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const ioctlRdwr = 0x0707 // I2C_RDWR

// msg mirrors struct i2c_msg from <linux/i2c.h>.
type msg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

// rdwrData mirrors struct i2c_rdwr_ioctl_data.
type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// Open opens the bus node read-write and returns the raw descriptor.
func Open(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	return fd, nil
}

// Close releases a descriptor returned by Open.
func Close(fd int) error {
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close fd %d: %w", fd, err)
	}
	return nil
}

// Interrupted reports whether err is a syscall interrupted by a signal.
func Interrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// Transfer issues msgs as a single I2C_RDWR ioctl; the adapter runs them
// back to back with repeated starts and no other transaction in between.
func Transfer(fd int, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > MaxMessages {
		return fmt.Errorf("%d messages: %w", len(msgs), ErrTooManyMessages)
	}
	raw := make([]msg, len(msgs))
	for i, m := range msgs {
		if len(m.Buf) > MaxMessageLength {
			return fmt.Errorf("message %d: %w", i, ErrMessageTooLong)
		}
		raw[i] = msg{addr: m.Addr, flags: m.Flags, len: uint16(len(m.Buf))}
		if len(m.Buf) > 0 {
			raw[i].buf = uintptr(unsafe.Pointer(&m.Buf[0]))
		}
	}
	data := rdwrData{
		msgs:  uintptr(unsafe.Pointer(&raw[0])),
		nmsgs: uint32(len(raw)),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(ioctlRdwr), uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(raw)
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return fmt.Errorf("ioctl I2C_RDWR: %w", errno)
	}
	return nil
}
