// Package i2c opens Linux i2c-dev bus nodes and runs combined transactions on them.
//
// A Conn wraps one open descriptor of a bus node such as /dev/i2c-1. Transfer
// hands an ordered list of messages to the kernel as a single I2C_RDWR ioctl, so
// a write followed by a read reaches the target with a repeated start and no
// other transaction in between.
//
// The Devfs opener is instrumented with OpenTelemetry metrics and tracing
// (OTel Go API v1.30.0). Both default to no-op providers.
//
// Example usage:
//
//	dev, err := i2c.NewDevfs(i2c.Config{})
//	conn, err := dev.Open(ctx, "/dev/i2c-1")
//	defer conn.Close()
//	read := make([]byte, 3)
//	err = conn.Transfer(ctx, []i2c.Message{
//	  {Addr: 0x54, Buf: []byte{0x04}},
//	  {Addr: 0x54, Flags: i2c.FlagRead, Buf: read},
//	})
//
// Platform-specific helpers are in internal/i2c.
package i2c
