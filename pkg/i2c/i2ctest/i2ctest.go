// Package i2ctest provides an in-memory I2C bus for exercising code built on package i2c.
package i2ctest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

// ErrNack is returned when no device answers at a message's address.
var ErrNack = errors.New("i2ctest: address not acknowledged")

// Device is a target attached to a simulated bus.
type Device interface {
	Write(p []byte) error
	Read(p []byte) error
}

// Segment is one recorded message. Data holds the bytes written, or the
// bytes returned for a read.
type Segment struct {
	Addr  uint16
	Flags uint16
	Data  []byte
}

// Transaction is one recorded combined transaction.
type Transaction []Segment

// Opener hands out connections to registered buses.
type Opener struct {
	mu    sync.Mutex
	buses map[string]*Bus
}

// NewOpener creates an Opener without buses.
func NewOpener() *Opener {
	return &Opener{buses: make(map[string]*Bus)}
}

// AddBus registers a bus node at path and returns it.
func (o *Opener) AddBus(path string) *Bus {
	o.mu.Lock()
	defer o.mu.Unlock()
	b := &Bus{path: path, devices: make(map[uint16]Device)}
	o.buses[path] = b
	return b
}

// Open implements i2c.Opener. Unknown paths fail like a missing device node.
func (o *Opener) Open(_ context.Context, path string) (i2c.Conn, error) {
	o.mu.Lock()
	b, ok := o.buses[path]
	o.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	b.mu.Lock()
	b.opens++
	b.live++
	b.mu.Unlock()
	return &conn{bus: b}, nil
}

// Bus is a simulated adapter. Transactions on one bus are serialized.
type Bus struct {
	mu       sync.Mutex
	path     string
	devices  map[uint16]Device
	log      []Transaction
	opens    int
	live     int
	hold     chan struct{}
	failNext error
}

// Attach places dev at addr.
func (b *Bus) Attach(addr uint16, dev Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = dev
}

// Transactions returns the transactions seen so far.
func (b *Bus) Transactions() []Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Transaction, len(b.log))
	copy(out, b.log)
	return out
}

// Opens is the number of successful opens.
func (b *Bus) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

// OpenConns is the number of connections not closed yet.
func (b *Bus) OpenConns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Hold blocks every transfer until the returned release func is called.
func (b *Bus) Hold() (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.hold = ch
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.hold = nil
			b.mu.Unlock()
			close(ch)
		})
	}
}

// FailNext makes the next transaction fail with err.
func (b *Bus) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

type conn struct {
	bus    *Bus
	closed bool
}

func (c *conn) Transfer(_ context.Context, msgs []i2c.Message) error {
	b := c.bus
	b.mu.Lock()
	hold := b.hold
	b.mu.Unlock()
	if hold != nil {
		<-hold
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c.closed {
		return fs.ErrClosed
	}
	if err := b.failNext; err != nil {
		b.failNext = nil
		return err
	}
	tx := make(Transaction, 0, len(msgs))
	defer func() {
		b.log = append(b.log, tx)
	}()
	for i, m := range msgs {
		if len(m.Buf) > i2c.MaxMessageLength {
			return fmt.Errorf("message %d: %w", i, i2c.ErrMessageTooLong)
		}
		dev, ok := b.devices[m.Addr]
		if !ok {
			return fmt.Errorf("addr 0x%02x: %w", m.Addr, ErrNack)
		}
		var err error
		if m.Flags&i2c.FlagRead != 0 {
			err = dev.Read(m.Buf)
		} else {
			err = dev.Write(m.Buf)
		}
		tx = append(tx, Segment{Addr: m.Addr, Flags: m.Flags, Data: append([]byte(nil), m.Buf...)})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) Close() error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	if c.closed {
		return fs.ErrClosed
	}
	c.closed = true
	c.bus.live--
	return nil
}
