package i2ctest

import "sync"

// Registers is a device with a byte-addressed register file. A write sets
// the register pointer from its first byte and stores the rest; reads
// continue from the pointer. The pointer wraps at the end of the file.
type Registers struct {
	mu     sync.Mutex
	mem    []byte
	ptr    int
	writes [][]byte
}

// NewRegisters creates a register file of size bytes.
func NewRegisters(size int) *Registers {
	return &Registers{mem: make([]byte, size)}
}

// Set stores data starting at reg.
func (r *Registers) Set(reg byte, data ...byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range data {
		r.mem[(int(reg)+i)%len(r.mem)] = v
	}
}

// Writes returns every payload written to the device.
func (r *Registers) Writes() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.writes))
	copy(out, r.writes)
	return out
}

func (r *Registers) Write(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, append([]byte(nil), p...))
	if len(p) == 0 {
		return nil
	}
	r.ptr = int(p[0]) % len(r.mem)
	for _, v := range p[1:] {
		r.mem[r.ptr] = v
		r.ptr = (r.ptr + 1) % len(r.mem)
	}
	return nil
}

func (r *Registers) Read(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range p {
		p[i] = r.mem[r.ptr]
		r.ptr = (r.ptr + 1) % len(r.mem)
	}
	return nil
}
