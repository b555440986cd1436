// Package memory defines the basic interfaces for working with a 6502
// family memory map. Since each implementation being emulated has its own
// specific mapping (including mirrored and banked regions) the map itself
// is built from a small set of composable interfaces rather than a single
// concrete type.
package memory

import (
	"fmt"
	"math/rand"
	"time"
)

// Bank is the basic read/write/reset interface every addressable device
// in the memory map implements.
type Bank interface {
	// Read returns the data byte stored at addr. Read may have side
	// effects (e.g. a VIA clearing an interrupt flag); see Peeker for a
	// side-effect-free alternative.
	Read(addr uint16) uint8
	// Write updates addr with the new value. For read-only devices this
	// is a no-op.
	Write(addr uint16, val uint8)
	// PowerOn performs power-on reset of the device. This is
	// implementation specific as to whether state is randomized or
	// preset to zero.
	PowerOn()
	// Parent holds a reference (if non-nil) to the next level memory
	// controller. A chain of these can be walked to find the outermost
	// one and query transient state such as the databus value.
	Parent() Bank
	// DatabusVal returns the last value seen to cross the data bus.
	DatabusVal() uint8
}

// Peeker is implemented by devices whose Read has observable side effects
// (VIA register reads, the ROMSEL write-only stub). Peek must return the
// same information a debugger would want without mutating any state.
type Peeker interface {
	Peek(addr uint16) uint8
}

// PeekBank reads addr from b without side effects, using Peek if b
// implements Peeker and falling back to Read otherwise (safe for RAM/ROM
// and any other device with no read side effects).
func PeekBank(b Bank, addr uint16) uint8 {
	if p, ok := b.(Peeker); ok {
		return p.Peek(addr)
	}
	return b.Read(addr)
}

// LatestDatabusVal hunts up a chain of Banks until it finds the outermost
// one and returns the DatabusVal from it.
func LatestDatabusVal(b Bank) uint8 {
	if b.Parent() != nil {
		return LatestDatabusVal(b.Parent())
	}
	return b.DatabusVal()
}

// ram implements a standard R/W interface to an address space for 8 bit
// systems. If mapped into a larger memory map it's up to the caller to
// mask addr before calling Read/Write (or to use the Region abstraction
// below, which does this automatically).
type ram struct {
	ram        []uint8
	parent     Bank
	databusVal uint8
}

// New8BitRAMBank creates a R/W RAM bank of the given size. Size must be a
// power of 2. If smaller than 64k (uint16 max) aliasing occurs on
// Read/Write.
func New8BitRAMBank(size int, parent Bank) (Bank, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("invalid size: %d must be a power of 2", size)
	}
	if size > 1<<16 {
		return nil, fmt.Errorf("invalid size: %d is bigger than 64k", size)
	}
	return &ram{ram: make([]uint8, size), parent: parent}, nil
}

// Read implements the Bank interface. Address is clipped to the buffer length.
func (r *ram) Read(addr uint16) uint8 {
	addr &= uint16(len(r.ram) - 1)
	val := r.ram[addr]
	r.databusVal = val
	return val
}

// Peek implements Peeker; plain RAM has no read side effects.
func (r *ram) Peek(addr uint16) uint8 {
	addr &= uint16(len(r.ram) - 1)
	return r.ram[addr]
}

// Write implements the Bank interface. Address is clipped to the buffer length.
func (r *ram) Write(addr uint16, val uint8) {
	addr &= uint16(len(r.ram) - 1)
	r.databusVal = val
	r.ram[addr] = val
}

// PowerOn implements the Bank interface and randomizes the RAM, matching
// real hardware's undefined power-on contents.
func (r *ram) PowerOn() {
	rand.Seed(time.Now().UnixNano())
	for i := range r.ram {
		r.ram[i] = uint8(rand.Intn(256))
	}
}

// Parent implements the Bank interface.
func (r *ram) Parent() Bank {
	return r.parent
}

// DatabusVal returns the most recently seen databus value.
func (r *ram) DatabusVal() uint8 {
	return r.databusVal
}

// Clear zeroes the RAM. Used where a cold reset (rather than power-on
// randomization) is wanted, e.g. Machine.Reset.
func (r *ram) Clear() {
	for i := range r.ram {
		r.ram[i] = 0
	}
}

// NewZeroedRAMBank is like New8BitRAMBank but starts zeroed instead of
// randomized, matching the documented BBC reset behaviour ("RAM zeroed")
// rather than the generic 6502-core power-on convention.
func NewZeroedRAMBank(size int) (Bank, error) {
	b, err := New8BitRAMBank(size, nil)
	if err != nil {
		return nil, err
	}
	b.(*ram).Clear()
	return b, nil
}

// ramBlock is a fixed-size RAM bank addressed by bounds check rather than
// power-of-2 masking: for RAM too oddly sized to alias across the full
// 16-bit space (shadow RAM, ANDY RAM), reached only through an address a
// caller has already translated down to a 0-based offset.
type ramBlock struct {
	ram        []uint8
	parent     Bank
	databusVal uint8
}

// NewRAMBank allocates a R/W RAM bank of exactly size bytes with no
// power-of-2 requirement; an out-of-range addr reads as open-bus 0xFF and
// discards writes rather than panicking.
func NewRAMBank(size int, parent Bank) (Bank, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size: %d must be positive", size)
	}
	return &ramBlock{ram: make([]uint8, size), parent: parent}, nil
}

func (r *ramBlock) Read(addr uint16) uint8 {
	if int(addr) >= len(r.ram) {
		r.databusVal = 0xFF
		return 0xFF
	}
	val := r.ram[addr]
	r.databusVal = val
	return val
}

func (r *ramBlock) Peek(addr uint16) uint8 {
	if int(addr) >= len(r.ram) {
		return 0xFF
	}
	return r.ram[addr]
}

func (r *ramBlock) Write(addr uint16, val uint8) {
	r.databusVal = val
	if int(addr) >= len(r.ram) {
		return
	}
	r.ram[addr] = val
}

// PowerOn randomizes contents, matching ram.PowerOn's undefined
// power-on-contents convention.
func (r *ramBlock) PowerOn() {
	rand.Seed(time.Now().UnixNano())
	for i := range r.ram {
		r.ram[i] = uint8(rand.Intn(256))
	}
}

func (r *ramBlock) Parent() Bank      { return r.parent }
func (r *ramBlock) DatabusVal() uint8 { return r.databusVal }

// Clear zeroes the RAM, for a cold reset.
func (r *ramBlock) Clear() {
	for i := range r.ram {
		r.ram[i] = 0
	}
}

var (
	_ Bank   = (*ramBlock)(nil)
	_ Peeker = (*ramBlock)(nil)
)

// rom implements a read-only Bank: writes are silently discarded.
type rom struct {
	data       []uint8
	parent     Bank
	databusVal uint8
}

// NewROMBank allocates an empty ROM bank of the given size (power of 2),
// to be populated later via Load.
func NewROMBank(size int, parent Bank) (*ROM, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("invalid size: %d must be a power of 2", size)
	}
	return &ROM{rom{data: make([]uint8, size), parent: parent}}, nil
}

// ROM is the exported read-only bank type; Load lets callers populate its
// contents after construction (ROM file loading is an external concern,
// see package romload).
type ROM struct {
	rom
}

// Load copies data into the ROM, zero-padding if short and truncating (and
// reporting so) if long.
func (r *ROM) Load(data []uint8) (truncated bool) {
	n := copy(r.data, data)
	if n < len(data) {
		truncated = true
	}
	for i := n; i < len(r.data); i++ {
		r.data[i] = 0
	}
	return truncated
}

func (r *rom) Read(addr uint16) uint8 {
	addr &= uint16(len(r.data) - 1)
	val := r.data[addr]
	r.databusVal = val
	return val
}

func (r *rom) Peek(addr uint16) uint8 {
	addr &= uint16(len(r.data) - 1)
	return r.data[addr]
}

func (r *rom) Write(addr uint16, val uint8) {
	// Real ROM ignores writes; still reflects the attempted value on the
	// databus since the bus itself doesn't know the device is read-only.
	r.databusVal = val
}

func (r *rom) PowerOn() {}

func (r *rom) Parent() Bank {
	return r.parent
}

func (r *rom) DatabusVal() uint8 {
	return r.databusVal
}
