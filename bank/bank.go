// Package bank implements the 16-slot "sideways" memory used at
// 0x8000-0xBFFF on the BBC Micro: one of up to 16 populated 16 KiB slots
// (ROM or RAM) is selected at a time and presented through the memory.Bank
// interface like any other device.
package bank

import "github.com/jmchacon/beeb/memory"

// SlotSize is the fixed size, in bytes, of each sideways slot.
const SlotSize = 16 * 1024

// NumSlots is the number of ROMSEL-addressable slots.
const NumSlots = 16

// Sideways presents one of 16 statically configured slots at a time.
// Unpopulated slots read 0xFF and discard writes, matching open-bus
// behaviour for an empty sideways socket.
type Sideways struct {
	slots    [NumSlots]memory.Bank
	selected uint8 // 0..15, masked on Select
	parent   memory.Bank
	databus  uint8
}

// New builds a Sideways bank with no slots populated. Use SetSlot to
// install devices into specific slots before use.
func New(parent memory.Bank) *Sideways {
	return &Sideways{parent: parent}
}

// SetSlot installs dev (a ROM or RAM Bank) into the given slot, which must
// be 0..15.
func (s *Sideways) SetSlot(slot int, dev memory.Bank) {
	if slot < 0 || slot >= NumSlots {
		return
	}
	s.slots[slot] = dev
}

// Select changes the active slot; only the low 4 bits of bank are used
// (invariant I3: exactly one slot selected at any time).
func (s *Sideways) Select(bank uint8) {
	s.selected = bank & 0x0F
}

// Selected returns the currently active slot index.
func (s *Sideways) Selected() uint8 {
	return s.selected
}

// active returns the currently selected slot's device, or nil if
// unpopulated.
func (s *Sideways) active() memory.Bank {
	return s.slots[s.selected]
}

// Read implements memory.Bank over the active slot.
func (s *Sideways) Read(addr uint16) uint8 {
	dev := s.active()
	if dev == nil {
		s.databus = 0xFF
		return 0xFF
	}
	s.databus = dev.Read(addr)
	return s.databus
}

// Peek implements memory.Peeker over the active slot.
func (s *Sideways) Peek(addr uint16) uint8 {
	dev := s.active()
	if dev == nil {
		return 0xFF
	}
	return memory.PeekBank(dev, addr)
}

// SlotPopulated reports whether slot has a device installed, for
// debugger region discovery.
func (s *Sideways) SlotPopulated(slot int) bool {
	if slot < 0 || slot >= NumSlots {
		return false
	}
	return s.slots[slot] != nil
}

// PeekSlot reads from a specific slot regardless of which is selected,
// for debugger region inspection (spec's "per-slot peek accessors").
func (s *Sideways) PeekSlot(slot int, addr uint16) uint8 {
	if slot < 0 || slot >= NumSlots || s.slots[slot] == nil {
		return 0xFF
	}
	return memory.PeekBank(s.slots[slot], addr)
}

// Write implements memory.Bank over the active slot; unpopulated or
// read-only slots simply discard the write (their own Write no-ops).
func (s *Sideways) Write(addr uint16, val uint8) {
	s.databus = val
	dev := s.active()
	if dev == nil {
		return
	}
	dev.Write(addr, val)
}

// PowerOn resets every populated slot and reselects slot 0.
func (s *Sideways) PowerOn() {
	for _, dev := range s.slots {
		if dev != nil {
			dev.PowerOn()
		}
	}
	s.selected = 0
}

// Parent implements memory.Bank.
func (s *Sideways) Parent() memory.Bank {
	return s.parent
}

// DatabusVal implements memory.Bank.
func (s *Sideways) DatabusVal() uint8 {
	return s.databus
}

var (
	_ memory.Bank   = (*Sideways)(nil)
	_ memory.Peeker = (*Sideways)(nil)
)
