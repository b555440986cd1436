package machine

import (
	"fmt"
)

// Registers is a snapshot of the 6502 register file.
type Registers struct {
	A, X, Y, SP uint8
	PC          uint16
	P           uint8
}

// RegisterEdits carries the optional per-field values of a debugger
// register write; a nil field is left untouched.
type RegisterEdits struct {
	A, X, Y, SP *uint8
	PC          *uint16
	P           *uint8
}

// ReadRegisters returns the current register file.
func (m *Machine) ReadRegisters() Registers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Registers{A: m.core.A, X: m.core.X, Y: m.core.Y, SP: m.core.S, PC: m.core.PC, P: m.core.P}
}

// WriteRegisters applies edits and bumps the sequence counter.
func (m *Machine) WriteRegisters(edits RegisterEdits) {
	m.mu.Lock()
	if edits.A != nil {
		m.core.A = *edits.A
	}
	if edits.X != nil {
		m.core.X = *edits.X
	}
	if edits.Y != nil {
		m.core.Y = *edits.Y
	}
	if edits.SP != nil {
		m.core.S = *edits.SP
	}
	if edits.PC != nil {
		m.core.PC = *edits.PC
	}
	if edits.P != nil {
		m.core.P = *edits.P
	}
	m.mu.Unlock()
	m.bumpSequence()
}

// ReadMemory reads length bytes starting at addr through the normal bus
// (VIA reads may have side effects, e.g. clearing IFR bits). When
// simulatedPC is non-nil and the hardware profile supports PC-aware
// routing (Model B+ shadow RAM), it is used to classify the access as
// VDU-driver code or not.
func (m *Machine) ReadMemory(addr uint16, length int, simulatedPC *uint16) []uint8 {
	out := make([]uint8, length)
	pcAware, ok := m.hw.(pcAwareBank)
	for i := range out {
		a := addr + uint16(i)
		if ok && simulatedPC != nil {
			out[i] = pcAware.ReadWithPC(a, *simulatedPC)
			continue
		}
		out[i] = m.hw.Read(a)
	}
	m.bumpSequence()
	return out
}

// WriteMemory writes data starting at addr through the normal bus.
func (m *Machine) WriteMemory(addr uint16, data []uint8, simulatedPC *uint16) {
	pcAware, ok := m.hw.(pcAwareBank)
	for i, v := range data {
		a := addr + uint16(i)
		if ok && simulatedPC != nil {
			pcAware.WriteWithPC(a, v, *simulatedPC)
			continue
		}
		m.hw.Write(a, v)
	}
	m.bumpSequence()
}

// PeekMemory reads length bytes without side effects.
func (m *Machine) PeekMemory(addr uint16, length int, simulatedPC *uint16) []uint8 {
	out := make([]uint8, length)
	pcAware, ok := m.hw.(pcAwareBank)
	for i := range out {
		a := addr + uint16(i)
		if ok && simulatedPC != nil {
			out[i] = pcAware.PeekWithPC(a, *simulatedPC)
			continue
		}
		out[i] = m.hw.Peek(a)
	}
	return out
}

// Watchpoint fires fn whenever the CPU core reads or writes an address
// in the half-open range [Start, End) and OnRead/OnWrite matches the
// access type.
type Watchpoint struct {
	ID         uint32
	Start, End uint16
	OnRead     bool
	OnWrite    bool
	Fn         func(addr uint16, value uint8, isWrite bool)
}

// AddWatchpoint installs w (Start must be < End; a malformed range is a
// programming error, not a runtime one, per the core's assertion-based
// invariant checking) and returns its assigned ID.
func (m *Machine) AddWatchpoint(w Watchpoint) uint32 {
	if w.Start >= w.End {
		panic(fmt.Sprintf("machine: malformed watchpoint range [%#04x, %#04x)", w.Start, w.End))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextWatchID++
	w.ID = m.nextWatchID
	m.watchpoints = append(m.watchpoints, &w)
	return w.ID
}

// RemoveWatchpoint removes a previously installed watchpoint by ID.
func (m *Machine) RemoveWatchpoint(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.watchpoints {
		if w.ID == id {
			m.watchpoints = append(m.watchpoints[:i], m.watchpoints[i+1:]...)
			return true
		}
	}
	return false
}

// fireWatchpoints is the cpubind.WatchpointFunc installed on the CPU
// core's bus wrapper: it is called after every access the core makes,
// in program order, and dispatches to every matching watchpoint.
func (m *Machine) fireWatchpoints(addr uint16, value uint8, isWrite bool) {
	m.mu.Lock()
	matches := make([]*Watchpoint, 0, 1)
	for _, w := range m.watchpoints {
		if addr < w.Start || addr >= w.End {
			continue
		}
		if isWrite && !w.OnWrite {
			continue
		}
		if !isWrite && !w.OnRead {
			continue
		}
		matches = append(matches, w)
	}
	m.mu.Unlock()
	for _, w := range matches {
		w.Fn(addr, value, isWrite)
	}
}

// AddBreakpoint installs a breakpoint at addr and returns its ID.
func (m *Machine) AddBreakpoint(addr uint16) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBPID++
	m.breakpoints[m.nextBPID] = addr
	return m.nextBPID
}

// RemoveBreakpoint removes a breakpoint by ID.
func (m *Machine) RemoveBreakpoint(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.breakpoints[id]; !ok {
		return false
	}
	delete(m.breakpoints, id)
	return true
}

// ListBreakpoints returns the currently installed breakpoints as
// id -> address pairs.
func (m *Machine) ListBreakpoints() map[uint32]uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint32]uint16, len(m.breakpoints))
	for id, addr := range m.breakpoints {
		out[id] = addr
	}
	return out
}

// ClearBreakpoints removes every breakpoint.
func (m *Machine) ClearBreakpoints() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakpoints = make(map[uint32]uint16)
}

func breakpointReason(addr uint16) string {
	return fmt.Sprintf("breakpoint at $%04X", addr)
}

// AttachPCHistogram installs h as the program-counter visit recorder;
// pass nil to detach.
func (m *Machine) AttachPCHistogram(h *PCHistogram) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pcHistogram = h
}
