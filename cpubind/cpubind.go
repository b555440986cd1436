// Package cpubind adapts the external 6502 core in package cpu to this
// repository's clock.Binding contract, and layers on the watchpoint and
// instruction hooks the machine package's debugger surface needs.
package cpubind

import (
	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/cpu"
	"github.com/jmchacon/beeb/memory"
)

// WatchpointFunc is called after every memory access the CPU core makes.
// Installed on a watchingBank (see NewWatchingBank), not on Binding
// itself: package cpu exposes no in-flight-access hook of its own, so
// the bus wrapper is the only place an access can be observed.
type WatchpointFunc func(addr uint16, value uint8, isWrite bool)

// InstructionFunc is called with the program counter at the start of
// every new instruction (i.e. whenever the core is about to fetch an
// opcode byte rather than continuing a multi-cycle one already underway).
// The core only signals a boundary once an instruction has completed, so
// the first instruction after a reset is not reported.
type InstructionFunc func(pc uint16)

// Binding wraps a cpu.Chip as a clock.Binding. The core already commits
// exactly one 2 MHz cycle's worth of work per Tick()/TickDone() pair, so
// TickRising drives the core's Tick() and TickFalling drives its
// TickDone(), rather than literally invoking the core twice per cycle
// the way a raw cycle-stepped 6502 library would.
type Binding struct {
	core *cpu.Chip

	instr InstructionFunc

	lastErr error
}

// New wraps core for clock dispatch. ram/addr watching requires the
// caller to pass a bus that records its own last address/value, since
// package cpu does not currently expose the in-flight address/value for
// a watchpoint hook to inspect; see NewWatchingBank.
func New(core *cpu.Chip) *Binding {
	return &Binding{core: core}
}

var _ clock.Binding = (*Binding)(nil)

// Edges implements clock.Binding: the CPU core needs both halves of
// every cycle (Tick() on one, TickDone() on the other).
func (b *Binding) Edges() clock.Edge { return clock.Both }

// ClockRate implements clock.Binding: the CPU always runs at 2 MHz.
func (b *Binding) ClockRate() clock.Rate { return clock.Rate2MHz }

// TickRising implements clock.Binding by advancing the core one cycle.
// Any error (including a halt) is latched for LastError to report; the
// scheduler itself has no error-propagation path, matching how package
// via and package crtc also swallow their own internal invariants.
func (b *Binding) TickRising() {
	if b.instr != nil && b.core.InstructionDone() {
		b.instr(b.core.PC)
	}
	b.lastErr = b.core.Tick()
}

// TickFalling implements clock.Binding by committing the cycle just run.
func (b *Binding) TickFalling() {
	b.core.TickDone()
}

// LastError returns the error (if any) from the most recent Tick(),
// including cpu.HaltOpcode when the core has executed a halt
// instruction. The caller (package machine) decides whether to stop.
func (b *Binding) LastError() error { return b.lastErr }

// SetInstructionCallback installs fn to be called with the PC at the
// start of every new instruction after the first (see InstructionFunc).
func (b *Binding) SetInstructionCallback(fn InstructionFunc) { b.instr = fn }

// watchingBank wraps a memory.Bank, reporting every access through a
// WatchpointFunc before delegating. Package cpu has no hook of its own
// for in-flight bus accesses, so watchpoints are implemented by
// interposing this wrapper between the CPU core and the real bus,
// rather than inside package cpu itself.
type watchingBank struct {
	memory.Bank
	fn WatchpointFunc
}

// NewWatchingBank returns a memory.Bank that reports every Read/Write
// through fn before delegating to bus, for use as a cpu.ChipDef.Ram that
// also drives watchpoint callbacks.
func NewWatchingBank(bus memory.Bank, fn WatchpointFunc) memory.Bank {
	return &watchingBank{Bank: bus, fn: fn}
}

func (w *watchingBank) Read(addr uint16) uint8 {
	v := w.Bank.Read(addr)
	if w.fn != nil {
		w.fn(addr, v, false)
	}
	return v
}

func (w *watchingBank) Write(addr uint16, val uint8) {
	w.Bank.Write(addr, val)
	if w.fn != nil {
		w.fn(addr, val, true)
	}
}
