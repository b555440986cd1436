// Package machine composes a CPU core, a hardware profile (model.B or
// model.BPlus), and the debugger-facing watchpoint/breakpoint/histogram
// plumbing external observers drive, into the single cooperatively
// scheduled emulation loop described by the core's tick order.
package machine

import (
	"sync"
	"sync/atomic"

	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/cpu"
	"github.com/jmchacon/beeb/cpubind"
	"github.com/jmchacon/beeb/model"
)

// pcAwareBank is implemented by hardware profiles (currently only
// model.BPlus) whose memory routing depends on which code is executing,
// for the debugger's simulated_pc memory operations.
type pcAwareBank interface {
	ReadWithPC(addr, pc uint16) uint8
	WriteWithPC(addr uint16, val uint8, pc uint16)
	PeekWithPC(addr, pc uint16) uint8
}

// Machine is the single-threaded cooperative emulation core: one owning
// goroutine advances time by calling Step/Run; debugger mutations
// (Pause/Resume/breakpoints/register writes) may arrive from another
// goroutine and are synchronized through mu/cond and the atomic counters.
type Machine struct {
	hw        model.Profile
	core      *cpu.Chip
	cpuBind   *cpubind.Binding
	scheduler *clock.Scheduler

	cycle      uint64
	sequence   uint64
	instrCount uint64

	mu         sync.Mutex
	cond       *sync.Cond
	paused     bool
	haltReason string

	pcHistogram *PCHistogram
	watchpoints []*Watchpoint
	nextWatchID uint32
	breakpoints map[uint32]uint16
	nextBPID    uint32
}

// New assembles a Machine around hw: a watching bus wraps hw so
// watchpoints observe every CPU-initiated access, the CPU core is
// created with hw's IRQ aggregator as its interrupt source (the core
// polls it every Tick, so no separate poll-then-assert step is needed),
// and the scheduler dispatches the CPU binding ahead of hw's own
// peripheral bindings every cycle.
func New(hw model.Profile) (*Machine, error) {
	m := &Machine{
		hw:          hw,
		breakpoints: make(map[uint32]uint16),
	}
	m.cond = sync.NewCond(&m.mu)

	bus := cpubind.NewWatchingBank(hw, m.fireWatchpoints)
	core, err := cpu.Init(&cpu.ChipDef{
		Cpu: cpu.CPU_NMOS,
		Ram: bus,
		Irq: hw.IRQSender(),
	})
	if err != nil {
		return nil, err
	}
	m.core = core
	m.cpuBind = cpubind.New(core)
	m.cpuBind.SetInstructionCallback(m.onInstruction)

	bindings := append([]clock.Binding{m.cpuBind}, hw.Bindings()...)
	m.scheduler = clock.New(bindings...)

	return m, nil
}

// Profile returns the hardware profile this machine was built around.
func (m *Machine) Profile() model.Profile { return m.hw }

// Cycle returns the number of 2 MHz ticks executed since the last reset.
func (m *Machine) Cycle() uint64 { return atomic.LoadUint64(&m.cycle) }

// Sequence returns the mutation-sequence counter: it is bumped on every
// state change visible to an external observer (a CPU cycle, a register
// or memory write from the debugger, a reset, a pause/resume), so a
// caller can detect "has anything changed" with a single acquire-load
// instead of re-reading all state.
func (m *Machine) Sequence() uint64 { return atomic.LoadUint64(&m.sequence) }

func (m *Machine) bumpSequence() { atomic.AddUint64(&m.sequence, 1) }

// Step advances the machine by exactly one 2 MHz tick: the scheduler
// dispatches the CPU binding (the core's Tick() on an odd, rising-edge
// cycle; its TickDone() on an even, falling-edge one) followed by hw's own peripheral bindings, in that fixed
// order. It returns the CPU core's error from this cycle, if any
// (including cpu.HaltOpcode once the core has executed a halt
// instruction).
func (m *Machine) Step() error {
	priorCycle := m.cycle
	m.scheduler.Tick(m.cycle)
	m.cycle++
	m.bumpSequence()
	err := m.cpuBind.LastError()
	if err != nil && priorCycle%2 == 1 {
		// The error came from the core's Tick() on this cycle's rising
		// edge; run the paired falling edge now so TickDone() still
		// commits and the core's tickDone bookkeeping (cpu.Chip.Tick's
		// "called without TickDone" guard) stays consistent for any
		// future Tick() call against this now-halted core.
		m.scheduler.Tick(m.cycle)
		m.cycle++
		m.bumpSequence()
	}
	return err
}

// Run executes up to cycles ticks, stopping early if the core halts or
// a breakpoint/instruction hook pauses the machine. It returns the
// number of cycles actually executed and the halting error, if any.
func (m *Machine) Run(cycles uint64) (uint64, error) {
	var ran uint64
	for ran < cycles {
		if m.Paused() {
			break
		}
		if err := m.Step(); err != nil {
			return ran + 1, err
		}
		ran++
	}
	return ran, nil
}

// StepInstruction runs the machine until the instruction beginning at
// the moment of the call has completed and the CPU is about to begin
// the next one, returning the number of cycles that took.
func (m *Machine) StepInstruction() (uint64, error) {
	start := m.cycle
	if err := m.Step(); err != nil {
		return m.cycle - start, err
	}
	baseline := atomic.LoadUint64(&m.instrCount)
	for atomic.LoadUint64(&m.instrCount) == baseline {
		if err := m.Step(); err != nil {
			return m.cycle - start, err
		}
	}
	return m.cycle - start, nil
}

// onInstruction is the cpubind.InstructionFunc invoked whenever the CPU
// is about to begin a new instruction (other than the first after a
// reset): it feeds the PC histogram (if
// attached), bumps the instruction counter StepInstruction waits on, and
// checks breakpoints.
func (m *Machine) onInstruction(pc uint16) {
	atomic.AddUint64(&m.instrCount, 1)
	if m.pcHistogram != nil {
		m.pcHistogram.Record(pc)
	}
	m.mu.Lock()
	for _, addr := range m.breakpoints {
		if addr == pc {
			m.haltReason = breakpointReason(addr)
			m.paused = true
			break
		}
	}
	m.mu.Unlock()
}

// Reset restores the hardware profile to its power-on state and clears
// the cycle counter; the sequence counter is bumped, not reset, since it
// must remain monotonic across the machine's lifetime.
func (m *Machine) Reset() {
	m.hw.Reset()
	m.cycle = 0
	atomic.StoreUint64(&m.instrCount, 0)
	m.mu.Lock()
	m.haltReason = ""
	m.mu.Unlock()
	m.bumpSequence()
}

// Pause requests the emulation loop stop at the next cycle boundary.
// Pause itself never blocks; WaitIfPaused is what an external driver
// loop calls between slices to actually sleep until Resume.
func (m *Machine) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.bumpSequence()
}

// Resume clears the pause flag and wakes any goroutine blocked in
// WaitIfPaused.
func (m *Machine) Resume() {
	m.mu.Lock()
	m.paused = false
	m.haltReason = ""
	m.mu.Unlock()
	m.cond.Broadcast()
	m.bumpSequence()
}

// Paused reports whether the machine is currently paused.
func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// HaltReason returns the reason the machine last paused (e.g. a
// breakpoint), or "" if it is not paused or was paused externally.
func (m *Machine) HaltReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.haltReason
}

// WaitIfPaused blocks the calling goroutine until the machine is
// resumed. This is the one suspension point on the emulation thread;
// the driver loop calls it between Run slices, never Step/Run itself.
func (m *Machine) WaitIfPaused() {
	m.mu.Lock()
	for m.paused {
		m.cond.Wait()
	}
	m.mu.Unlock()
}
