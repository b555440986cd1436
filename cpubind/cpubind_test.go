package cpubind

import (
	"testing"

	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/cpu"
	"github.com/jmchacon/beeb/memory"
)

// newCore builds a CPU core over a zeroed 64K bank with the reset vector
// pointed at start, and program preloaded at start.
func newCore(t *testing.T, start uint16, program []uint8) (*cpu.Chip, memory.Bank) {
	t.Helper()
	ram, err := memory.NewZeroedRAMBank(65536)
	if err != nil {
		t.Fatalf("NewZeroedRAMBank: %v", err)
	}
	ram.Write(0xFFFC, uint8(start))
	ram.Write(0xFFFD, uint8(start>>8))
	for i, b := range program {
		ram.Write(start+uint16(i), b)
	}
	core, err := cpu.Init(&cpu.ChipDef{Cpu: cpu.CPU_NMOS, Ram: ram})
	if err != nil {
		t.Fatalf("cpu.Init: %v", err)
	}
	return core, ram
}

func TestBindingImplementsClockContract(t *testing.T) {
	core, _ := newCore(t, 0x1000, []uint8{0xEA})
	b := New(core)
	if b.Edges() != clock.Both {
		t.Errorf("Edges() = %v, want Both", b.Edges())
	}
	if b.ClockRate() != clock.Rate2MHz {
		t.Errorf("ClockRate() = %v, want Rate2MHz", b.ClockRate())
	}
}

func TestLDAImmediateCompletesInTwoCycles(t *testing.T) {
	core, _ := newCore(t, 0x1000, []uint8{0xA9, 0x42, 0xEA})
	b := New(core)

	// Cycle 1: opTick 1 fetches the opcode and advances PC.
	b.TickRising()
	b.TickFalling()

	// Cycle 2: opTick 2 fetches the operand via addrImmediate and loads A.
	b.TickRising()
	b.TickFalling()
	if core.A != 0x42 {
		t.Errorf("A = %#x after LDA #$42 completes, want 0x42", core.A)
	}
	if err := b.LastError(); err != nil {
		t.Errorf("LastError() = %v, want nil", err)
	}
}

func TestInstructionCallbackFiresAtStartOfNextInstruction(t *testing.T) {
	core, _ := newCore(t, 0x1000, []uint8{0xA9, 0x42, 0xEA})
	b := New(core)
	var seen []uint16
	b.SetInstructionCallback(func(pc uint16) { seen = append(seen, pc) })

	// Two cycles to run LDA #$42 to completion, one more to observe the
	// callback fire for the NOP that follows.
	for i := 0; i < 3; i++ {
		b.TickRising()
		b.TickFalling()
	}
	if len(seen) != 1 {
		t.Fatalf("instruction callback fired %d times, want 1", len(seen))
	}
	if seen[0] != 0x1002 {
		t.Errorf("callback saw PC=%#x, want 0x1002 (the NOP after LDA #$42)", seen[0])
	}
}

func TestLastErrorReportsHaltOpcode(t *testing.T) {
	core, _ := newCore(t, 0x1000, []uint8{0x02, 0x00}) // HLT
	b := New(core)
	b.TickRising()
	b.TickFalling()
	b.TickRising()
	b.TickFalling()
	err := b.LastError()
	if err == nil {
		t.Fatal("LastError() = nil, want a HaltOpcode after executing 0x02")
	}
	halt, ok := err.(cpu.HaltOpcode)
	if !ok {
		t.Fatalf("LastError() type = %T, want cpu.HaltOpcode", err)
	}
	if halt.Opcode != 0x02 {
		t.Errorf("HaltOpcode.Opcode = %#x, want 0x02", halt.Opcode)
	}
}

func TestWatchingBankReportsReadsAndWrites(t *testing.T) {
	ram, err := memory.NewZeroedRAMBank(256)
	if err != nil {
		t.Fatalf("NewZeroedRAMBank: %v", err)
	}
	type access struct {
		addr    uint16
		val     uint8
		isWrite bool
	}
	var got []access
	w := NewWatchingBank(ram, func(addr uint16, val uint8, isWrite bool) {
		got = append(got, access{addr, val, isWrite})
	})

	w.Write(0x10, 0x99)
	if v := w.Read(0x10); v != 0x99 {
		t.Fatalf("Read(0x10) = %#x, want 0x99", v)
	}
	if len(got) != 2 {
		t.Fatalf("watchpoint fired %d times, want 2", len(got))
	}
	if !got[0].isWrite || got[0].addr != 0x10 || got[0].val != 0x99 {
		t.Errorf("first access = %+v, want a write of 0x99 to 0x10", got[0])
	}
	if got[1].isWrite || got[1].addr != 0x10 || got[1].val != 0x99 {
		t.Errorf("second access = %+v, want a read of 0x99 from 0x10", got[1])
	}
}

func TestWatchingBankDelegatesPowerOnAndParent(t *testing.T) {
	ram, err := memory.NewZeroedRAMBank(256)
	if err != nil {
		t.Fatalf("NewZeroedRAMBank: %v", err)
	}
	w := NewWatchingBank(ram, nil)
	w.PowerOn() // must not panic with a nil callback
	if w.Parent() != nil {
		t.Errorf("Parent() = %v, want nil (root bank)", w.Parent())
	}
}
