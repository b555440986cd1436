package bank

import (
	"testing"

	"github.com/jmchacon/beeb/memory"
)

func mustROM(t *testing.T, data []uint8) memory.Bank {
	t.Helper()
	r, err := memory.NewROMBank(SlotSize, nil)
	if err != nil {
		t.Fatalf("NewROMBank() error = %v", err)
	}
	r.Load(data)
	return r
}

func TestUnpopulatedSlotReadsOpenBus(t *testing.T) {
	s := New(nil)
	if got := s.Read(0x8000); got != 0xFF {
		t.Errorf("Read() on unpopulated slot = %#x, want 0xFF", got)
	}
	if got := s.Peek(0x8000); got != 0xFF {
		t.Errorf("Peek() on unpopulated slot = %#x, want 0xFF", got)
	}
}

func TestUnpopulatedSlotDiscardsWrites(t *testing.T) {
	s := New(nil)
	s.Write(0x8000, 0x42) // must not panic
}

func TestSelectMasksToFourBits(t *testing.T) {
	s := New(nil)
	s.Select(0xFF)
	if s.Selected() != 0x0F {
		t.Errorf("Selected() after Select(0xFF) = %#x, want 0x0F", s.Selected())
	}
}

func TestSetSlotAndReadBack(t *testing.T) {
	s := New(nil)
	s.SetSlot(5, mustROM(t, []uint8{0x99}))
	s.Select(5)
	if got := s.Read(0x8000); got != 0x99 {
		t.Errorf("Read() from slot 5 = %#x, want 0x99", got)
	}
	if got := s.Read(0x0); got != 0x99 {
		t.Errorf("Read(0) from slot 5 = %#x, want 0x99 (masked identically to 0x8000)", got)
	}
}

func TestSetSlotOutOfRangeIsIgnored(t *testing.T) {
	s := New(nil)
	s.SetSlot(99, mustROM(t, []uint8{1})) // must not panic, silently ignored
	if s.SlotPopulated(99) {
		t.Error("SlotPopulated(99) = true for an out-of-range slot")
	}
}

func TestSlotPopulated(t *testing.T) {
	s := New(nil)
	if s.SlotPopulated(3) {
		t.Error("SlotPopulated(3) = true before SetSlot")
	}
	s.SetSlot(3, mustROM(t, []uint8{1}))
	if !s.SlotPopulated(3) {
		t.Error("SlotPopulated(3) = false after SetSlot")
	}
}

func TestPeekSlotReadsRegardlessOfSelection(t *testing.T) {
	s := New(nil)
	s.SetSlot(0, mustROM(t, []uint8{0x11}))
	s.SetSlot(1, mustROM(t, []uint8{0x22}))
	s.Select(0)

	if got := s.PeekSlot(1, 0x0); got != 0x22 {
		t.Errorf("PeekSlot(1, 0) = %#x, want 0x22 (independent of the active slot)", got)
	}
}

func TestPeekSlotUnpopulatedOrOutOfRange(t *testing.T) {
	s := New(nil)
	if got := s.PeekSlot(0, 0); got != 0xFF {
		t.Errorf("PeekSlot(0,0) on an unpopulated slot = %#x, want 0xFF", got)
	}
	if got := s.PeekSlot(99, 0); got != 0xFF {
		t.Errorf("PeekSlot(99,0) on an out-of-range slot = %#x, want 0xFF", got)
	}
}

func TestPowerOnResetsSelectionAndPropagates(t *testing.T) {
	s := New(nil)
	ram, err := memory.New8BitRAMBank(SlotSize, nil)
	if err != nil {
		t.Fatalf("New8BitRAMBank() error = %v", err)
	}
	ram.Write(0, 0x55)
	s.SetSlot(2, ram)
	s.Select(2)

	s.PowerOn()

	if s.Selected() != 0 {
		t.Errorf("Selected() after PowerOn() = %d, want 0", s.Selected())
	}
}

func TestWriteRoutesToActiveSlotOnly(t *testing.T) {
	s := New(nil)
	ram0, _ := memory.New8BitRAMBank(SlotSize, nil)
	ram1, _ := memory.New8BitRAMBank(SlotSize, nil)
	s.SetSlot(0, ram0)
	s.SetSlot(1, ram1)

	s.Select(0)
	s.Write(0x8000, 0xAA)

	s.Select(1)
	if got := s.Read(0x8000); got != 0 {
		t.Errorf("Read() from slot 1 after a write to slot 0 = %#x, want 0 (unaffected)", got)
	}

	s.Select(0)
	if got := s.Read(0x8000); got != 0xAA {
		t.Errorf("Read() from slot 0 = %#x, want 0xAA", got)
	}
}

func TestDatabusValTracksLastAccess(t *testing.T) {
	s := New(nil)
	s.SetSlot(0, mustROM(t, []uint8{1}))
	s.Select(0)
	s.Write(0x8000, 0x7C)
	if got := s.DatabusVal(); got != 0x7C {
		t.Errorf("DatabusVal() after a write = %#x, want 0x7C", got)
	}
}
