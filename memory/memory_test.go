package memory

import (
	"testing"

	"github.com/go-test/deep"
)

// readAll returns every byte of a bank of the given size, for
// whole-contents comparisons.
func readAll(b Bank, size int) []uint8 {
	out := make([]uint8, size)
	for i := range out {
		out[i] = b.Read(uint16(i))
	}
	return out
}

func TestRAMBankReadWrite(t *testing.T) {
	b, err := New8BitRAMBank(256, nil)
	if err != nil {
		t.Fatalf("New8BitRAMBank() error = %v", err)
	}
	b.Write(0x10, 0x42)
	if got := b.Read(0x10); got != 0x42 {
		t.Errorf("Read(0x10) = %#x, want 0x42", got)
	}
}

func TestRAMBankRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := New8BitRAMBank(100, nil); err == nil {
		t.Fatal("New8BitRAMBank(100) returned no error for a non-power-of-2 size")
	}
}

func TestRAMBankAliasesOnWrap(t *testing.T) {
	b, err := New8BitRAMBank(256, nil)
	if err != nil {
		t.Fatalf("New8BitRAMBank() error = %v", err)
	}
	b.Write(0x10, 0x99)
	if got := b.Read(0x10 + 256); got != 0x99 {
		t.Errorf("Read(0x110) = %#x, want 0x99 (aliased onto a 256-byte bank)", got)
	}
}

func TestZeroedRAMBankStartsZeroed(t *testing.T) {
	b, err := NewZeroedRAMBank(256)
	if err != nil {
		t.Fatalf("NewZeroedRAMBank() error = %v", err)
	}
	for addr := 0; addr < 256; addr++ {
		if got := b.Read(uint16(addr)); got != 0 {
			t.Fatalf("Read(%#x) = %#x, want 0", addr, got)
			break
		}
	}
}

func TestNewRAMBankAllowsNonPowerOfTwoSize(t *testing.T) {
	b, err := NewRAMBank(20*1024, nil)
	if err != nil {
		t.Fatalf("NewRAMBank(20*1024) error = %v", err)
	}
	b.Write(0x1234, 0x77)
	if got := b.Read(0x1234); got != 0x77 {
		t.Errorf("Read(0x1234) = %#x, want 0x77", got)
	}
}

func TestNewRAMBankOutOfRangeIsOpenBus(t *testing.T) {
	b, err := NewRAMBank(16, nil)
	if err != nil {
		t.Fatalf("NewRAMBank(16) error = %v", err)
	}
	if got := b.Read(100); got != 0xFF {
		t.Errorf("Read(100) on a 16-byte bank = %#x, want 0xFF (open bus, no aliasing)", got)
	}
	b.Write(100, 0x55) // must not panic
	if got := b.Read(5); got == 0x55 {
		t.Error("out-of-range write leaked into an in-range address")
	}
}

func TestROMBankLoadPadsAndTruncates(t *testing.T) {
	r, err := NewROMBank(16, nil)
	if err != nil {
		t.Fatalf("NewROMBank() error = %v", err)
	}
	if truncated := r.Load([]uint8{1, 2, 3}); truncated {
		t.Error("Load() with an undersized image reported truncation")
	}
	if got := r.Read(3); got != 0 {
		t.Errorf("Read(3) after an undersized Load = %#x, want 0 (zero-padded)", got)
	}

	big := make([]uint8, 20)
	for i := range big {
		big[i] = uint8(i + 1)
	}
	if truncated := r.Load(big); !truncated {
		t.Error("Load() with an oversized image reported no truncation")
	}
	if got := r.Read(0); got != 1 {
		t.Errorf("Read(0) after an oversized Load = %#x, want 1", got)
	}
	if diff := deep.Equal(readAll(r, 16), big[:16]); diff != nil {
		t.Errorf("bank contents after an oversized Load diff: %v (want the image truncated to bank size)", diff)
	}
}

func TestROMBankWritesAreDiscarded(t *testing.T) {
	r, err := NewROMBank(16, nil)
	if err != nil {
		t.Fatalf("NewROMBank() error = %v", err)
	}
	r.Load([]uint8{0xAA})
	r.Write(0, 0xFF)
	if got := r.Read(0); got != 0xAA {
		t.Errorf("Read(0) after a Write to ROM = %#x, want unchanged 0xAA", got)
	}
}

// readOnlyDevice is a Bank with no Peek method, to exercise PeekBank's
// fallback path; every real device in this package happens to implement
// Peeker.
type readOnlyDevice struct{ val uint8 }

func (d *readOnlyDevice) Read(addr uint16) uint8  { return d.val }
func (d *readOnlyDevice) Write(addr uint16, v uint8) {}
func (d *readOnlyDevice) PowerOn()                {}
func (d *readOnlyDevice) Parent() Bank            { return nil }
func (d *readOnlyDevice) DatabusVal() uint8       { return d.val }

func TestPeekBankFallsBackToReadWithoutPeeker(t *testing.T) {
	d := &readOnlyDevice{val: 0x7A}
	if got := PeekBank(d, 0); got != 0x7A {
		t.Errorf("PeekBank() = %#x, want 0x7A", got)
	}
}
