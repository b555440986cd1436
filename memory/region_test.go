package memory

import "testing"

func TestMapRoutesToFirstMatchingRegion(t *testing.T) {
	a, _ := New8BitRAMBank(16, nil)
	b, _ := New8BitRAMBank(16, nil)
	a.Write(0, 0x11)
	b.Write(0, 0x22)

	m := NewMap(
		Region{Base: 0x0000, End: 0x00FF, Device: a},
		Region{Base: 0x0100, End: 0x01FF, Device: b},
	)

	if got := m.Read(0x0000); got != 0x11 {
		t.Errorf("Read(0x0000) = %#x, want 0x11", got)
	}
	if got := m.Read(0x0100); got != 0x22 {
		t.Errorf("Read(0x0100) = %#x, want 0x22", got)
	}
}

func TestMapUnmappedAddressReadsOpenBus(t *testing.T) {
	m := NewMap(Region{Base: 0x0000, End: 0x00FF, Device: mustRAM(t, 16)})
	if got := m.Read(0x1000); got != 0xFF {
		t.Errorf("Read(0x1000) on an unmapped address = %#x, want 0xFF", got)
	}
	m.Write(0x1000, 0x42) // must not panic
}

func TestMapAppliesMirrorMask(t *testing.T) {
	dev, _ := New8BitRAMBank(16, nil)
	m := NewMap(Region{Base: 0xFE40, End: 0xFE5F, Mirror: 0x0F, Device: dev})

	m.Write(0xFE40, 0x10)
	if got := m.Read(0xFE50); got != 0x10 {
		t.Errorf("Read(0xFE50) = %#x, want 0x10 (mirrors 0xFE40 under the 0x0F mask)", got)
	}
	if got := m.Read(0xFE4F); got != 0 {
		t.Errorf("Read(0xFE4F) = %#x, want 0 (distinct offset 0x0F under the mask)", got)
	}
}

func TestMapWithoutMirrorUsesPlainOffset(t *testing.T) {
	dev, _ := New8BitRAMBank(0x8000, nil)
	m := NewMap(Region{Base: 0x8000, End: 0xFFFF, Device: dev})
	m.Write(0x8005, 0x9A)
	if got := m.Read(0x8005); got != 0x9A {
		t.Errorf("Read(0x8005) = %#x, want 0x9A", got)
	}
	if got := m.Read(0x8006); got != 0 {
		t.Errorf("Read(0x8006) = %#x, want 0 (unwritten, no mirroring bleed)", got)
	}
}

func TestMapPeekUsesDevicesPeekNotRead(t *testing.T) {
	dev := &countingDevice{}
	m := NewMap(Region{Base: 0, End: 0xFFFF, Device: dev})
	m.Peek(0x10)
	if dev.reads != 0 {
		t.Errorf("Peek() invoked %d Reads, want 0 (should route through the device's own Peek)", dev.reads)
	}
	if dev.peeks != 1 {
		t.Errorf("Peek() invoked the device's Peek %d times, want 1", dev.peeks)
	}
}

// countingDevice counts Read vs Peek calls separately, to prove Map.Peek
// prefers a device's own Peek over its Read.
type countingDevice struct{ reads, peeks int }

func (d *countingDevice) Read(addr uint16) uint8     { d.reads++; return 0 }
func (d *countingDevice) Peek(addr uint16) uint8      { d.peeks++; return 0 }
func (d *countingDevice) Write(addr uint16, v uint8)  {}
func (d *countingDevice) PowerOn()                    {}
func (d *countingDevice) Parent() Bank                { return nil }
func (d *countingDevice) DatabusVal() uint8           { return 0 }

func mustRAM(t *testing.T, size int) Bank {
	t.Helper()
	b, err := New8BitRAMBank(size, nil)
	if err != nil {
		t.Fatalf("New8BitRAMBank(%d) error = %v", size, err)
	}
	return b
}
