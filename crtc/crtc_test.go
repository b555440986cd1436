package crtc

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmchacon/beeb/clock"
)

func setReg(c *Chip, idx, val uint8) {
	c.Write(0, idx)
	c.Write(1, val)
}

func TestRegisterSelectWriteReadRoundTrip(t *testing.T) {
	c := New()
	setReg(c, R1HDisplayed, 40)
	if got := c.Peek(1); got != 40 {
		t.Errorf("Peek(1) after selecting R1 = %d, want 40", got)
	}
}

func TestReadSelectedRegisterReturnsTheSelectIndex(t *testing.T) {
	c := New()
	c.Write(0, R6VDisplayed)
	if got := c.Read(0); got != R6VDisplayed {
		t.Errorf("Read(0) = %d, want the selected index %d", got, R6VDisplayed)
	}
}

func TestOutOfRangeRegisterSelectIsOpenBusAndDiscardsWrites(t *testing.T) {
	c := New()
	c.Write(0, 0x1F) // 31, well past numRegs (18)
	c.Write(1, 0x99) // must be silently discarded, not panic
	if got := c.Peek(1); got != 0xFF {
		t.Errorf("Peek(1) with an out-of-range register selected = %#x, want 0xFF", got)
	}
}

func TestStartAddressComposedFromR12R13(t *testing.T) {
	c := New()
	setReg(c, R12StartAddrH, 0x12)
	setReg(c, R13StartAddrL, 0x34)
	c.endOfFrame()
	if c.addr != 0x1234 {
		t.Errorf("addr after endOfFrame() = %#x, want 0x1234", c.addr)
	}
}

func TestDisplayAndHSyncOverOneScanline(t *testing.T) {
	c := New()
	setReg(c, R0HTotal, 3)      // 4 characters per scanline
	setReg(c, R1HDisplayed, 2)  // display active for the first 2
	setReg(c, R2HSyncPos, 2)    // sync starts at character 2
	setReg(c, R3SyncWidth, 0x01) // sync width 1 character

	want := []struct {
		display, hsync bool
	}{
		{true, false},
		{true, false},
		{false, true},
		{false, false},
	}
	for i, w := range want {
		out := c.Tick()
		if out.Display != w.display || out.HSync != w.hsync {
			t.Errorf("tick %d: Display=%v HSync=%v, want Display=%v HSync=%v, state: %s",
				i, out.Display, out.HSync, w.display, w.hsync, spew.Sdump(c))
		}
	}
}

func TestCursorHiddenWhenBlinkModeDisablesIt(t *testing.T) {
	c := New()
	setReg(c, R0HTotal, 3)
	setReg(c, R1HDisplayed, 2)
	setReg(c, R10CursorStart, 0x20) // blink mode 01: cursor disabled
	setReg(c, R11CursorEnd, 0x1F)
	setReg(c, R14CursorH, 0)
	setReg(c, R15CursorL, 0)

	out := c.Tick()
	if out.Cursor {
		t.Error("Cursor = true with blink mode 01, want false (cursor always off)")
	}
}

func TestCursorVisibleAtMatchingAddressWithCursorEnabled(t *testing.T) {
	c := New()
	setReg(c, R0HTotal, 3)
	setReg(c, R1HDisplayed, 2)
	setReg(c, R10CursorStart, 0x00) // blink mode 00: always visible
	setReg(c, R11CursorEnd, 0x1F)
	setReg(c, R14CursorH, 0)
	setReg(c, R15CursorL, 0)

	out := c.Tick()
	if !out.Cursor {
		t.Error("Cursor = false, want true at the matching address with cursor visibility enabled")
	}
}

func TestResetRestoresPowerOnDefaults(t *testing.T) {
	c := New()
	setReg(c, R1HDisplayed, 40)
	c.Tick()
	c.Reset()
	c.Write(0, R1HDisplayed)
	if got := c.Peek(1); got != 0 {
		t.Errorf("R1 after Reset() = %d, want 0", got)
	}
	if !c.vDisplay {
		t.Error("vDisplay should be true immediately after Reset()")
	}
}

func TestSetFastClockChangesClockRate(t *testing.T) {
	c := New()
	if got := c.ClockRate(); got != clock.Rate1MHz {
		t.Errorf("ClockRate() before SetFastClock = %v, want clock.Rate1MHz", got)
	}
	c.SetFastClock(true)
	if got := c.ClockRate(); got != clock.Rate2MHz {
		t.Errorf("ClockRate() after SetFastClock(true) = %v, want clock.Rate2MHz", got)
	}
}
