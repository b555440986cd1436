package via

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmchacon/beeb/clock"
)

func mustInit(t *testing.T, d *ChipDef) *Chip {
	t.Helper()
	c, err := Init(d)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return c
}

func TestResetDefaults(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	if c.Peek(regDDRA) != 0 || c.Peek(regDDRB) != 0 {
		t.Error("DDRs should reset to 0 (all pins input)")
	}
	if c.Raised() {
		t.Error("Raised() should be false immediately after reset")
	}
}

func TestDDRWriteReadback(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regDDRA, 0xF0)
	c.Write(regDDRB, 0x0F)
	if got := c.Read(regDDRA); got != 0xF0 {
		t.Errorf("DDRA readback = %#x, want 0xF0", got)
	}
	if got := c.Read(regDDRB); got != 0x0F {
		t.Errorf("DDRB readback = %#x, want 0x0F", got)
	}
}

func TestPortAWriteReadbackWithoutPeripheral(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regDDRA, 0xFF) // all outputs
	c.Write(regORA, 0x5A)
	if got := c.Read(regORA); got != 0x5A {
		t.Errorf("ORA readback = %#x, want 0x5A", got)
	}
}

func TestPortAInputPinsFloatHighWithoutPeripheral(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regDDRA, 0x00) // all inputs
	if got := c.Read(regORA); got != 0xFF {
		t.Errorf("ORA readback with all pins input and no peripheral = %#x, want 0xFF", got)
	}
}

type fakePeripheral struct {
	a, b               uint8
	ca1, ca2, cb1, cb2 uint8
}

func (p *fakePeripheral) UpdatePortA(output, ddr uint8) uint8 { return p.a }
func (p *fakePeripheral) UpdatePortB(output, ddr uint8) uint8 { return p.b }
func (p *fakePeripheral) UpdateControlLines(ca1, ca2, cb1, cb2 uint8) (uint8, uint8, uint8, uint8) {
	return p.ca1, p.ca2, p.cb1, p.cb2
}

func TestPeripheralSuppliesInputBits(t *testing.T) {
	p := &fakePeripheral{a: 0xAA}
	c := mustInit(t, &ChipDef{Peripheral: p})
	c.Write(regDDRA, 0x00) // all inputs
	if got := c.Read(regORA); got != 0xAA {
		t.Errorf("ORA readback with peripheral supplying 0xAA = %#x, want 0xAA", got)
	}
}

func TestSetPeripheralReplacesCallback(t *testing.T) {
	p1 := &fakePeripheral{a: 0x11}
	c := mustInit(t, &ChipDef{Peripheral: p1})
	p2 := &fakePeripheral{a: 0x22}
	c.SetPeripheral(p2)
	c.Write(regDDRA, 0x00)
	if got := c.Read(regORA); got != 0x22 {
		t.Errorf("ORA readback after SetPeripheral = %#x, want 0x22 (new peripheral)", got)
	}
}

func TestIERSetAndClearSemantics(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regIER, 0x80|maskT1|maskCA1) // set bits
	if got := c.Peek(regIER); got != (0x80 | maskT1 | maskCA1) {
		t.Errorf("IER = %#x, want bit7 always set plus maskT1|maskCA1", got)
	}
	c.Write(regIER, maskCA1) // clear bit (bit 7 clear means "clear these bits")
	if got := c.Peek(regIER) &^ 0x80; got != maskT1 {
		t.Errorf("IER after clearing maskCA1 = %#x, want only maskT1 set", got)
	}
}

func TestIFRWriteClearsBits(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.ifr = maskCA1 | maskCB1
	c.Write(regIFR, maskCA1)
	if c.ifr != maskCB1 {
		t.Errorf("ifr = %#x after clearing maskCA1, want maskCB1 only", c.ifr)
	}
}

func TestRaisedRequiresBothIFRAndIER(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.ifr = maskCA1
	if c.Raised() {
		t.Error("Raised() should be false when IER hasn't enabled the pending bit")
	}
	c.ier = maskCA1
	if !c.Raised() {
		t.Error("Raised() should be true once IER enables an already-pending bit")
	}
}

func TestPeekDoesNotClearIFRLikeReadDoes(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.ifr = maskCA1
	// Peeking ORA must not clear the CA1 interrupt flag.
	c.Peek(regORA)
	if c.ifr&maskCA1 == 0 {
		t.Error("Peek(regORA) cleared maskCA1, but Peek must have no side effects")
	}
	c.Read(regORA)
	if c.ifr&maskCA1 != 0 {
		t.Error("Read(regORA) should clear maskCA1 on a genuine read")
	}
}

func TestT1OneShotTimeoutRaisesInterrupt(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regIER, 0x80|maskT1)
	c.Write(regT1CL, 1)
	c.Write(regT1CH, 0) // latches t1ll/t1lh, arms t1Pending/t1Reload

	c.TickFalling() // loads t1 = 1 from the latch
	c.TickRising()
	c.TickFalling() // t1: 1 -> 0
	c.TickRising()
	c.TickFalling() // t1: 0 -> 0xFFFF, reload=true, timeout=true
	c.TickRising()  // promotes timeout to maskT1 in ifr

	if !c.Raised() {
		t.Errorf("Raised() should be true after the T1 one-shot timer reaches its timeout, state: %s", spew.Sdump(c))
	}
}

func TestT1ContinuousModeRearmsAfterTimeout(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regACR, 0x40) // t1_continuous
	c.Write(regIER, 0x80|maskT1)
	c.Write(regT1CL, 1)
	c.Write(regT1CH, 0)

	c.TickFalling()
	c.TickRising()
	c.TickFalling()
	c.TickRising()
	c.TickFalling()
	c.TickRising()

	if !c.Raised() {
		t.Fatalf("expected a timeout to have fired, state: %s", spew.Sdump(c))
	}
	if !c.t1Pending {
		t.Errorf("t1Pending should remain true in continuous mode after a timeout, state: %s", spew.Sdump(c))
	}
}

func TestDebugDisabledReturnsEmptyString(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	if got := c.Debug(); got != "" {
		t.Errorf("Debug() = %q, want empty string when Debug wasn't requested", got)
	}
}

func TestDebugEnabledReturnsNonEmptyString(t *testing.T) {
	c := mustInit(t, &ChipDef{Debug: true})
	if got := c.Debug(); got == "" {
		t.Error("Debug() = empty string, want a state dump when Debug was requested")
	}
}

func TestEdgesAndClockRateImplementBinding(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	if c.Edges() != clock.Both {
		t.Errorf("Edges() = %v, want clock.Both", c.Edges())
	}
	if c.ClockRate() != clock.Rate2MHz {
		t.Errorf("ClockRate() = %v, want clock.Rate2MHz", c.ClockRate())
	}
}

func TestPortOutReflectsLivePins(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regDDRA, 0xFF)
	c.Write(regORA, 0x3C)
	if got := c.PortA().Output(); got != 0x3C {
		t.Errorf("PortA().Output() = %#x, want 0x3C", got)
	}
}

func TestDatabusValTracksLastAccess(t *testing.T) {
	c := mustInit(t, &ChipDef{})
	c.Write(regDDRA, 0xFF)
	c.Write(regORA, 0x99)
	if got := c.DatabusVal(); got != 0x99 {
		t.Errorf("DatabusVal() = %#x, want 0x99", got)
	}
}
