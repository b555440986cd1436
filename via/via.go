// Package via implements the MOS 6522 Versatile Interface Adapter at the
// level of detail the BBC MOS's timing-sensitive code depends on: two
// ports, two timers, the shift register, control-line handshaking, and
// the IFR/IER interrupt logic. Two independent instances (System VIA,
// User VIA) are used by package model.
package via

import (
	"fmt"

	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/io"
	"github.com/jmchacon/beeb/irq"
	"github.com/jmchacon/beeb/memory"
)

// Register offsets, addressed as addr & 0x0F.
const (
	regORB  = 0x0
	regORA  = 0x1
	regDDRB = 0x2
	regDDRA = 0x3
	regT1CL = 0x4
	regT1CH = 0x5
	regT1LL = 0x6
	regT1LH = 0x7
	regT2CL = 0x8
	regT2CH = 0x9
	regSR   = 0xA
	regACR  = 0xB
	regPCR  = 0xC
	regIFR  = 0xD
	regIER  = 0xE
	regORAH = 0xF // ORA without handshake
)

// IFR/IER bit masks.
const (
	maskCA2 = uint8(0x01)
	maskCA1 = uint8(0x02)
	maskSR  = uint8(0x04)
	maskCB2 = uint8(0x08)
	maskCB1 = uint8(0x10)
	maskT2  = uint8(0x20)
	maskT1  = uint8(0x40)
	maskIRQ = uint8(0x80)
)

// Cx2Control is the PCR's 3-bit control-line mode for CA2 or CB2.
type Cx2Control uint8

const (
	Cx2InputNegEdge       Cx2Control = 0
	Cx2InputIndIRQNegEdge Cx2Control = 1
	Cx2InputPosEdge       Cx2Control = 2
	Cx2InputIndIRQPosEdge Cx2Control = 3
	Cx2OutputHandshake    Cx2Control = 4
	Cx2OutputPulse        Cx2Control = 5
	Cx2OutputLow          Cx2Control = 6
	Cx2OutputHigh         Cx2Control = 7
)

// port holds the per-port (A or B) state.
type port struct {
	or    uint8 // output register
	ddr   uint8 // data direction register
	p     uint8 // current pin state
	plat  uint8 // latched input value
	c1    uint8 // control line 1
	oldC1 uint8
	c2    uint8 // control line 2
	oldC2 uint8
	pulse uint8 // output-pulse countdown
}

// Peripheral lets an owner (e.g. the System VIA's keyboard+latch wiring)
// observe port changes and drive control lines, as spec.md's "peripheral
// abstraction" paragraph describes.
type Peripheral interface {
	// UpdatePortA is called whenever port A's OR or DDR changes (or a read
	// needs fresh input) and returns the byte to present on A's input pins.
	UpdatePortA(output, ddr uint8) uint8
	// UpdatePortB is the port B equivalent of UpdatePortA.
	UpdatePortB(output, ddr uint8) uint8
	// UpdateControlLines lets the peripheral drive CA1/CA2/CB1/CB2 inputs;
	// it receives the current values and returns the new ones.
	UpdateControlLines(ca1, ca2, cb1, cb2 uint8) (newCA1, newCA2, newCB1, newCB2 uint8)
}

// Chip is a single 6522 VIA.
type Chip struct {
	a, b port

	ifr, ier, acr, pcr uint8
	sr                 uint8

	t1ll, t1lh            uint8
	t1                     uint16
	t1Reload, t1Pending    bool
	t1Timeout              bool
	t1PB7                  uint8

	t2ll, t2lh          uint8
	t2                   uint16
	t2Reload, t2Pending  bool
	t2Timeout            bool
	t2Count              bool
	oldPB                uint8

	peripheral Peripheral
	parent     memory.Bank
	databus    uint8
	debug      bool
}

// ChipDef configures a new VIA instance.
type ChipDef struct {
	// Peripheral, if non-nil, observes port changes and drives control lines.
	Peripheral Peripheral
	// Parent, if non-nil, is the containing memory.Bank.
	Parent memory.Bank
	// Debug, if true, makes Debug() emit state.
	Debug bool
}

// Init returns a freshly reset VIA.
func Init(d *ChipDef) (*Chip, error) {
	c := &Chip{peripheral: d.Peripheral, parent: d.Parent, debug: d.Debug}
	c.Reset()
	return c, nil
}

// Reset restores documented power-on defaults. The T1 latch defaults are
// arbitrary but non-zero (51962 cycles, ~19.2Hz at 1MHz) so MOS code that
// polls for a zero-crossing before programming the timer doesn't see a
// spurious immediate timeout.
func (c *Chip) Reset() {
	c.a = port{p: 0xFF, plat: 0xFF}
	c.b = port{p: 0xFF, plat: 0xFF}
	c.ifr, c.ier, c.acr, c.pcr, c.sr = 0, 0, 0, 0, 0
	c.t1ll, c.t1lh = 0xFA, 0xCA
	c.t1, c.t1Reload, c.t1Pending, c.t1Timeout, c.t1PB7 = 0, false, false, false, 0
	c.t2ll, c.t2lh = 0, 0
	c.t2, c.t2Reload, c.t2Pending, c.t2Timeout, c.t2Count = 0, false, false, false, true
	c.oldPB = 0
}

// PowerOn implements memory.Bank.
func (c *Chip) PowerOn() {
	c.Reset()
}

// SetPeripheral installs or replaces the peripheral callback.
func (c *Chip) SetPeripheral(p Peripheral) {
	c.peripheral = p
}

var (
	_ memory.Bank   = (*Chip)(nil)
	_ memory.Peeker = (*Chip)(nil)
	_ irq.Sender    = (*Chip)(nil)
	_ io.PortOut8   = (*portOut)(nil)
)

// portOut adapts a VIA port's pin state to io.PortOut8 for callers that
// want to observe the live output pins (e.g. a sound chip wired to port A).
type portOut struct{ c *Chip; which int }

func (p *portOut) Output() uint8 {
	if p.which == 0 {
		return p.c.a.p
	}
	return p.c.b.p
}

// PortA returns an io.PortOut8 reflecting port A's current pin state.
func (c *Chip) PortA() io.PortOut8 { return &portOut{c, 0} }

// PortB returns an io.PortOut8 reflecting port B's current pin state.
func (c *Chip) PortB() io.PortOut8 { return &portOut{c, 1} }

// Parent implements memory.Bank.
func (c *Chip) Parent() memory.Bank { return c.parent }

// DatabusVal implements memory.Bank.
func (c *Chip) DatabusVal() uint8 { return c.databus }

// Raised implements irq.Sender: the IRQ line is high iff IFR & IER & 0x7F != 0.
func (c *Chip) Raised() bool {
	return (c.ifr & c.ier & 0x7f) != 0
}

// updatePortPins asks the peripheral (if any) for fresh input and control
// line values, called whenever OR/DDR changes or a read needs current
// input, matching the original's update_port_pins.
func (c *Chip) updatePortPins() {
	if c.peripheral == nil {
		c.a.p = c.a.or | ^c.a.ddr
		c.b.p = c.b.or | ^c.b.ddr
		return
	}
	inA := c.peripheral.UpdatePortA(c.a.or, c.a.ddr)
	inB := c.peripheral.UpdatePortB(c.b.or, c.b.ddr)
	c.a.p = (c.a.or & c.a.ddr) | (inA &^ c.a.ddr)
	c.b.p = (c.b.or & c.b.ddr) | (inB &^ c.b.ddr)
	c.a.c1, c.a.c2, c.b.c1, c.b.c2 = c.peripheral.UpdateControlLines(c.a.c1, c.a.c2, c.b.c1, c.b.c2)
}

// Read implements memory.Bank; addr is masked to the 16 register positions.
func (c *Chip) Read(addr uint16) uint8 {
	val := c.read(addr)
	c.databus = val
	return val
}

// Peek implements memory.Peeker: returns the same value Read would without
// any of Read's side effects (IFR clearing, handshake advance).
func (c *Chip) Peek(addr uint16) uint8 {
	switch addr & 0x0F {
	case regORB:
		return c.readPortB()
	case regORA, regORAH:
		return c.readPortA()
	case regDDRB:
		return c.b.ddr
	case regDDRA:
		return c.a.ddr
	case regT1CL:
		return uint8(c.t1)
	case regT1CH:
		return uint8(c.t1 >> 8)
	case regT1LL:
		return c.t1ll
	case regT1LH:
		return c.t1lh
	case regT2CL:
		return uint8(c.t2)
	case regT2CH:
		return uint8(c.t2 >> 8)
	case regSR:
		return c.sr
	case regACR:
		return c.acr
	case regPCR:
		return c.pcr
	case regIFR:
		v := c.ifr & 0x7f
		if c.ier&c.ifr&0x7f != 0 {
			v |= 0x80
		}
		return v
	case regIER:
		return c.ier | 0x80
	default:
		return 0xFF
	}
}

func (c *Chip) readPortB() uint8 {
	c.updatePortPins()
	var v uint8
	if c.acr&0x02 != 0 { // pb_latching
		v = (c.b.or & c.b.ddr) | (c.b.plat &^ c.b.ddr)
	} else {
		v = (c.b.or & c.b.ddr) | (c.b.p &^ c.b.ddr)
	}
	if c.acr&0x80 != 0 { // t1_output_pb7
		v &= 0x7f
		v |= c.t1PB7
	}
	return v
}

func (c *Chip) readPortA() uint8 {
	c.updatePortPins()
	if c.acr&0x01 != 0 { // pa_latching
		return c.a.plat
	}
	return c.a.p
}

func (c *Chip) read(addr uint16) uint8 {
	switch addr & 0x0F {
	case regORB:
		v := c.readPortB()
		c.ifr &^= maskCB1
		if c.pcr>>4&0x07&5 != 1 {
			c.ifr &^= maskCB2
		}
		return v

	case regORA:
		c.ifr &^= maskCA1
		if c.pcr&0x07&5 != 1 {
			c.ifr &^= maskCA2
		}
		switch Cx2Control(c.pcr >> 1 & 0x07) {
		case Cx2OutputHandshake:
			c.a.c2 = 0
		case Cx2OutputPulse:
			c.a.c2 = 0
			c.a.pulse = 2
		}
		return c.readPortA()

	case regORAH:
		return c.readPortA()

	case regDDRB:
		return c.b.ddr
	case regDDRA:
		return c.a.ddr

	case regT1CL:
		if !c.t1Timeout {
			c.ifr &^= maskT1
		}
		return uint8(c.t1)
	case regT1CH:
		return uint8(c.t1 >> 8)
	case regT1LL:
		return c.t1ll
	case regT1LH:
		return c.t1lh

	case regT2CL:
		if !c.t2Timeout {
			c.ifr &^= maskT2
		}
		return uint8(c.t2)
	case regT2CH:
		return uint8(c.t2 >> 8)

	case regSR:
		return c.sr
	case regACR:
		return c.acr
	case regPCR:
		return c.pcr

	case regIFR:
		v := c.ifr & 0x7f
		if c.ier&c.ifr&0x7f != 0 {
			v |= 0x80
		}
		return v

	case regIER:
		return c.ier | 0x80

	default:
		return 0xFF
	}
}

// Write implements memory.Bank.
func (c *Chip) Write(addr uint16, val uint8) {
	c.databus = val
	c.write(addr, val)
}

func (c *Chip) write(addr uint16, val uint8) {
	switch addr & 0x0F {
	case regORB:
		c.b.or = val
		c.ifr &^= maskCB1
		if c.pcr>>4&0x07&5 != 1 {
			c.ifr &^= maskCB2
		}
		switch Cx2Control(c.pcr >> 4 & 0x07) {
		case Cx2OutputHandshake:
			c.b.c2 = 0
		case Cx2OutputPulse:
			c.b.c2 = 0
			c.b.pulse = 2
		}
		c.updatePortPins()

	case regORA:
		c.ifr &^= maskCA1
		if c.pcr&0x07&5 != 1 {
			c.ifr &^= maskCA2
		}
		switch Cx2Control(c.pcr >> 1 & 0x07) {
		case Cx2OutputHandshake:
			c.a.c2 = 0
		case Cx2OutputPulse:
			c.a.c2 = 0
			c.a.pulse = 2
		}
		c.a.or = val
		c.updatePortPins()

	case regORAH:
		c.a.or = val
		c.updatePortPins()

	case regDDRB:
		c.b.ddr = val
		c.updatePortPins()
	case regDDRA:
		c.a.ddr = val
		c.updatePortPins()

	case regT1CL, regT1LL:
		c.t1ll = val

	case regT1CH:
		if !c.t1Timeout {
			c.ifr &^= maskT1
		}
		c.t1lh = val
		c.t1Pending = true
		c.t1Reload = true
		c.t1PB7 = 0

	case regT1LH:
		if !c.t1Timeout {
			c.ifr &^= maskT1
		}
		c.t1lh = val

	case regT2CL:
		c.t2ll = val

	case regT2CH:
		if !c.t2Timeout {
			c.ifr &^= maskT2
		}
		c.t2lh = val
		c.t2Pending = true
		c.t2Reload = true

	case regSR:
		c.sr = val

	case regACR:
		c.acr = val
		if c.t1Timeout && c.acr&0x40 == 0 { // !t1_continuous
			c.t1Pending = false
		}

	case regPCR:
		c.pcr = val

	case regIFR:
		c.ifr &^= val

	case regIER:
		if val&0x80 != 0 {
			c.ier |= val
		} else {
			c.ier &^= val
		}
	}
}

// tickControlTrailing runs the shared CA1/CA2 (or CB1/CB2) edge-detect and
// handshake logic for one port on the trailing (falling) edge.
func tickControlTrailing(p *port, latching bool, pcrBits uint8, cx2Mask uint8, ifr *uint8) {
	oldC1 := p.oldC1
	p.oldC1 = p.c1
	code := (p.c1 | oldC1<<1 | pcrBits<<2) & 7
	if code == 2 || code == 5 {
		*ifr |= cx2Mask << 1
		if latching {
			p.plat = p.p
		}
	}

	oldC2 := p.oldC2
	p.oldC2 = p.c2
	switch Cx2Control(pcrBits >> 1 & 0x07) {
	case Cx2InputNegEdge, Cx2InputIndIRQNegEdge:
		if oldC2 != 0 && p.c2 == 0 {
			*ifr |= cx2Mask
		}
		p.c2 = 1
	case Cx2InputPosEdge, Cx2InputIndIRQPosEdge:
		if oldC2 == 0 && p.c2 != 0 {
			*ifr |= cx2Mask
		}
		p.c2 = 1
	case Cx2OutputPulse:
		if p.pulse > 0 {
			p.pulse--
			if p.pulse == 0 {
				p.c2 = 1
			}
		}
	case Cx2OutputHigh:
		p.c2 = 1
	case Cx2OutputLow:
		p.c2 = 0
	case Cx2OutputHandshake:
		if p.c1 == 0 {
			p.c2 = 1
		}
	}

	p.c1 = 1
	p.p = ^p.ddr | (p.or & p.ddr)
}

// TickFalling runs the trailing-edge (phi2 falling) half of a VIA cycle:
// control-line handshaking and timer decrement, per spec.md's "Trailing
// edge (phi2 falling)" steps.
func (c *Chip) TickFalling() {
	tickControlTrailing(&c.a, c.acr&0x01 != 0, c.pcr&0x0F, maskCA2, &c.ifr)
	tickControlTrailing(&c.b, c.acr&0x02 != 0, c.pcr>>4&0x0F, maskCB2, &c.ifr)

	c.t1Timeout = false
	if c.t1Reload {
		c.t1 = uint16(c.t1ll) | uint16(c.t1lh)<<8
		c.t1Reload = false
	} else {
		c.t1--
		c.t1Reload = c.t1 == 0xFFFF
		c.t1Timeout = c.t1Pending && c.t1Reload
	}

	c.t2Timeout = false
	if c.t2Reload {
		c.t2 = uint16(c.t2ll) | uint16(c.t2lh)<<8
		c.t2Reload = false
	} else if c.t2Count {
		c.t2--
		c.t2Timeout = c.t2Pending && c.t2 == 0xFFFF
	}
}

// TickRising runs the leading-edge (phi2 rising) half of a VIA cycle:
// timeout-to-interrupt promotion and PB7 toggling, per spec.md's "Leading
// edge (phi2 rising)" steps.
func (c *Chip) TickRising() {
	if c.t1Timeout {
		c.t1Pending = c.acr&0x40 != 0 // t1_continuous
		c.ifr |= maskT1
		c.t1PB7 ^= 0x80
	}
	if c.t2Timeout {
		c.t2Pending = false
		c.ifr |= maskT2
	}
	if c.acr&0x20 != 0 { // t2_count_pb6
		c.t2Count = (c.oldPB&0x40 != 0) && (c.b.p&0x40 == 0)
		c.oldPB = c.b.p
	} else {
		c.t2Count = true
	}
}

// Edges implements clock.Binding: a VIA needs both halves of every 2 MHz
// cycle (one full "VIA cycle" is a trailing update followed by the next
// leading update).
func (c *Chip) Edges() clock.Edge { return clock.Both }

// ClockRate implements clock.Binding: dispatched every master cycle.
func (c *Chip) ClockRate() clock.Rate { return clock.Rate2MHz }

var _ clock.Binding = (*Chip)(nil)

// Debug returns a human-readable dump of the VIA's state if debug mode was
// enabled at construction, otherwise an empty string.
func (c *Chip) Debug() string {
	if !c.debug {
		return ""
	}
	return fmt.Sprintf("t1=%.4X(ll=%.2X lh=%.2X) t2=%.4X ifr=%.2X ier=%.2X acr=%.2X pcr=%.2X",
		c.t1, c.t1ll, c.t1lh, c.t2, c.ifr, c.ier, c.acr, c.pcr)
}
