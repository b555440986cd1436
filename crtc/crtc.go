// Package crtc implements the MC6845 CRT controller: the horizontal and
// vertical timing state machine that derives sync, display-enable,
// cursor, and the refresh address the Video ULA / SAA5050 read screen
// memory with.
//
// The retrieved reference source only carries an MC6845 register stub
// with no timing logic, so the state machine below follows the
// specification's prose directly (counters, wraparound, and the derived
// booleans) rather than a transliterated original implementation.
package crtc

import (
	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/memory"
)

// Register indices, selected via the even-offset address register.
const (
	R0HTotal = iota
	R1HDisplayed
	R2HSyncPos
	R3SyncWidth
	R4VTotal
	R5VTotalAdjust
	R6VDisplayed
	R7VSyncPos
	R8InterlaceSkew
	R9MaxScanLine
	R10CursorStart
	R11CursorEnd
	R12StartAddrH
	R13StartAddrL
	R14CursorH
	R15CursorL
	R16LightPenH
	R17LightPenL
	numRegs
)

// Output is the per-tick record the Video binding consumes.
type Output struct {
	Address uint16 // 14-bit refresh address
	Raster  uint8  // 5-bit raster line within the current character row
	HSync   bool
	VSync   bool
	Display bool
	Cursor  bool
}

// Chip is an MC6845 CRT controller.
type Chip struct {
	regs     [numRegs]uint8
	selected uint8

	hc    uint8 // horizontal character counter
	raster uint8
	row    uint8

	addr      uint16 // current scanline's refresh address
	lineStart uint16 // address at raster 0 of the current character row

	inVAdjust    bool
	vAdjustCount uint8
	vDisplay     bool

	hsyncRemaining uint8
	vsyncRemaining uint8
	vsyncArmed     bool

	frame uint8 // incremented once per frame, drives cursor blink

	fastClock bool

	parent  memory.Bank
	databus uint8
}

// New returns a freshly reset CRTC.
func New() *Chip {
	c := &Chip{}
	c.Reset()
	return c
}

// Reset clears registers and timing state. Registers power on to zero,
// matching spec.md's documented defaults.
func (c *Chip) Reset() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.selected = 0
	c.hc, c.raster, c.row = 0, 0, 0
	c.addr, c.lineStart = 0, 0
	c.inVAdjust, c.vAdjustCount = false, 0
	c.vDisplay = true
	c.hsyncRemaining, c.vsyncRemaining = 0, 0
	c.vsyncArmed = true
	c.frame = 0
}

// SetFastClock is called by the Video binding each tick with the Video
// ULA's fast-clock bit, which determines the CRTC's dynamic clock rate.
func (c *Chip) SetFastClock(fast bool) {
	c.fastClock = fast
}

// ClockRate implements clock.Binding: 2 MHz in fast mode, 1 MHz otherwise.
func (c *Chip) ClockRate() clock.Rate {
	if c.fastClock {
		return clock.Rate2MHz
	}
	return clock.Rate1MHz
}

// Edges implements clock.Binding: the CRTC only does work on the falling edge.
func (c *Chip) Edges() clock.Edge { return clock.Falling }

// TickRising implements clock.Binding; the CRTC has no rising-edge work.
func (c *Chip) TickRising() {}

// TickFalling implements clock.Binding by advancing the timing state
// machine one character time. Most callers should use Tick, which also
// returns the derived Output; TickFalling exists so Chip satisfies
// clock.Binding directly when driven by a Scheduler.
func (c *Chip) TickFalling() {
	c.Tick()
}

var _ clock.Binding = (*Chip)(nil)

// Read implements the two-step register protocol: an even offset reads
// the address-select register, an odd offset reads the selected
// register's value.
func (c *Chip) Read(addr uint16) uint8 {
	if addr&1 == 0 {
		c.databus = c.selected
	} else if int(c.selected) < numRegs {
		c.databus = c.regs[c.selected]
	} else {
		c.databus = 0xFF
	}
	return c.databus
}

// Peek is side-effect-free and identical to Read (register reads on the
// CRTC have no side effects to avoid).
func (c *Chip) Peek(addr uint16) uint8 {
	return c.Read(addr)
}

// Write implements the two-step register protocol: an even offset
// selects a register (masked to 5 bits; a selection past the last
// register is kept, reads back as 0xFF and discards writes), an odd
// offset writes the selected register.
func (c *Chip) Write(addr uint16, val uint8) {
	c.databus = val
	if addr&1 == 0 {
		c.selected = val & 0x1F
		return
	}
	if int(c.selected) < numRegs {
		c.regs[c.selected] = val
	}
}

// PowerOn implements memory.Bank.
func (c *Chip) PowerOn() {
	c.Reset()
}

// Parent implements memory.Bank.
func (c *Chip) Parent() memory.Bank {
	return c.parent
}

// DatabusVal implements memory.Bank.
func (c *Chip) DatabusVal() uint8 {
	return c.databus
}

// SetParent attaches the outer memory controller.
func (c *Chip) SetParent(parent memory.Bank) {
	c.parent = parent
}

var (
	_ memory.Bank   = (*Chip)(nil)
	_ memory.Peeker = (*Chip)(nil)
)

// Tick advances the timing state machine by one character time and
// returns the record for that tick.
func (c *Chip) Tick() Output {
	r0 := c.regs[R0HTotal]
	r1 := c.regs[R1HDisplayed]
	r2 := c.regs[R2HSyncPos]
	r3lo := c.regs[R3SyncWidth] & 0x0F
	r10 := c.regs[R10CursorStart]
	r11 := c.regs[R11CursorEnd]
	r14 := c.regs[R14CursorH]
	r15 := c.regs[R15CursorL]

	if c.hc == r2 && r3lo > 0 {
		c.hsyncRemaining = r3lo
	}

	display := c.hc < r1 && c.vDisplay
	hsync := c.hsyncRemaining > 0
	vsync := c.vsyncRemaining > 0

	cursorAddr := uint16(r14)<<8 | uint16(r15)
	blinkMode := (r10 >> 5) & 0x03
	cursorLine := c.raster >= r10&0x1F && c.raster <= r11&0x1F
	cursorVisible := blinkMode != 1 // bit pattern 01 disables the cursor
	switch blinkMode {
	case 2:
		cursorVisible = (c.frame/16)%2 == 0
	case 3:
		cursorVisible = (c.frame/32)%2 == 0
	}
	cursor := display && cursorLine && cursorVisible && (c.addr&0x3FFF) == cursorAddr

	out := Output{
		Address: c.addr & 0x3FFF,
		Raster:  c.raster & 0x1F,
		HSync:   hsync,
		VSync:   vsync,
		Display: display,
		Cursor:  cursor,
	}

	if hsync {
		c.hsyncRemaining--
	}
	c.addr++
	c.hc++
	if c.hc > r0 {
		c.hc = 0
		c.endOfScanline()
	}
	return out
}

func (c *Chip) endOfScanline() {
	r4 := c.regs[R4VTotal]
	r5 := c.regs[R5VTotalAdjust]
	r6 := c.regs[R6VDisplayed]
	r7 := c.regs[R7VSyncPos]
	r9 := c.regs[R9MaxScanLine]
	r1 := c.regs[R1HDisplayed]
	r3hi := c.regs[R3SyncWidth] >> 4

	if c.vsyncRemaining > 0 {
		c.vsyncRemaining--
	}

	if !c.inVAdjust {
		if c.raster == r9 {
			c.raster = 0
			if c.row == r4 {
				if r5 > 0 {
					c.inVAdjust = true
					c.vAdjustCount = 0
				} else {
					c.endOfFrame()
					return
				}
			} else {
				c.row++
				c.lineStart += uint16(r1)
				if c.row == r6 {
					c.vDisplay = false
				}
			}
		} else {
			c.raster++
		}
	} else {
		c.vAdjustCount++
		if c.vAdjustCount >= r5 {
			c.endOfFrame()
			return
		}
	}

	c.addr = c.lineStart
	c.armVSync(r7, r3hi)
}

func (c *Chip) armVSync(r7, r3hi uint8) {
	if c.row == r7 {
		if c.vsyncArmed {
			c.vsyncRemaining = r3hi
			c.vsyncArmed = false
		}
	} else {
		c.vsyncArmed = true
	}
}

func (c *Chip) endOfFrame() {
	r12 := c.regs[R12StartAddrH]
	r13 := c.regs[R13StartAddrL]

	c.row = 0
	c.raster = 0
	c.inVAdjust = false
	c.vAdjustCount = 0
	c.vDisplay = true
	c.lineStart = uint16(r12)<<8 | uint16(r13)
	c.addr = c.lineStart
	c.vsyncArmed = true
	c.frame++
	c.armVSync(c.regs[R7VSyncPos], c.regs[R3SyncWidth]>>4)
}
