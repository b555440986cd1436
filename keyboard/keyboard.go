// Package keyboard implements the BBC Micro's 10x10 keyboard matrix,
// the IC32 addressable latch driven off the system VIA's Port B, and
// the via.Peripheral binding that wires both into the system VIA.
package keyboard

import (
	"sync/atomic"

	"github.com/jmchacon/beeb/via"
)

// NumColumns and NumRows size the physical key matrix.
const (
	NumColumns = 10
	NumRows    = 10
)

// Matrix is the physical key matrix: a bitmask of pressed rows per
// column. It is safe to call from multiple goroutines concurrently (a
// network handler setting key state, the clocked core reading it) with
// no external locking, matching the reference implementation's stated
// thread-safety contract.
type Matrix struct {
	columns [NumColumns]uint32 // atomic bitmask of pressed rows
}

// KeyDown marks (row, column) as pressed.
func (m *Matrix) KeyDown(row, column uint8) {
	if row >= NumRows || column >= NumColumns {
		return
	}
	for {
		old := atomic.LoadUint32(&m.columns[column])
		if atomic.CompareAndSwapUint32(&m.columns[column], old, old|(1<<row)) {
			return
		}
	}
}

// KeyUp marks (row, column) as released.
func (m *Matrix) KeyUp(row, column uint8) {
	if row >= NumRows || column >= NumColumns {
		return
	}
	for {
		old := atomic.LoadUint32(&m.columns[column])
		if atomic.CompareAndSwapUint32(&m.columns[column], old, old&^(1<<row)) {
			return
		}
	}
}

// IsKeyPressed reports whether (row, column) is currently pressed.
func (m *Matrix) IsKeyPressed(row, column uint8) bool {
	if row >= NumRows || column >= NumColumns {
		return false
	}
	return atomic.LoadUint32(&m.columns[column])&(1<<row) != 0
}

// ReadColumn returns a column's pressed-row bitmask.
func (m *Matrix) ReadColumn(column uint8) uint16 {
	if column >= NumColumns {
		return 0
	}
	return uint16(atomic.LoadUint32(&m.columns[column]))
}

// RowState returns a bitmask (bit per column) of which columns have row
// pressed.
func (m *Matrix) RowState(row uint8) uint16 {
	if row >= NumRows {
		return 0
	}
	var state uint16
	for col := uint8(0); col < NumColumns; col++ {
		if atomic.LoadUint32(&m.columns[col])&(1<<row) != 0 {
			state |= 1 << col
		}
	}
	return state
}

// AnyKeyInColumn reports whether any key is pressed in column. When
// excludeRow0 is set, the row-0 startup links are ignored (this is the
// mask the System VIA's keyboard interrupt line actually watches).
func (m *Matrix) AnyKeyInColumn(column uint8, excludeRow0 bool) bool {
	if column >= NumColumns {
		return false
	}
	mask := uint32(0x3FF)
	if excludeRow0 {
		mask = 0x3FE
	}
	return atomic.LoadUint32(&m.columns[column])&mask != 0
}

// Clear releases every key.
func (m *Matrix) Clear() {
	for i := range m.columns {
		atomic.StoreUint32(&m.columns[i], 0)
	}
}

// Latch bit assignments for the IC32 addressable latch.
const (
	SoundWrite    = 0x01 // active low
	SpeechRead    = 0x02
	SpeechWrite   = 0x04
	KBWrite       = 0x08 // active low
	ScreenBaseLo  = 0x10
	ScreenBaseHi  = 0x20
	CapsLockLED   = 0x40
	ShiftLockLED  = 0x80
)

// Latch is the IC32 74LS259 addressable latch: the System VIA's Port B
// drives it with a 3-bit address (which latch bit) and a 1-bit data
// value, one bit write at a time.
type Latch struct {
	value uint8
}

// Write sets or clears the latch bit selected by the low 3 bits of
// address.
func (l *Latch) Write(address uint8, data bool) {
	mask := uint8(1) << (address & 0x07)
	if data {
		l.value |= mask
	} else {
		l.value &^= mask
	}
}

func (l *Latch) Value() uint8 { return l.value }

// SoundWriteEnabled reports the (active-low) sound chip write strobe.
func (l *Latch) SoundWriteEnabled() bool { return l.value&SoundWrite == 0 }

// KeyboardEnabled reports the (active-low) keyboard auto-scan enable.
func (l *Latch) KeyboardEnabled() bool { return l.value&KBWrite == 0 }

func (l *Latch) CapsLockLED() bool  { return l.value&CapsLockLED != 0 }
func (l *Latch) ShiftLockLED() bool { return l.value&ShiftLockLED != 0 }

// ScreenBase returns the 2-bit screen base address bits used for the
// wraparound-aware screen memory start address.
func (l *Latch) ScreenBase() uint8 { return (l.value >> 4) & 0x03 }

func (l *Latch) Reset() { l.value = 0 }

// SystemPeripheral implements via.Peripheral for the system VIA: Port A
// carries keyboard scan data, Port B bits 0-3 drive the addressable
// latch, bits 4-7 report joystick/speech lines that this implementation
// reports as permanently idle (no joystick or speech hardware modeled).
type SystemPeripheral struct {
	Matrix *Matrix
	Latch  *Latch

	keyboardColumn uint8
	lastScannedKey uint8
	vsync          bool
}

// NewSystemPeripheral builds a SystemPeripheral over the given matrix
// and latch (both must be non-nil and shared with whatever else reads
// them, e.g. the network keyboard endpoint and the LED display).
func NewSystemPeripheral(m *Matrix, l *Latch) *SystemPeripheral {
	return &SystemPeripheral{Matrix: m, Latch: l}
}

// UpdatePortA implements via.Peripheral: the MOS writes a key number
// (column in bits 0-3, row in bits 4-6) and reads back bit 7 set iff
// that key is currently pressed.
func (p *SystemPeripheral) UpdatePortA(output, ddr uint8) uint8 {
	keyNumber := output & 0x7F
	p.lastScannedKey = keyNumber

	column := keyNumber & 0x0F
	row := (keyNumber >> 4) & 0x07

	pressed := false
	if column < NumColumns && row < NumRows {
		pressed = p.Matrix.IsKeyPressed(row, column)
	}
	if pressed {
		return keyNumber | 0x80
	}
	return keyNumber & 0x7F
}

// UpdatePortB implements via.Peripheral: bits 0-2 address the latch,
// bit 3 is the data value; bits 4-7 report idle joystick/speech lines.
func (p *SystemPeripheral) UpdatePortB(output, ddr uint8) uint8 {
	latchAddr := output & 0x07
	latchData := output&0x08 != 0
	p.Latch.Write(latchAddr, latchData)

	p.keyboardColumn = output & 0x0F

	return 0xF0
}

// UpdateControlLines implements via.Peripheral. CA2 is pulled low
// (asserted) whenever a key is pressed in the currently selected
// keyboard column, generating the keyboard interrupt the MOS's
// auto-repeat/scan loop waits on; all other lines pass through
// unmodified.
func (p *SystemPeripheral) UpdateControlLines(ca1, ca2, cb1, cb2 uint8) (uint8, uint8, uint8, uint8) {
	if p.Matrix.AnyKeyInColumn(p.keyboardColumn, true) {
		ca2 = 0
	} else {
		ca2 = 1
	}
	return ca1, ca2, cb1, cb2
}

// SetVSync is called on every video tick with the CRTC's current VSYNC
// level, which VSync then reports. UpdateControlLines does not drive CA1
// from it; CA1 passes through unchanged.
func (p *SystemPeripheral) SetVSync(active bool) { p.vsync = active }

func (p *SystemPeripheral) VSync() bool             { return p.vsync }
func (p *SystemPeripheral) KeyboardColumn() uint8   { return p.keyboardColumn }
func (p *SystemPeripheral) LastScannedKey() uint8   { return p.lastScannedKey }

var _ via.Peripheral = (*SystemPeripheral)(nil)
