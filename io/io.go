// Package io defines the basic interfaces for working with 6502-family
// bus-side I/O ports (generally bi-directional). Implementors of a port
// (the VIA ports, the keyboard matrix/latch peripheral) call the input
// side on every clock tick and are expected to account for the fact
// that an output won't mirror a write for a full cycle while latches
// settle.
package io

// PortIn8 defines an 8 bit I/O port that can be read as input.
type PortIn8 interface {
	// Input returns the current value being presented on the port's
	// input pins.
	Input() uint8
}

// PortOut8 defines an 8 bit I/O port that can be read as output.
type PortOut8 interface {
	// Output returns the most recently latched output value.
	Output() uint8
}
