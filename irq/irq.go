// Package irq defines the basic interfaces for working with a 6502 family
// interrupt line. A receiver of interrupts (IRQ/NMI) implements this
// interface to allow other components which generate them to raise state
// without cross coupling component logic.
// NOTE: Even though chips make a distinction between level and edge type
//       interrupts the interfaces here don't matter and assume implementors
//       simply account for this in clock cycle management.
package irq

// Sender defines the interface for an IRQ source.
type Sender interface {
	// Raised indicates whether the interrupt is currently held high.
	Raised() bool
}

// Binding pairs an IRQ source with the bit position it contributes to an
// aggregated IRQ mask.
type Binding struct {
	Device Sender
	Bit    uint
}

// Aggregator ORs together a fixed list of IRQ sources into a single mask,
// one bit per source. It is itself a Sender: Raised() reports whether any
// bound device currently has its interrupt pending.
type Aggregator struct {
	bindings []Binding
}

// NewAggregator returns an Aggregator polling the given bindings in order.
func NewAggregator(bindings ...Binding) *Aggregator {
	return &Aggregator{bindings: bindings}
}

// Poll computes the aggregated mask: bit i is set iff bindings[i].Device.Raised().
func (a *Aggregator) Poll() uint8 {
	var mask uint8
	for _, b := range a.bindings {
		if b.Device.Raised() {
			mask |= 1 << b.Bit
		}
	}
	return mask
}

// Raised implements the Sender interface: true iff Poll() != 0.
func (a *Aggregator) Raised() bool {
	return a.Poll() != 0
}
