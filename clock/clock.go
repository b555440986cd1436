// Package clock implements the fixed-phase scheduler that drives every
// clocked device in the machine at the correct sub-rate and edge on each
// 2 MHz master tick.
package clock

// Edge identifies which phase(s) of phi2 a binding is dispatched on.
type Edge int

const (
	// Rising is phi2's leading edge: by this scheduler's fixed convention,
	// odd cycle indices.
	Rising Edge = iota
	// Falling is phi2's trailing edge: even cycle indices.
	Falling
	// Both dispatches on every cycle regardless of parity.
	Both
)

// Rate identifies a binding's declared clock rate.
type Rate int

const (
	// Rate2MHz ticks on every cycle.
	Rate2MHz Rate = iota
	// Rate1MHz ticks only on even cycles.
	Rate1MHz
	// RateDynamic re-queries the binding's ClockRate() every tick.
	RateDynamic
)

const (
	// MasterHz is the master oscillator frequency the whole machine is
	// derived from.
	MasterHz = 16_000_000
	// CPUHz is the 6502 bus clock.
	CPUHz = 2_000_000
	// PeripheralHz is the VIA / 1 MHz-bus peripheral clock.
	PeripheralHz = 1_000_000
)

// Binding wraps one clocked device together with its declared edge mask
// and rate. RisingEdge/FallingEdge are called only when that edge's
// should_tick predicate (computed from Edge/Rate) holds for the current
// cycle.
type Binding interface {
	// Edges returns the binding's declared edge mask.
	Edges() Edge
	// ClockRate returns the binding's current rate. For RateDynamic
	// bindings this may change from call to call.
	ClockRate() Rate
	// TickRising runs the binding's rising-edge handler.
	TickRising()
	// TickFalling runs the binding's falling-edge handler.
	TickFalling()
}

// shouldTick reports whether a binding with the given rate fires on cycle.
func shouldTick(rate Rate, cycle uint64) bool {
	switch rate {
	case Rate2MHz:
		return true
	case Rate1MHz:
		return cycle%2 == 0
	default:
		return true
	}
}

// edgeMatches reports whether edge fires given the cycle's parity.
// Odd cycle index = rising; even cycle index = falling (fixed convention).
func edgeMatches(e Edge, cycle uint64) bool {
	rising := cycle%2 == 1
	switch e {
	case Rising:
		return rising
	case Falling:
		return !rising
	default: // Both
		return true
	}
}

// Scheduler dispatches an ordered list of Bindings on each tick. Dispatch
// order is declaration order; no binding suspends or reorders another.
type Scheduler struct {
	bindings []Binding
}

// New builds a Scheduler over bindings in declaration (dispatch) order.
func New(bindings ...Binding) *Scheduler {
	return &Scheduler{bindings: bindings}
}

// Tick dispatches every binding whose should_tick predicate holds for
// cycle and whose declared edge matches cycle's parity. Rate is
// re-queried every call to support RateDynamic bindings (a dynamic-rate
// binding observed over a rate change sees the new rate on the very next
// predicate evaluation).
func (s *Scheduler) Tick(cycle uint64) {
	rising := cycle%2 == 1
	for _, b := range s.bindings {
		if !shouldTick(b.ClockRate(), cycle) {
			continue
		}
		if !edgeMatches(b.Edges(), cycle) {
			continue
		}
		if rising {
			b.TickRising()
		} else {
			b.TickFalling()
		}
	}
}
