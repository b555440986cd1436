package irq

import "testing"

type fakeSender struct{ raised bool }

func (f *fakeSender) Raised() bool { return f.raised }

func TestAggregatorPollSetsBitPerRaisedSource(t *testing.T) {
	a1 := &fakeSender{raised: true}
	a2 := &fakeSender{raised: false}
	agg := NewAggregator(
		Binding{Device: a1, Bit: 0},
		Binding{Device: a2, Bit: 1},
	)

	if got := agg.Poll(); got != 0x01 {
		t.Errorf("Poll() = %#02x, want 0x01", got)
	}

	a2.raised = true
	if got := agg.Poll(); got != 0x03 {
		t.Errorf("Poll() after raising the second source = %#02x, want 0x03", got)
	}
}

func TestAggregatorRaisedReflectsAnyBit(t *testing.T) {
	s := &fakeSender{}
	agg := NewAggregator(Binding{Device: s, Bit: 0})

	if agg.Raised() {
		t.Error("Raised() = true with no source asserting")
	}
	s.raised = true
	if !agg.Raised() {
		t.Error("Raised() = false with a source asserting")
	}
}

func TestAggregatorWithNoBindingsNeverRaises(t *testing.T) {
	agg := NewAggregator()
	if agg.Raised() {
		t.Error("Raised() = true for an aggregator with no bindings")
	}
}

func TestAggregatorBitPositionsDontOverlap(t *testing.T) {
	s0 := &fakeSender{raised: true}
	s3 := &fakeSender{raised: true}
	agg := NewAggregator(
		Binding{Device: s0, Bit: 0},
		Binding{Device: s3, Bit: 3},
	)
	if got := agg.Poll(); got != 0x09 {
		t.Errorf("Poll() = %#02x, want 0x09 (bits 0 and 3)", got)
	}
}
