package clock

import "testing"

type fakeBinding struct {
	edge    Edge
	rate    Rate
	rising  int
	falling int
}

func (f *fakeBinding) Edges() Edge         { return f.edge }
func (f *fakeBinding) ClockRate() Rate     { return f.rate }
func (f *fakeBinding) TickRising()         { f.rising++ }
func (f *fakeBinding) TickFalling()        { f.falling++ }

func TestRate2MHzTicksEveryCycle(t *testing.T) {
	b := &fakeBinding{edge: Both, rate: Rate2MHz}
	s := New(b)
	for cycle := uint64(0); cycle < 4; cycle++ {
		s.Tick(cycle)
	}
	if b.rising+b.falling != 4 {
		t.Errorf("total ticks = %d, want 4", b.rising+b.falling)
	}
}

func TestRate1MHzTicksOnlyOnEvenCycles(t *testing.T) {
	b := &fakeBinding{edge: Both, rate: Rate1MHz}
	s := New(b)
	for cycle := uint64(0); cycle < 4; cycle++ {
		s.Tick(cycle)
	}
	if b.rising+b.falling != 2 {
		t.Errorf("total ticks = %d, want 2 (only cycles 0 and 2)", b.rising+b.falling)
	}
}

func TestRisingEdgeOnlyFiresOnOddCycles(t *testing.T) {
	b := &fakeBinding{edge: Rising, rate: Rate2MHz}
	s := New(b)
	s.Tick(0)
	s.Tick(1)
	if b.rising != 1 || b.falling != 0 {
		t.Errorf("rising=%d falling=%d, want rising=1 falling=0", b.rising, b.falling)
	}
}

func TestFallingEdgeOnlyFiresOnEvenCycles(t *testing.T) {
	b := &fakeBinding{edge: Falling, rate: Rate2MHz}
	s := New(b)
	s.Tick(0)
	s.Tick(1)
	if b.falling != 1 || b.rising != 0 {
		t.Errorf("rising=%d falling=%d, want rising=0 falling=1", b.rising, b.falling)
	}
}

func TestBothEdgeFiresEveryCycle(t *testing.T) {
	b := &fakeBinding{edge: Both, rate: Rate2MHz}
	s := New(b)
	s.Tick(0)
	s.Tick(1)
	if b.rising != 1 || b.falling != 1 {
		t.Errorf("rising=%d falling=%d, want rising=1 falling=1", b.rising, b.falling)
	}
}

func TestDispatchOrderIsDeclarationOrder(t *testing.T) {
	var order []int
	mk := func(id int) *orderBinding { return &orderBinding{id: id, order: &order} }
	s := New(mk(1), mk(2), mk(3))
	s.Tick(1)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("dispatch order = %v, want [1 2 3]", order)
	}
}

type orderBinding struct {
	id    int
	order *[]int
}

func (o *orderBinding) Edges() Edge     { return Both }
func (o *orderBinding) ClockRate() Rate { return Rate2MHz }
func (o *orderBinding) TickRising()     { *o.order = append(*o.order, o.id) }
func (o *orderBinding) TickFalling()    { *o.order = append(*o.order, o.id) }

func TestRateDynamicReflectsLatestRateEachTick(t *testing.T) {
	d := &dynamicBinding{rate: Rate1MHz}
	s := New(d)
	s.Tick(1) // odd, but Rate1MHz only fires on even cycles
	if d.rising != 0 {
		t.Errorf("rising = %d, want 0 while rate is Rate1MHz on an odd cycle", d.rising)
	}
	d.rate = Rate2MHz
	s.Tick(1)
	if d.rising != 1 {
		t.Errorf("rising = %d, want 1 after switching to Rate2MHz", d.rising)
	}
}

type dynamicBinding struct {
	rate   Rate
	rising int
}

func (d *dynamicBinding) Edges() Edge     { return Rising }
func (d *dynamicBinding) ClockRate() Rate { return d.rate }
func (d *dynamicBinding) TickRising()     { d.rising++ }
func (d *dynamicBinding) TickFalling()    {}
