package pixel

import "testing"

func TestNewDataMasksToFourBits(t *testing.T) {
	d := NewData(0xFF, 0x10, 0xAB)
	if d.R != 0x0F || d.G != 0x00 || d.B != 0x0B {
		t.Errorf("NewData(0xFF,0x10,0xAB) = %+v, want R=0x0F G=0x00 B=0x0B", d)
	}
}

func TestXORInvertsRGBOnly(t *testing.T) {
	d := Data{R: 0x0F, G: 0x00, B: 0x0F, X: 7}
	mask := Data{R: 0x0F, G: 0x0F, B: 0x00}
	got := d.XOR(mask)
	if got.R != 0x00 || got.G != 0x0F || got.B != 0x0F || got.X != 7 {
		t.Errorf("XOR() = %+v, want R=0 G=0xF B=0xF X=7 (metadata preserved)", got)
	}
}

func TestBatchSetTypeAndType(t *testing.T) {
	var b Batch
	b.SetType(Teletext)
	if b.Type() != Teletext {
		t.Errorf("Type() = %v, want Teletext", b.Type())
	}
}

func TestBatchSetFlagsMasksToFourBits(t *testing.T) {
	var b Batch
	b.SetFlags(FlagHSync | FlagVSync)
	if !b.HSync() || !b.VSync() || b.Display() {
		t.Error("flags not round-tripped correctly through SetFlags")
	}
}

func TestBatchFillSetsEveryPixel(t *testing.T) {
	var b Batch
	b.Fill(White)
	for i, p := range b.Pixels {
		if p != White {
			t.Errorf("Pixels[%d] = %+v, want White", i, p)
		}
	}
}

func TestBatchClearZeroesEverything(t *testing.T) {
	var b Batch
	b.Fill(White)
	b.SetType(Bitmap)
	b.SetFlags(FlagHSync)
	b.Clear()
	if b.Type() != Nothing || b.Flags() != FlagNone || b.Pixels[3] != (Data{}) {
		t.Error("Clear() left non-zero state")
	}
}

func TestBatchXORCursorInvertsAllPixels(t *testing.T) {
	var b Batch
	b.Fill(Black)
	b.XORCursor()
	for i, p := range b.Pixels {
		if p.R != 0x0F || p.G != 0x0F || p.B != 0x0F {
			t.Errorf("Pixels[%d] after XORCursor() on black = %+v, want full white", i, p)
		}
	}
}

func TestQueuePushAndConsume(t *testing.T) {
	q := NewQueue(4)
	var b Batch
	b.SetType(Bitmap)
	if !q.Push(b) {
		t.Fatal("Push() returned false on a fresh queue")
	}
	if q.Size() != 1 {
		t.Errorf("Size() = %d, want 1", q.Size())
	}

	cons := q.AcquireConsumer()
	if cons.Total() != 1 {
		t.Fatalf("AcquireConsumer().Total() = %d, want 1", cons.Total())
	}
	if cons.A.At(0).Type() != Bitmap {
		t.Error("consumed batch doesn't match what was pushed")
	}
	q.Consume(1)
	if !q.Empty() {
		t.Error("Empty() = false after consuming the only batch")
	}
}

func TestQueuePopReturnsWhatWasPushed(t *testing.T) {
	q := NewQueue(4)
	var b Batch
	b.SetType(Teletext)
	if !q.Push(b) {
		t.Fatal("Push() returned false on a fresh queue")
	}
	got, ok := q.Pop()
	if !ok {
		t.Fatal("Pop() returned false on a non-empty queue")
	}
	if got.Type() != Teletext {
		t.Errorf("Pop() batch type = %v, want Teletext", got.Type())
	}
	if !q.Empty() {
		t.Error("Empty() = false after popping the only batch")
	}
}

func TestQueuePopFailsWhenEmpty(t *testing.T) {
	q := NewQueue(4)
	if _, ok := q.Pop(); ok {
		t.Error("Pop() returned true on an empty queue")
	}
}

func TestQueuePushFailsWhenFull(t *testing.T) {
	q := NewQueue(2)
	var b Batch
	if !q.Push(b) || !q.Push(b) {
		t.Fatal("expected the first two pushes into a capacity-2 queue to succeed")
	}
	if q.Push(b) {
		t.Error("Push() succeeded on a full queue")
	}
	if !q.Full() {
		t.Error("Full() = false after filling the queue to capacity")
	}
}

func TestQueueWraparoundProducerSpansBothHalves(t *testing.T) {
	q := NewQueue(4)
	var b Batch
	for i := 0; i < 3; i++ {
		q.Push(b)
	}
	q.Consume(3) // readPos=3, writePos=3
	// AcquireProducer now starts at begin=3%4=3 with free=4, wraps past the end.
	buf := q.AcquireProducer()
	if buf.Total() != 4 {
		t.Fatalf("AcquireProducer().Total() = %d, want 4", buf.Total())
	}
	if buf.A.Len() != 1 || buf.B.Len() != 3 {
		t.Errorf("A.Len()=%d B.Len()=%d, want A=1 (tail) B=3 (wrapped head)", buf.A.Len(), buf.B.Len())
	}
}

func TestQueueResetClearsPositions(t *testing.T) {
	q := NewQueue(4)
	var b Batch
	q.Push(b)
	q.Reset()
	if q.Size() != 0 {
		t.Errorf("Size() after Reset() = %d, want 0", q.Size())
	}
}

func TestQueueDefaultCapacityUsedForNonPositiveRequest(t *testing.T) {
	q := NewQueue(0)
	if q.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want DefaultCapacity", q.Capacity())
	}
}
