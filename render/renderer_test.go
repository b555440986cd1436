package render

import (
	"testing"

	"github.com/jmchacon/beeb/pixel"
)

func makeBatch(flags pixel.Flag, fill pixel.Data) pixel.Batch {
	var b pixel.Batch
	b.Fill(fill)
	b.SetFlags(flags)
	return b
}

func TestRendererTracksRasterPositionFromSyncFlags(t *testing.T) {
	q := pixel.NewQueue(64)
	r := NewRenderer(q)

	// One line of display, each batch 8 pixels wide.
	white := pixel.NewData(0xF, 0xF, 0xF)
	for i := 0; i < 4; i++ {
		q.Push(makeBatch(pixel.FlagDisplay, white))
	}
	// HSync batch ends the line; blanking batches don't advance x.
	q.Push(makeBatch(pixel.FlagHSync, pixel.Black))

	if n := r.Drain(); n != 5 {
		t.Fatalf("Drain() = %d, want 5", n)
	}

	if r.y != 1 {
		t.Errorf("y after one HSync = %d, want 1", r.y)
	}
	if r.x != 0 {
		t.Errorf("x after HSync = %d, want 0 (reset, and the blanking batch itself doesn't advance it)", r.x)
	}
}

func TestRendererSwapsFrameBufferOnVSyncRisingEdge(t *testing.T) {
	q := pixel.NewQueue(64)
	r := NewRenderer(q)

	q.Push(makeBatch(pixel.FlagDisplay, pixel.White))
	q.Push(makeBatch(pixel.FlagVSync, pixel.Black))
	q.Push(makeBatch(pixel.FlagVSync, pixel.Black)) // still in vsync: no second swap

	r.Drain()

	if v := r.fb.Version(); v != 1 {
		t.Fatalf("FrameBuffer Version after one VSync rising edge = %d, want 1", v)
	}
}

func TestRendererPaintsOnlyDisplayedPixels(t *testing.T) {
	q := pixel.NewQueue(64)
	r := NewRenderer(q)

	q.Push(makeBatch(pixel.FlagNone, pixel.White)) // blanking: not painted
	r.Drain()
	r.fb.Swap()

	frame := r.fb.ReadFrame()
	if frame[0] != 0 {
		t.Errorf("pixel painted during blanking: got %#x, want 0", frame[0])
	}
}

func TestDrainOneConsumesExactlyOneBatch(t *testing.T) {
	q := pixel.NewQueue(64)
	r := NewRenderer(q)

	q.Push(makeBatch(pixel.FlagDisplay, pixel.White))
	q.Push(makeBatch(pixel.FlagDisplay, pixel.White))

	if !r.DrainOne() {
		t.Fatal("DrainOne() = false, want true with two batches pending")
	}
	if q.Size() != 1 {
		t.Errorf("Size() after one DrainOne() = %d, want 1", q.Size())
	}
	if !r.DrainOne() {
		t.Fatal("DrainOne() = false, want true with one batch still pending")
	}
	if r.DrainOne() {
		t.Error("DrainOne() = true on an empty queue, want false")
	}
}

func TestPixelToBGRA32ReplicatesNibbles(t *testing.T) {
	d := pixel.NewData(0xF, 0x0, 0xA)
	got := pixelToBGRA32(d)
	want := uint32(0xFF)<<24 | uint32(0xFF)<<16 | uint32(0x00)<<8 | uint32(0xAA)
	if got != want {
		t.Errorf("pixelToBGRA32(%+v) = %#08x, want %#08x", d, got, want)
	}
}
