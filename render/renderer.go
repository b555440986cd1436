package render

import (
	"github.com/jmchacon/beeb/pixel"
)

// Renderer drains a pixel.Queue on its own goroutine and paints each
// batch's eight pixels into a FrameBuffer, tracking raster position from
// the HSYNC/VSYNC flags carried in the stream rather than from any
// CRTC state of its own. It is the one intended consumer of a machine's
// video queue; nothing else may call Queue's Consumer methods
// concurrently with it.
type Renderer struct {
	queue *pixel.Queue
	fb    *FrameBuffer

	x, y    int
	width   int
	inHSync bool
	inVSync bool
}

// NewRenderer returns a Renderer draining queue into a freshly allocated
// FrameBuffer of the package's fixed Width/Height.
func NewRenderer(queue *pixel.Queue) *Renderer {
	return &Renderer{
		queue: queue,
		fb:    NewFrameBuffer(Width, Height),
		width: Width,
	}
}

// FrameBuffer returns the buffer this renderer paints into.
func (r *Renderer) FrameBuffer() *FrameBuffer { return r.fb }

// Drain consumes every batch currently available in the queue, painting
// each into the frame buffer and swapping it at VSYNC. It returns the
// number of batches consumed, so a caller can back off (sleep) when it
// returns 0 rather than spinning.
func (r *Renderer) Drain() int {
	buf := r.queue.AcquireConsumer()
	n := buf.Total()
	if n == 0 {
		return 0
	}
	for i := 0; i < buf.A.Len(); i++ {
		r.processUnit(buf.A.At(i))
	}
	for i := 0; i < buf.B.Len(); i++ {
		r.processUnit(buf.B.At(i))
	}
	r.queue.Consume(n)
	return n
}

// DrainOne consumes at most one pending batch, for callers stepping the
// machine cycle-by-cycle (the debugger's single-step endpoints) where
// only a handful of batches are ever pending and the span API's bulk
// throughput doesn't matter. It returns false once the queue is empty.
func (r *Renderer) DrainOne() bool {
	b, ok := r.queue.Pop()
	if !ok {
		return false
	}
	r.processUnit(&b)
	return true
}

// processUnit paints one batch's eight pixels at the current raster
// position and advances it, detecting HSYNC/VSYNC on their rising edge
// exactly as the batch stream's producer asserts them: a new line
// begins on HSYNC's rising edge, a new frame (with a buffer swap) on
// VSYNC's rising edge. A batch with its display flag clear (blanking,
// including the sync pulses themselves) is skipped entirely and leaves
// the raster x position where it was.
func (r *Renderer) processUnit(b *pixel.Batch) {
	vsync := b.VSync()
	if vsync && !r.inVSync {
		r.fb.Swap()
		r.y = 0
	}
	r.inVSync = vsync

	hsync := b.HSync()
	if hsync && !r.inHSync {
		r.x = 0
		r.y++
		if r.y >= Height {
			r.y = 0
		}
	}
	r.inHSync = hsync

	// Blanking batches (hsync/vsync pulses, and the surrounding porch)
	// carry no real pixel content and don't advance the raster
	// position at all; only a displayed batch does.
	if !b.Display() {
		return
	}

	if r.x+len(b.Pixels) <= r.width && r.y < Height {
		for i, px := range b.Pixels {
			r.fb.WritePixel(r.x+i, r.y, r.width, pixelToBGRA32(px))
		}
	}
	r.x += len(b.Pixels)
}

// pixelToBGRA32 packs a 4-bit-per-channel pixel into a BGRA32 word by
// replicating each nibble into the low and high halves of its byte
// (0xF -> 0xFF, 0x0 -> 0x00), with alpha fixed at full intensity.
func pixelToBGRA32(d pixel.Data) uint32 {
	r := d.R<<4 | d.R
	g := d.G<<4 | d.G
	b := d.B<<4 | d.B
	return uint32(b) | uint32(g)<<8 | uint32(r)<<16 | 0xFF<<24
}
