package render

import "testing"

func TestFrameBufferSwapPublishesFrontAsBack(t *testing.T) {
	fb := NewFrameBuffer(4, 2)
	fb.WritePixel(0, 0, 4, 0x11223344)
	fb.WritePixel(3, 1, 4, 0xAABBCCDD)

	if v := fb.Version(); v != 0 {
		t.Fatalf("Version before any Swap = %d, want 0", v)
	}

	fb.Swap()

	if v := fb.Version(); v != 1 {
		t.Fatalf("Version after one Swap = %d, want 1", v)
	}

	frame := fb.ReadFrame()
	if got := frame[0]; got != 0x11223344 {
		t.Errorf("frame[0] = %#x, want %#x", got, 0x11223344)
	}
	if got := frame[3+1*4]; got != 0xAABBCCDD {
		t.Errorf("frame[7] = %#x, want %#x", got, 0xAABBCCDD)
	}
}

func TestFrameBufferWritesAfterSwapDontAffectLastFrame(t *testing.T) {
	fb := NewFrameBuffer(2, 1)
	fb.WritePixel(0, 0, 2, 0xFF)
	fb.Swap()

	// The old front buffer is now the back buffer holding the
	// published frame; new writes go to the new front buffer (what
	// was previously the back buffer, still zeroed).
	fb.WritePixel(0, 0, 2, 0x42)

	frame := fb.ReadFrame()
	if frame[0] != 0xFF {
		t.Fatalf("ReadFrame()[0] = %#x after a write following Swap, want unchanged 0xFF", frame[0])
	}
}

func TestFrameBufferWritePixelIgnoresOutOfBounds(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	// Should not panic.
	fb.WritePixel(-1, 0, 2, 0x1)
	fb.WritePixel(100, 100, 2, 0x1)
}

func TestFrameBufferReadFrameIsACopy(t *testing.T) {
	fb := NewFrameBuffer(1, 1)
	fb.WritePixel(0, 0, 1, 0x1)
	fb.Swap()

	frame := fb.ReadFrame()
	frame[0] = 0x99

	again := fb.ReadFrame()
	if again[0] != 0x1 {
		t.Fatalf("mutating a returned frame affected the buffer: got %#x, want 0x1", again[0])
	}
}
