package teletext

import (
	"testing"

	"github.com/jmchacon/beeb/pixel"
)

func drain(c *Chip, n int) {
	var b pixel.Batch
	for i := 0; i < n; i++ {
		c.EmitPixels(&b, pixel.Palette)
	}
}

func TestResetDefaults(t *testing.T) {
	c := New()
	if c.Foreground() != 7 || c.Background() != 0 {
		t.Errorf("Foreground()=%d Background()=%d after Reset, want 7 and 0", c.Foreground(), c.Background())
	}
	if c.CharsetInUse() != Alpha {
		t.Errorf("CharsetInUse() = %v, want Alpha", c.CharsetInUse())
	}
	if c.FlashEnabled() {
		t.Error("FlashEnabled() should be false immediately after Reset")
	}
}

func TestForegroundControlCode(t *testing.T) {
	c := New()
	c.Byte(0x02, true, false) // set foreground to 2 (green)
	if c.Foreground() != 2 {
		t.Errorf("Foreground() = %d, want 2", c.Foreground())
	}
}

func TestDelayBufferPipelineDelay(t *testing.T) {
	c := New()
	c.Byte(0x01, true, false) // fg = 1 (red), writes buf[4],buf[5]
	c.Byte(0x1D, true, false) // bg = fg (1), writes buf[6],buf[7]

	var b pixel.Batch
	for i := 0; i < 6; i++ {
		c.EmitPixels(&b, pixel.Palette) // drains buf[0..5], all black (data=0, bg still 0 or just-set)
	}
	c.EmitPixels(&b, pixel.Palette) // reads buf[6]: fg=1 bg=1, data=0 -> bgColor used throughout = Red
	for _, p := range b.Pixels {
		if p != pixel.Red {
			t.Errorf("pixel = %+v, want Red once the bg=fg control code reaches the delay buffer", p)
			break
		}
	}
}

func TestCursorOverlayAppliedOnReadout(t *testing.T) {
	c := New()
	c.Byte(0x00, true, true) // unrecognized control code, data stays 0, cursor=true
	drain(c, 4)               // discard the four pre-fill zero slots
	var b pixel.Batch
	c.EmitPixels(&b, pixel.Palette) // reads buf[4]: bg=0 (black) XORed with white cursor overlay
	for _, p := range b.Pixels {
		if p != pixel.White {
			t.Errorf("pixel = %+v, want White (black background XORed by the cursor overlay)", p)
			break
		}
	}
}

func TestBatchTypeIsAlwaysTeletext(t *testing.T) {
	c := New()
	c.Byte(0x00, true, false)
	var b pixel.Batch
	c.EmitPixels(&b, pixel.Palette)
	if b.Type() != pixel.Teletext {
		t.Errorf("Type() = %v, want Teletext", b.Type())
	}
}

func TestStartOfLineRestoresDefaults(t *testing.T) {
	c := New()
	c.Byte(0x02, true, false) // fg=2
	c.Byte(0x18, true, false) // conceal=true
	c.StartOfLine()
	if c.Foreground() != 7 || c.Background() != 0 {
		t.Errorf("Foreground()=%d Background()=%d after StartOfLine, want 7 and 0", c.Foreground(), c.Background())
	}
	if c.CharsetInUse() != Alpha {
		t.Errorf("CharsetInUse() = %v after StartOfLine, want Alpha", c.CharsetInUse())
	}
}

func TestFlashTextHiddenDuringFirstSixteenFrames(t *testing.T) {
	c := New()
	c.VSync() // frame=1, frameFlashVisible = (1 >= 16) = false
	c.Byte(0x08, true, false) // textVisible = frameFlashVisible
	if !c.FlashEnabled() {
		t.Error("FlashEnabled() should be true once control code 0x08 sees frameFlashVisible=false")
	}
}

func TestSetRasterAndRaster(t *testing.T) {
	c := New()
	c.SetRaster(5)
	if c.Raster() != 5 {
		t.Errorf("Raster() = %d, want 5", c.Raster())
	}
}

func TestEndOfLineResetsBackground(t *testing.T) {
	c := New()
	c.Byte(0x02, true, false)
	c.Byte(0x1D, true, false) // bg = fg
	if c.Background() == 0 {
		t.Fatal("expected Background() to be non-zero before EndOfLine")
	}
	c.EndOfLine()
	if c.Background() != 0 {
		t.Errorf("Background() after EndOfLine() = %d, want 0", c.Background())
	}
}
