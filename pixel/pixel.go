// Package pixel defines the video output unit (a 16-bit packed RGB pixel
// with a 4-bit metadata nibble, batched eight at a time) and the
// lock-free single-producer/single-consumer queue that carries batches
// from the clocked core thread to the renderer thread.
package pixel

// BatchType classifies a Batch's pixel content, stored in Pixel 0's
// metadata nibble.
type BatchType uint8

const (
	Nothing BatchType = iota
	Bitmap
	Teletext
)

// Flag bits classify sync/display state, stored in Pixel 1's metadata
// nibble.
type Flag uint8

const (
	FlagNone      Flag = 0
	FlagHSync     Flag = 0x01
	FlagVSync     Flag = 0x02
	FlagDisplay   Flag = 0x04
	FlagInterlace Flag = 0x08
)

// Data is a single output pixel: 4 bits each of red, green, blue, plus a
// 4-bit metadata nibble whose meaning depends on position within a
// Batch (see Batch.SetType / Batch.SetFlags).
type Data struct {
	R, G, B, X uint8
}

// NewData builds a Data pixel from 4-bit RGB components, masking each to
// its valid range.
func NewData(r, g, b uint8) Data {
	return Data{R: r & 0x0F, G: g & 0x0F, B: b & 0x0F}
}

// XOR inverts this pixel's RGB bits against mask (used for cursor
// overlay, which XORs the displayed colour with white).
func (d Data) XOR(mask Data) Data {
	return Data{R: d.R ^ mask.R, G: d.G ^ mask.G, B: d.B ^ mask.B, X: d.X}
}

// Physical BBC Micro colours (8 entries, addressed by the Video ULA's
// 3-bit physical colour).
var (
	Black   = NewData(0, 0, 0)
	Red     = NewData(15, 0, 0)
	Green   = NewData(0, 15, 0)
	Yellow  = NewData(15, 15, 0)
	Blue    = NewData(0, 0, 15)
	Magenta = NewData(15, 0, 15)
	Cyan    = NewData(0, 15, 15)
	White   = NewData(15, 15, 15)

	Palette = [8]Data{Black, Red, Green, Yellow, Blue, Magenta, Cyan, White}
)

// cursorXOR is the pixel value XORed in when the cursor overlay fires:
// full-intensity white across R, G and B.
var cursorXOR = Data{R: 0x0F, G: 0x0F, B: 0x0F}

// Batch holds eight pixels: the unit of video output produced once per
// 2 MHz cycle (0.5us of display time).
type Batch struct {
	Pixels [8]Data
}

// SetType stashes a BatchType in Pixels[0]'s metadata nibble.
func (b *Batch) SetType(t BatchType) {
	b.Pixels[0].X = uint8(t)
}

// Type recovers the BatchType stashed by SetType.
func (b *Batch) Type() BatchType {
	return BatchType(b.Pixels[0].X)
}

// SetFlags stashes sync/display Flag bits in Pixels[1]'s metadata nibble.
func (b *Batch) SetFlags(f Flag) {
	b.Pixels[1].X = uint8(f) & 0x0F
}

// Flags recovers the Flag bits stashed by SetFlags.
func (b *Batch) Flags() Flag {
	return Flag(b.Pixels[1].X)
}

func (b *Batch) HSync() bool   { return b.Flags()&FlagHSync != 0 }
func (b *Batch) VSync() bool   { return b.Flags()&FlagVSync != 0 }
func (b *Batch) Display() bool { return b.Flags()&FlagDisplay != 0 }

// Fill sets every pixel in the batch to color, preserving nothing of any
// prior type/flag metadata (callers call SetType/SetFlags after Fill).
func (b *Batch) Fill(color Data) {
	for i := range b.Pixels {
		b.Pixels[i] = color
	}
}

// Clear zeroes the batch (black, Nothing type, no flags).
func (b *Batch) Clear() {
	*b = Batch{}
}

// XORCursor inverts all eight pixels against full-intensity white, the
// cursor overlay the Video ULA applies when the CRTC's cursor output is
// active for this cycle.
func (b *Batch) XORCursor() {
	for i := range b.Pixels {
		b.Pixels[i] = b.Pixels[i].XOR(cursorXOR)
	}
}
