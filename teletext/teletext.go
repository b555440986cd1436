// Package teletext implements the SAA5050 teletext character generator
// used by Mode 7: a 40x25 display driven directly from screen memory
// bytes (character and control codes), with in-line colour, graphics,
// conceal, flash, double-height and hold-graphics control codes, and a
// gamma-corrected 6-to-8 pixel horizontal expansion.
package teletext

import (
	"math"

	"github.com/jmchacon/beeb/pixel"
)

// Charset selects which of the three SAA5050 character sets a code point
// is drawn from.
type Charset uint8

const (
	Alpha Charset = iota
	ContiguousGraphics
	SeparatedGraphics
)

const gammaCorrection = 2.2

// blendTable[a][b] is the gamma-corrected blend of 1/3 colour component
// a with 2/3 colour component b, used to interpolate the SAA5050's 6
// font pixels up to the 8-pixel output grid.
var blendTable [16][16]uint8

func init() {
	for a := 0; a < 16; a++ {
		for b := 0; b < 16; b++ {
			al := math.Pow(float64(a)/15.0, gammaCorrection)
			bl := math.Pow(float64(b)/15.0, gammaCorrection)
			blended := math.Pow((al+bl*2)/3.0, 1.0/gammaCorrection)
			blendTable[a][b] = uint8(blended*15.0 + 0.5)
		}
	}
	initExpandedFont()
}

func blend(a, b pixel.Data) pixel.Data {
	return pixel.Data{
		R: blendTable[a.R][b.R],
		G: blendTable[a.G][b.G],
		B: blendTable[a.B][b.B],
	}
}

// output is one delay-buffer slot: half a character's worth (6 bits) of
// expanded font data plus the colours and cursor state in effect when it
// was written. The chip holds 8 slots, giving the characteristic 2us
// LOSE-to-display pipeline delay real teletext decoders exhibit.
type output struct {
	fg, bg  uint8
	data    uint8
	cursor  bool
}

// Chip is an SAA5050 teletext character generator.
type Chip struct {
	buf        [8]output
	writeIndex uint8
	readIndex  uint8

	raster uint8
	frame  uint8

	fg, bg uint8

	charset          Charset
	graphicsCharset  Charset
	conceal          bool
	hold             bool
	textVisible      bool
	frameFlashVisible bool
	anyDoubleHeight  bool

	rasterShift      uint8
	rasterOffset     uint8
	lastGraphicsData uint16
}

// New returns a freshly reset SAA5050.
func New() *Chip {
	c := &Chip{}
	c.Reset()
	return c
}

// Reset restores power-on state.
func (c *Chip) Reset() {
	c.raster = 0
	c.frame = 0
	c.fg = 7
	c.bg = 0
	c.charset = Alpha
	c.graphicsCharset = ContiguousGraphics
	c.conceal = false
	c.hold = false
	c.textVisible = true
	c.frameFlashVisible = true
	c.anyDoubleHeight = false
	c.rasterShift = 0
	c.rasterOffset = 0
	c.lastGraphicsData = 0
	c.writeIndex = 4
	c.readIndex = 0
	c.buf = [8]output{}
}

// SetRaster is called every tick with the CRTC's raster (scanline within
// the current character row).
func (c *Chip) SetRaster(raster uint8) {
	c.raster = raster
}

// Byte feeds one screen-memory byte (character or control code) into the
// generator. dispen reflects the CRTC's display-enable output; cursor
// reflects its cursor output. Two delay-buffer slots (left/right halves
// of the 12-bit expanded row) are written per call.
func (c *Chip) Byte(value uint8, dispen bool, cursor bool) {
	value &= 0x7F

	var data uint16
	if value < 32 {
		if c.conceal || !c.hold {
			data = 0
		} else {
			data = c.lastGraphicsData
		}
		tmp := uint8(data)
		c.processControlCode(value, &tmp)
		data = uint16(tmp)
		if !c.hold {
			c.lastGraphicsData = 0
		}
	} else {
		glyphRaster := int(c.raster+c.rasterOffset) >> c.rasterShift
		if glyphRaster < 20 && c.textVisible && !c.conceal {
			data = expandedFont[1][int(c.charset)][value-32][glyphRaster]
		} else {
			data = 0
		}
		if value&0x20 != 0 && c.charset != Alpha && !c.conceal {
			c.lastGraphicsData = data
		}
	}

	if !dispen {
		data = 0
	}

	out := &c.buf[c.writeIndex&7]
	out.fg, out.bg, out.cursor = c.fg, c.bg, cursor
	out.data = uint8(data & 0x3F)
	c.writeIndex = (c.writeIndex + 1) & 7

	out = &c.buf[c.writeIndex&7]
	out.fg, out.bg, out.cursor = c.fg, c.bg, cursor
	out.data = uint8((data >> 6) & 0x3F)
	c.writeIndex = (c.writeIndex + 1) & 7
}

// EmitPixels drains one delay-buffer slot (half a character, 6 font
// bits) into batch as 8 gamma-blended output pixels, following the
// reference pattern p0, blend(p0,p1), blend(p2,p1), p2, p3,
// blend(p3,p4), blend(p5,p4), p5.
func (c *Chip) EmitPixels(batch *pixel.Batch, palette [8]pixel.Data) {
	out := &c.buf[c.readIndex]

	bgColor := palette[out.bg&0x07]
	fgColor := palette[out.fg&0x07]

	var p [6]pixel.Data
	for i := 0; i < 6; i++ {
		if out.data>>uint(i)&1 != 0 {
			p[i] = fgColor
		} else {
			p[i] = bgColor
		}
	}

	batch.Pixels[0] = p[0]
	batch.Pixels[1] = blend(p[0], p[1])
	batch.Pixels[2] = blend(p[2], p[1])
	batch.Pixels[3] = p[2]
	batch.Pixels[4] = p[3]
	batch.Pixels[5] = blend(p[3], p[4])
	batch.Pixels[6] = blend(p[5], p[4])
	batch.Pixels[7] = p[5]

	if out.cursor {
		batch.XORCursor()
	}
	batch.SetType(pixel.Teletext)
	c.readIndex = (c.readIndex + 1) & 7
}

// StartOfLine resets the per-line control-code state that real SAA5050
// hardware re-establishes at the start of every scanline (colours
// revert to white-on-black, hold/conceal/double-height clear).
func (c *Chip) StartOfLine() {
	c.conceal = false
	c.fg = 7
	c.bg = 0
	c.graphicsCharset = ContiguousGraphics
	c.charset = Alpha
	c.lastGraphicsData = 0
	c.hold = false
	c.textVisible = true
	c.rasterShift = 0

	c.readIndex = 0
	c.writeIndex = 4
	c.buf = [8]output{}
}

// EndOfLine is called at the end of every scanline.
func (c *Chip) EndOfLine() {
	c.bg = 0
}

// VSync is called at vertical sync: it advances the flash/blink frame
// counter (0-63; flashing text is hidden for frames 0-15 and shown for
// frames 16-63) and clears per-field double-height tracking.
func (c *Chip) VSync() {
	c.raster = 0
	c.frame++
	if c.frame >= 64 {
		c.frame = 0
	}
	c.frameFlashVisible = c.frame >= 16
	c.anyDoubleHeight = false
	c.rasterOffset = 0
}

func (c *Chip) Foreground() uint8      { return c.fg }
func (c *Chip) Background() uint8      { return c.bg }
func (c *Chip) Raster() uint8          { return c.raster }
func (c *Chip) CharsetInUse() Charset  { return c.charset }
func (c *Chip) FlashEnabled() bool     { return !c.textVisible }

func (c *Chip) processControlCode(code uint8, data *uint8) {
	switch code {
	case 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		c.fg = code
		c.charset = Alpha
		c.conceal = false
		c.lastGraphicsData = 0
	case 0x08:
		c.textVisible = c.frameFlashVisible
	case 0x09:
		c.textVisible = true
	case 0x0C:
		if c.rasterShift != 0 {
			*data = 0
			c.lastGraphicsData = 0
		}
		c.rasterShift = 0
	case 0x0D:
		if c.rasterShift != 1 {
			*data = 0
			c.lastGraphicsData = 0
		}
		c.anyDoubleHeight = true
		c.rasterShift = 1
	case 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17:
		c.fg = code & 7
		c.conceal = false
		c.charset = c.graphicsCharset
	case 0x18:
		c.conceal = true
	case 0x19:
		c.graphicsCharset = ContiguousGraphics
		if c.charset == SeparatedGraphics {
			c.charset = c.graphicsCharset
		}
	case 0x1A:
		c.graphicsCharset = SeparatedGraphics
		if c.charset == ContiguousGraphics {
			c.charset = c.graphicsCharset
		}
	case 0x1C:
		c.bg = 0
	case 0x1D:
		c.bg = c.fg
	case 0x1E:
		c.hold = true
		*data = uint8(c.lastGraphicsData)
	case 0x1F:
		c.hold = false
	}
}
