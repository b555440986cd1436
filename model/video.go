package model

import (
	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/crtc"
	"github.com/jmchacon/beeb/pixel"
	"github.com/jmchacon/beeb/teletext"
	"github.com/jmchacon/beeb/videoula"
)

// videoRAM is the subset of hardware a VideoBinding needs to translate
// and fetch screen memory.
type videoRAM interface {
	PeekVideo(addr uint16) uint8
	ScreenBase() uint8
}

// VideoBinding wires the CRTC, Video ULA and SAA5050 together as one
// clock.Binding: it always ticks the CRTC (needed for VSYNC timing to
// the system VIA even with no display attached) and only renders pixel
// batches into the output queue when one is attached.
type VideoBinding struct {
	hw videoRAM

	crtc     *crtc.Chip
	videoULA *videoula.Chip
	teletext *teletext.Chip

	vsyncSink   func(bool)
	outputQueue func() *pixel.Queue

	lastDisplay        bool
	teletextColumn     uint8
	teletextVSyncLatch bool
}

// NewVideoBinding wires a VideoBinding to the concrete chips owned by a
// hardware profile (model.B or model.BPlus). vsyncSink is typically the
// system VIA peripheral's SetVSync method; outputQueue is called once
// per tick so the binding always sees the profile's current queue even
// if video output is enabled/disabled later.
func NewVideoBinding(hw videoRAM, c *crtc.Chip, ula *videoula.Chip, tt *teletext.Chip, vsyncSink func(bool), outputQueue func() *pixel.Queue) *VideoBinding {
	return &VideoBinding{
		hw:          hw,
		crtc:        c,
		videoULA:    ula,
		teletext:    tt,
		vsyncSink:   vsyncSink,
		outputQueue: outputQueue,
	}
}

var _ clock.Binding = (*VideoBinding)(nil)

// Edges implements clock.Binding.
func (v *VideoBinding) Edges() clock.Edge { return clock.Falling }

// ClockRate implements clock.Binding with the CRTC's dynamic rate.
func (v *VideoBinding) ClockRate() clock.Rate { return v.crtc.ClockRate() }

// TickRising implements clock.Binding; video work only happens falling.
func (v *VideoBinding) TickRising() {}

// TickFalling advances the CRTC one character time and renders the
// resulting pixels, following the reference renderer's teletext/bitmap
// split and screen-address translation.
func (v *VideoBinding) TickFalling() {
	v.crtc.SetFastClock(v.videoULA.FastClock())
	out := v.crtc.Tick()

	if v.vsyncSink != nil {
		v.vsyncSink(out.VSync)
	}

	q := v.outputQueue()
	if q == nil {
		return
	}

	screenAddr := v.translateScreenAddress(out.Address)
	var screenByte uint8
	if out.Display {
		screenByte = v.hw.PeekVideo(screenAddr)
	}

	if v.videoULA.TeletextMode() {
		v.renderTeletext(q, out, screenByte)
		return
	}
	v.renderBitmap(q, out, screenByte)
}

func (v *VideoBinding) renderBitmap(q *pixel.Queue, out crtc.Output, screenByte uint8) {
	var batch pixel.Batch
	v.videoULA.Byte(screenByte, out.Cursor)
	if out.Display {
		v.videoULA.EmitPixels(&batch)
	} else {
		batch.SetType(pixel.Nothing)
		batch.Clear()
	}

	var flags pixel.Flag
	if out.HSync {
		flags |= pixel.FlagHSync
	}
	if out.VSync {
		flags |= pixel.FlagVSync
	}
	if out.Display {
		flags |= pixel.FlagDisplay
	}
	batch.SetFlags(flags)

	q.Push(batch)
}

func (v *VideoBinding) renderTeletext(q *pixel.Queue, out crtc.Output, screenByte uint8) {
	if out.VSync && !v.teletextVSyncWasLow() {
		v.teletext.VSync()
		v.teletextColumn = 0
	}
	v.setTeletextVSyncLatch(out.VSync)

	v.teletext.SetRaster(out.Raster)

	if out.Display && v.teletextColumn == 0 {
		v.teletext.StartOfLine()
	}

	v.teletext.Byte(screenByte, out.Display, out.Cursor)

	var flags pixel.Flag
	if out.HSync {
		flags |= pixel.FlagHSync
	}
	if out.VSync {
		flags |= pixel.FlagVSync
	}
	if out.Display {
		flags |= pixel.FlagDisplay
	}

	var batch1 pixel.Batch
	v.teletext.EmitPixels(&batch1, v.palette())
	batch1.SetFlags(flags)
	q.Push(batch1)

	var batch2 pixel.Batch
	v.teletext.EmitPixels(&batch2, v.palette())
	batch2.SetFlags(flags)
	q.Push(batch2)

	if out.Display {
		v.teletextColumn++
	}
	if !out.Display && v.lastDisplay && v.teletextColumn > 0 {
		v.teletext.EndOfLine()
		v.teletextColumn = 0
	}
	v.lastDisplay = out.Display
}

// translateScreenAddress maps a CRTC refresh address onto BBC screen
// memory, honouring the addressable latch's screen-base bits and Mode
// 7's fixed 1 KiB teletext window.
func (v *VideoBinding) translateScreenAddress(crtcAddr uint16) uint16 {
	if v.videoULA.TeletextMode() {
		return 0x7C00 | (crtcAddr & 0x03FF)
	}
	var base uint16
	switch v.hw.ScreenBase() {
	case 0:
		base = 0x3000
	case 1:
		base = 0x4000
	case 2:
		base = 0x5800
	case 3:
		base = 0x6000
	default:
		base = 0x3000
	}
	return base + (crtcAddr & 0x3FFF)
}

// palette returns the 8 fixed physical teletext colours; unlike the
// bitmap modes, the SAA5050 never goes through the Video ULA's
// logical-to-physical palette remap.
func (v *VideoBinding) palette() [8]pixel.Data {
	return pixel.Palette
}

// vsync-edge latch used only by renderTeletext; kept as plain fields
// rather than a separate type since only VideoBinding touches it.
func (v *VideoBinding) teletextVSyncWasLow() bool    { return !v.teletextVSyncLatch }
func (v *VideoBinding) setTeletextVSyncLatch(b bool) { v.teletextVSyncLatch = b }
