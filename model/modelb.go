// Package model assembles the clocked devices (memory, VIAs, video
// chain, keyboard) into complete machine hardware profiles: the BBC
// Model B and the Model B+'s shadow-RAM/ANDY-RAM extension.
package model

import (
	"github.com/jmchacon/beeb/bank"
	"github.com/jmchacon/beeb/clock"
	"github.com/jmchacon/beeb/crtc"
	"github.com/jmchacon/beeb/irq"
	"github.com/jmchacon/beeb/keyboard"
	"github.com/jmchacon/beeb/memory"
	"github.com/jmchacon/beeb/pixel"
	"github.com/jmchacon/beeb/teletext"
	"github.com/jmchacon/beeb/via"
	"github.com/jmchacon/beeb/videoula"
)

// Sideways bank slots populated by the Model B profile.
const (
	BasicSlot    = 0
	DFSSlot      = 1
	SidewaysRAMSlot = 4
)

// romselRegister is the write-only ROMSEL register at 0xFE30-0xFE3F: it
// selects the active sideways bank and always reads as open-bus 0xFF.
type romselRegister struct {
	sideways *bank.Sideways
	databus  uint8
}

func (r *romselRegister) Read(addr uint16) uint8 {
	r.databus = 0xFF
	return 0xFF
}
func (r *romselRegister) Peek(addr uint16) uint8 { return 0xFF }
func (r *romselRegister) Write(addr uint16, val uint8) {
	r.databus = val
	r.sideways.Select(val & 0x0F)
}
func (r *romselRegister) PowerOn()         {}
func (r *romselRegister) Parent() memory.Bank { return nil }
func (r *romselRegister) DatabusVal() uint8   { return r.databus }

var (
	_ memory.Bank   = (*romselRegister)(nil)
	_ memory.Peeker = (*romselRegister)(nil)
)

// B is a BBC Model B: 32 KiB main RAM, 16 KiB MOS ROM, a 16-slot
// sideways ROM/RAM bank with BASIC and DFS pre-populated, two 6522 VIAs
// (system and user), the CRTC/Video ULA/SAA5050 video chain, and the
// keyboard matrix wired to the system VIA.
type B struct {
	MainRAM memory.Bank
	MOSROM  *memory.ROM

	BasicROM *memory.ROM
	DFSROM   *memory.ROM
	Sideways *bank.Sideways

	SystemVIA *via.Chip
	UserVIA   *via.Chip

	CRTC     *crtc.Chip
	VideoULA *videoula.Chip
	Teletext *teletext.Chip

	Latch       *keyboard.Latch
	Keyboard    *keyboard.Matrix
	SystemPeriph *keyboard.SystemPeripheral

	romsel *romselRegister

	Map *memory.Map
	IRQ *irq.Aggregator

	Video       *VideoBinding
	Scheduler   *clock.Scheduler
	VideoOutput *pixel.Queue

	databus uint8
}

// NewB builds a Model B with all devices wired per the reference memory
// map (I/O regions take priority over the ROM regions they overlap).
func NewB() *B {
	b := &B{}

	mainRAM, err := memory.New8BitRAMBank(32*1024, nil)
	if err != nil {
		panic(err) // fixed, known-good size; a failure here is a programming error
	}
	b.MainRAM = mainRAM

	mosROM, err := memory.NewROMBank(16*1024, nil)
	if err != nil {
		panic(err)
	}
	b.MOSROM = mosROM

	basicROM, err := memory.NewROMBank(16*1024, nil)
	if err != nil {
		panic(err)
	}
	b.BasicROM = basicROM

	dfsROM, err := memory.NewROMBank(16*1024, nil)
	if err != nil {
		panic(err)
	}
	b.DFSROM = dfsROM

	sidewaysRAM, err := memory.New8BitRAMBank(16*1024, nil)
	if err != nil {
		panic(err)
	}

	b.Sideways = bank.New(nil)
	b.Sideways.SetSlot(BasicSlot, b.BasicROM)
	b.Sideways.SetSlot(DFSSlot, b.DFSROM)
	b.Sideways.SetSlot(SidewaysRAMSlot, sidewaysRAM)

	b.Latch = &keyboard.Latch{}
	b.Keyboard = &keyboard.Matrix{}
	b.SystemPeriph = keyboard.NewSystemPeripheral(b.Keyboard, b.Latch)

	systemVIA, err := via.Init(&via.ChipDef{Peripheral: b.SystemPeriph})
	if err != nil {
		panic(err)
	}
	b.SystemVIA = systemVIA

	userVIA, err := via.Init(&via.ChipDef{})
	if err != nil {
		panic(err)
	}
	b.UserVIA = userVIA

	b.CRTC = crtc.New()
	b.VideoULA = videoula.New()
	b.Teletext = teletext.New()

	b.romsel = &romselRegister{sideways: b.Sideways}

	b.Map = memory.NewMap(
		memory.Region{Base: 0xFE00, End: 0xFE07, Mirror: 0x07, Device: b.CRTC},
		memory.Region{Base: 0xFE20, End: 0xFE2F, Mirror: 0x01, Device: b.VideoULA},
		memory.Region{Base: 0xFE40, End: 0xFE5F, Mirror: 0x0F, Device: b.SystemVIA},
		memory.Region{Base: 0xFE60, End: 0xFE7F, Mirror: 0x0F, Device: b.UserVIA},
		memory.Region{Base: 0xFE30, End: 0xFE3F, Mirror: 0x0F, Device: b.romsel},
		memory.Region{Base: 0x0000, End: 0x7FFF, Device: b.MainRAM},
		memory.Region{Base: 0x8000, End: 0xBFFF, Device: b.Sideways},
		memory.Region{Base: 0xC000, End: 0xFFFF, Device: b.MOSROM},
	)

	b.IRQ = irq.NewAggregator(
		irq.Binding{Device: b.SystemVIA, Bit: 0},
		irq.Binding{Device: b.UserVIA, Bit: 1},
	)

	b.Video = NewVideoBinding(b, b.CRTC, b.VideoULA, b.Teletext, b.SystemPeriph.SetVSync, func() *pixel.Queue { return b.VideoOutput })
	b.Scheduler = clock.New(b.SystemVIA, b.UserVIA, b.Video)

	return b
}

// PeekVideo implements videoRAM: Model B has no shadow RAM, so the video
// binding always reads straight from main RAM.
func (b *B) PeekVideo(addr uint16) uint8 {
	return memory.PeekBank(b.MainRAM, addr)
}

// ScreenBase implements videoRAM by delegating to the addressable latch.
func (b *B) ScreenBase() uint8 {
	return b.Latch.ScreenBase()
}

var _ videoRAM = (*B)(nil)

// Read implements memory.Bank by delegating to Map.
func (b *B) Read(addr uint16) uint8 {
	v := b.Map.Read(addr)
	b.databus = v
	return v
}

// Write implements memory.Bank by delegating to Map.
func (b *B) Write(addr uint16, val uint8) {
	b.Map.Write(addr, val)
	b.databus = val
}

// Peek is the side-effect-free counterpart used by the debugger; VIA
// regions route through Peek explicitly so reads never clear IFR bits.
func (b *B) Peek(addr uint16) uint8 {
	switch {
	case addr >= 0xFE40 && addr <= 0xFE5F:
		return memory.PeekBank(b.SystemVIA, addr&0x0F)
	case addr >= 0xFE60 && addr <= 0xFE7F:
		return memory.PeekBank(b.UserVIA, addr&0x0F)
	default:
		return b.Map.Peek(addr)
	}
}

// PowerOn implements memory.Bank by resetting every device.
func (b *B) PowerOn() { b.Reset() }

// Parent implements memory.Bank; a machine's hardware profile is always
// the outermost controller.
func (b *B) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank by returning the last value this
// profile's own Read/Write saw cross the bus.
func (b *B) DatabusVal() uint8 {
	return b.databus
}

// Reset restores every device to its power-on/reset state.
func (b *B) Reset() {
	if clearer, ok := b.MainRAM.(interface{ Clear() }); ok {
		clearer.Clear()
	}
	b.SystemVIA.Reset()
	b.UserVIA.Reset()
	b.CRTC.Reset()
	b.VideoULA.Reset()
	b.Teletext.Reset()
	b.Latch.Reset()
	b.Sideways.Select(0)
}

// EnableVideoOutput allocates the pixel output queue (capacity 0 uses
// pixel.DefaultCapacity).
func (b *B) EnableVideoOutput(capacity int) {
	b.VideoOutput = pixel.NewQueue(capacity)
}

// DisableVideoOutput frees the output queue.
func (b *B) DisableVideoOutput() {
	b.VideoOutput = nil
}

// VideoOutputEnabled reports whether a consumer has been attached.
func (b *B) VideoOutputEnabled() bool {
	return b.VideoOutput != nil
}

// PollIRQ returns the aggregated IRQ mask (bit 0 = system VIA, bit 1 =
// user VIA), to be called once per CPU cycle after ticking both VIAs.
func (b *B) PollIRQ() uint8 {
	return b.IRQ.Poll()
}

// Tick advances every clocked device one master cycle and returns the
// resulting aggregated IRQ mask. This drives the peripherals alone
// (SystemVIA/UserVIA/Video); package machine builds its own scheduler
// from Bindings that additionally includes the CPU core.
func (b *B) Tick(cycle uint64) uint8 {
	b.Scheduler.Tick(cycle)
	return b.PollIRQ()
}

// Bindings returns this profile's clocked peripherals in dispatch order,
// for a machine.Machine to prepend its CPU binding to.
func (b *B) Bindings() []clock.Binding {
	return []clock.Binding{b.SystemVIA, b.UserVIA, b.Video}
}

// IRQSender returns the aggregated IRQ source a CPU core polls.
func (b *B) IRQSender() irq.Sender { return b.IRQ }

// VideoQueue returns the currently attached pixel output queue, or nil
// if video output isn't enabled.
func (b *B) VideoQueue() *pixel.Queue { return b.VideoOutput }

// KeyMatrix returns the key matrix the network keyboard endpoints drive.
func (b *B) KeyMatrix() *keyboard.Matrix { return b.Keyboard }

// Regions implements Profile's debugger region discovery: main RAM, MOS
// ROM, and each of the 16 sideways slots.
func (b *B) Regions() []RegionDescriptor {
	regions := []RegionDescriptor{
		{Name: "main-ram", Base: 0x0000, Size: 32 * 1024, Readable: true, Writable: true, Populated: true, Active: true},
		{Name: "mos-rom", Base: 0xC000, Size: 16 * 1024, Readable: true, Populated: true, Active: true},
	}
	return append(regions, sidewaysRegions(b.Sideways, int(b.Sideways.Selected()))...)
}

// LoadMOS, LoadBasic and LoadDFS populate the fixed ROM images; see
// package romload for file discovery and padding/truncation policy.
func (b *B) LoadMOS(data []uint8) (truncated bool)   { return b.MOSROM.Load(data) }
func (b *B) LoadBasic(data []uint8) (truncated bool) { return b.BasicROM.Load(data) }
func (b *B) LoadDFS(data []uint8) (truncated bool)   { return b.DFSROM.Load(data) }

var _ memory.Bank = (*B)(nil)
