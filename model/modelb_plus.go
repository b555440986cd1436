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

// bplusRomsel is the B+'s extended ROMSEL at 0xFE30-0xFE33: bits 0-3
// select the sideways bank as on the Model B, bit 7 additionally pages
// in 12 KiB of private (ANDY) RAM at 0x8000-0xAFFF in place of the
// selected ROM bank. Unlike the plain Model B register, this one is
// readable (returns the last written value masked to the writable bits).
type bplusRomsel struct {
	sideways *bank.Sideways
	value    uint8 // bits 0-3 bank, bit 7 ANDY enable
	databus  uint8
}

func (r *bplusRomsel) Read(addr uint16) uint8 {
	r.databus = r.value
	return r.value
}
func (r *bplusRomsel) Peek(addr uint16) uint8 { return r.value }
func (r *bplusRomsel) Write(addr uint16, val uint8) {
	r.value = val & 0x8F
	r.databus = val
	r.sideways.Select(val & 0x0F)
}
func (r *bplusRomsel) PowerOn()            { r.value = 0 }
func (r *bplusRomsel) Parent() memory.Bank { return nil }
func (r *bplusRomsel) DatabusVal() uint8   { return r.databus }
func (r *bplusRomsel) AndyEnabled() bool   { return r.value&0x80 != 0 }

// acccon is the B+'s shadow-RAM control register at 0xFE34-0xFE37: only
// bit 7 is writable and it selects whether MOS's VDU-driver code sees
// shadow RAM instead of main RAM at 0x3000-0x7FFF.
type acccon struct {
	value   uint8
	databus uint8
}

func (a *acccon) Read(addr uint16) uint8 {
	a.databus = a.value
	return a.value
}
func (a *acccon) Peek(addr uint16) uint8 { return a.value }
func (a *acccon) Write(addr uint16, val uint8) {
	a.value = val & 0x80
	a.databus = val
}
func (a *acccon) PowerOn()             { a.value = 0 }
func (a *acccon) Parent() memory.Bank  { return nil }
func (a *acccon) DatabusVal() uint8    { return a.databus }
func (a *acccon) ShadowEnabled() bool  { return a.value&0x80 != 0 }

var (
	_ memory.Bank   = (*bplusRomsel)(nil)
	_ memory.Peeker = (*bplusRomsel)(nil)
	_ memory.Bank   = (*acccon)(nil)
	_ memory.Peeker = (*acccon)(nil)
)

// BPlus is a BBC Model B+ 64K: the Model B's 32 KiB main RAM extended
// with 20 KiB of shadow screen RAM and 12 KiB of private (ANDY) RAM,
// gated by the ACCCON and extended-ROMSEL registers respectively. The
// PC-aware accessors (ReadWithPC, WriteWithPC, PeekWithPC) route
// 0x3000-0x7FFF to shadow RAM for VDU driver code (MOS 0xC000-0xDFFF,
// or 0xA000-0xAFFF when ANDY is paged in) when shadow is enabled, and to
// main RAM for all other code. Read and Write, which the CPU core uses,
// take no PC and always reach main RAM at those addresses, so code run
// by the CPU core does not see shadow RAM.
type BPlus struct {
	MainRAM   memory.Bank
	ShadowRAM memory.Bank
	AndyRAM   memory.Bank
	MOSROM    *memory.ROM

	BasicROM *memory.ROM
	DFSROM   *memory.ROM
	Sideways *bank.Sideways

	SystemVIA *via.Chip
	UserVIA   *via.Chip

	CRTC     *crtc.Chip
	VideoULA *videoula.Chip
	Teletext *teletext.Chip

	Latch        *keyboard.Latch
	Keyboard     *keyboard.Matrix
	SystemPeriph *keyboard.SystemPeripheral

	romsel *bplusRomsel
	acccon *acccon

	Map *memory.Map
	IRQ *irq.Aggregator

	Video       *VideoBinding
	Scheduler   *clock.Scheduler
	VideoOutput *pixel.Queue

	databus uint8
}

// NewBPlus builds a Model B+ with all devices wired per the reference
// memory map.
func NewBPlus() *BPlus {
	b := &BPlus{}

	mainRAM, err := memory.New8BitRAMBank(32*1024, nil)
	if err != nil {
		panic(err)
	}
	b.MainRAM = mainRAM

	shadowRAM, err := memory.NewRAMBank(20*1024, nil)
	if err != nil {
		panic(err)
	}
	b.ShadowRAM = shadowRAM

	andyRAM, err := memory.NewRAMBank(12*1024, nil)
	if err != nil {
		panic(err)
	}
	b.AndyRAM = andyRAM

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

	b.romsel = &bplusRomsel{sideways: b.Sideways}
	b.acccon = &acccon{}

	b.Map = memory.NewMap(
		memory.Region{Base: 0xFE00, End: 0xFE07, Mirror: 0x07, Device: b.CRTC},
		memory.Region{Base: 0xFE20, End: 0xFE2F, Mirror: 0x01, Device: b.VideoULA},
		memory.Region{Base: 0xFE40, End: 0xFE5F, Mirror: 0x0F, Device: b.SystemVIA},
		memory.Region{Base: 0xFE60, End: 0xFE7F, Mirror: 0x0F, Device: b.UserVIA},
		memory.Region{Base: 0xFE30, End: 0xFE33, Mirror: 0x03, Device: b.romsel},
		memory.Region{Base: 0xFE34, End: 0xFE37, Mirror: 0x03, Device: b.acccon},
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

// andyOverride reports whether addr falls in the ANDY-paged window and
// ANDY RAM is currently selected, the one case that bypasses the plain
// memory map entirely (ANDY has no Map region of its own, matching the
// reference's read()/write() special-casing it ahead of the map).
func (b *BPlus) andyOverride(addr uint16) bool {
	return addr >= 0x8000 && addr < 0xB000 && b.romsel.AndyEnabled()
}

// Read implements memory.Bank.
func (b *BPlus) Read(addr uint16) uint8 {
	var v uint8
	if b.andyOverride(addr) {
		v = b.AndyRAM.Read(addr - 0x8000)
	} else {
		v = b.Map.Read(addr)
	}
	b.databus = v
	return v
}

// Write implements memory.Bank.
func (b *BPlus) Write(addr uint16, val uint8) {
	if b.andyOverride(addr) {
		b.AndyRAM.Write(addr-0x8000, val)
	} else {
		b.Map.Write(addr, val)
	}
	b.databus = val
}

// ReadWithPC is the VDU-driver-aware read: when shadow RAM is enabled
// and addr is in 0x3000-0x7FFF, code executing from a VDU driver region
// sees shadow RAM; everything else (including non-VDU code at the same
// addresses) sees main RAM. The CPU core does not call it; package
// machine uses it for debugger reads with a simulated PC.
func (b *BPlus) ReadWithPC(addr, pc uint16) uint8 {
	if b.acccon.ShadowEnabled() && addr >= 0x3000 && addr < 0x8000 {
		if isVDUDriverCode(pc, b.romsel.AndyEnabled()) {
			return memory.PeekBank(b.ShadowRAM, addr-0x3000)
		}
		return memory.PeekBank(b.MainRAM, addr)
	}
	return b.Read(addr)
}

// WriteWithPC is ReadWithPC's write counterpart.
func (b *BPlus) WriteWithPC(addr uint16, val uint8, pc uint16) {
	if b.acccon.ShadowEnabled() && addr >= 0x3000 && addr < 0x8000 {
		if isVDUDriverCode(pc, b.romsel.AndyEnabled()) {
			b.ShadowRAM.Write(addr-0x3000, val)
			return
		}
		b.MainRAM.Write(addr, val)
		return
	}
	b.Write(addr, val)
}

// isVDUDriverCode reports whether code executing at pc is classified
// as VDU driver code per the B+ Service Manual: the lower 8K of MOS
// (0xC000-0xDFFF) always qualifies; 0xA000-0xAFFF qualifies only while
// ANDY is paged in. The ranges are half-open: a pc equal to a range's
// upper bound (0xE000, 0xB000) is classified non-VDU, while the lower
// bounds (0xC000, 0xA000) are inside their ranges.
func isVDUDriverCode(pc uint16, andyEnabled bool) bool {
	if pc >= 0xC000 && pc < 0xE000 {
		return true
	}
	if pc >= 0xA000 && pc < 0xB000 && andyEnabled {
		return true
	}
	return false
}

// PeekWithPC is Peek's VDU-driver-aware counterpart, for debugger reads
// that must simulate a particular executing PC.
func (b *BPlus) PeekWithPC(addr, pc uint16) uint8 {
	if b.acccon.ShadowEnabled() && addr >= 0x3000 && addr < 0x8000 {
		if isVDUDriverCode(pc, b.romsel.AndyEnabled()) {
			return memory.PeekBank(b.ShadowRAM, addr-0x3000)
		}
		return memory.PeekBank(b.MainRAM, addr)
	}
	return b.Peek(addr)
}

// Peek is the side-effect-free counterpart used by the debugger; it
// always reads main RAM (not shadow), matching the reference.
func (b *BPlus) Peek(addr uint16) uint8 {
	switch {
	case addr >= 0xFE40 && addr <= 0xFE5F:
		return memory.PeekBank(b.SystemVIA, addr&0x0F)
	case addr >= 0xFE60 && addr <= 0xFE7F:
		return memory.PeekBank(b.UserVIA, addr&0x0F)
	case b.andyOverride(addr):
		return memory.PeekBank(b.AndyRAM, addr-0x8000)
	default:
		return b.Map.Peek(addr)
	}
}

// PeekVideo implements videoRAM: video always reads shadow RAM when
// ACCCON bit 7 is set, regardless of which code is executing.
func (b *BPlus) PeekVideo(addr uint16) uint8 {
	if addr >= 0x3000 && addr < 0x8000 && b.acccon.ShadowEnabled() {
		return memory.PeekBank(b.ShadowRAM, addr-0x3000)
	}
	return memory.PeekBank(b.MainRAM, addr)
}

// ScreenBase implements videoRAM.
func (b *BPlus) ScreenBase() uint8 { return b.Latch.ScreenBase() }

// PeekShadow reads shadow RAM directly regardless of ACCCON, for tests
// and debugger shadow-RAM inspection.
func (b *BPlus) PeekShadow(addr uint16) uint8 {
	if addr >= 0x3000 && addr < 0x8000 {
		return memory.PeekBank(b.ShadowRAM, addr-0x3000)
	}
	return 0xFF
}

// WriteShadow writes shadow RAM directly regardless of ACCCON.
func (b *BPlus) WriteShadow(addr uint16, val uint8) {
	if addr >= 0x3000 && addr < 0x8000 {
		b.ShadowRAM.Write(addr-0x3000, val)
	}
}

// PowerOn implements memory.Bank by resetting every device.
func (b *BPlus) PowerOn() { b.Reset() }

// Parent implements memory.Bank.
func (b *BPlus) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank.
func (b *BPlus) DatabusVal() uint8 { return b.databus }

// Reset restores every device to its power-on/reset state.
func (b *BPlus) Reset() {
	if clearer, ok := b.MainRAM.(interface{ Clear() }); ok {
		clearer.Clear()
	}
	if clearer, ok := b.ShadowRAM.(interface{ Clear() }); ok {
		clearer.Clear()
	}
	if clearer, ok := b.AndyRAM.(interface{ Clear() }); ok {
		clearer.Clear()
	}
	b.SystemVIA.Reset()
	b.UserVIA.Reset()
	b.CRTC.Reset()
	b.VideoULA.Reset()
	b.Teletext.Reset()
	b.Latch.Reset()
	b.Sideways.Select(0)
	b.romsel.PowerOn()
	b.acccon.PowerOn()
}

// EnableVideoOutput allocates the pixel output queue.
func (b *BPlus) EnableVideoOutput(capacity int) { b.VideoOutput = pixel.NewQueue(capacity) }

// DisableVideoOutput frees the output queue.
func (b *BPlus) DisableVideoOutput() { b.VideoOutput = nil }

// VideoOutputEnabled reports whether a consumer has been attached.
func (b *BPlus) VideoOutputEnabled() bool { return b.VideoOutput != nil }

// PollIRQ returns the aggregated IRQ mask.
func (b *BPlus) PollIRQ() uint8 { return b.IRQ.Poll() }

// Tick advances every clocked device one master cycle and returns the
// resulting aggregated IRQ mask.
func (b *BPlus) Tick(cycle uint64) uint8 {
	b.Scheduler.Tick(cycle)
	return b.PollIRQ()
}

// Bindings returns this profile's clocked peripherals in dispatch order,
// for a machine.Machine to prepend its CPU binding to.
func (b *BPlus) Bindings() []clock.Binding {
	return []clock.Binding{b.SystemVIA, b.UserVIA, b.Video}
}

// IRQSender returns the aggregated IRQ source a CPU core polls.
func (b *BPlus) IRQSender() irq.Sender { return b.IRQ }

// VideoQueue returns the currently attached pixel output queue, or nil
// if video output isn't enabled.
func (b *BPlus) VideoQueue() *pixel.Queue { return b.VideoOutput }

// KeyMatrix returns the key matrix the network keyboard endpoints drive.
func (b *BPlus) KeyMatrix() *keyboard.Matrix { return b.Keyboard }

// ROMSEL/ACCCON accessors, exposed for tests and the debugger.
func (b *BPlus) ROMSEL() uint8     { return b.romsel.value }
func (b *BPlus) ACCCON() uint8     { return b.acccon.value }
func (b *BPlus) AndyEnabled() bool { return b.romsel.AndyEnabled() }
func (b *BPlus) ShadowEnabled() bool { return b.acccon.ShadowEnabled() }

// Regions implements Profile's debugger region discovery: main RAM,
// shadow RAM, ANDY RAM, MOS ROM, and each of the 16 sideways slots.
func (b *BPlus) Regions() []RegionDescriptor {
	regions := []RegionDescriptor{
		{Name: "main-ram", Base: 0x0000, Size: 32 * 1024, Readable: true, Writable: true, Populated: true, Active: true},
		{Name: "shadow-ram", Base: 0x3000, Size: 20 * 1024, Readable: true, Writable: true, Populated: true, Active: b.ShadowEnabled()},
		{Name: "andy-ram", Base: 0x8000, Size: 12 * 1024, Readable: true, Writable: true, Populated: true, Active: b.AndyEnabled()},
		{Name: "mos-rom", Base: 0xC000, Size: 16 * 1024, Readable: true, Populated: true, Active: true},
	}
	return append(regions, sidewaysRegions(b.Sideways, int(b.Sideways.Selected()))...)
}

// LoadMOS, LoadBasic and LoadDFS populate the fixed ROM images.
func (b *BPlus) LoadMOS(data []uint8) (truncated bool)   { return b.MOSROM.Load(data) }
func (b *BPlus) LoadBasic(data []uint8) (truncated bool) { return b.BasicROM.Load(data) }
func (b *BPlus) LoadDFS(data []uint8) (truncated bool)   { return b.DFSROM.Load(data) }

var (
	_ memory.Bank = (*BPlus)(nil)
	_ videoRAM    = (*BPlus)(nil)
)
