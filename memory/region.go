package memory

// Region binds a device into a contiguous, optionally mirrored, window of
// the 16-bit address space. Regions are composed into a Map in declaration
// order; the first region whose range contains an address wins.
type Region struct {
	Base   uint16
	End    uint16
	Mirror uint16 // mask applied to addr-Base; 0 means "no masking"
	Device Bank
}

// Contains reports whether addr falls within [Base, End].
func (r Region) Contains(addr uint16) bool {
	return addr >= r.Base && addr <= r.End
}

// offset computes the device-local offset for addr, applying the mirror
// mask when one is configured.
func (r Region) offset(addr uint16) uint16 {
	off := addr - r.Base
	if r.Mirror != 0 {
		off &= r.Mirror
	}
	return off
}

// Map is an ordered list of Regions implementing first-match-wins
// dispatch over the full 16-bit address space. Regions may overlap (the
// model maps place the I/O pages inside the MOS ROM range); an address
// is handled by the earliest region in the list that contains it.
type Map struct {
	Regions []Region
}

// NewMap builds a Map from regions in priority order (first wins).
func NewMap(regions ...Region) *Map {
	return &Map{Regions: regions}
}

// find returns the first matching region and its local offset, or ok=false
// if no region claims addr (an open-bus access).
func (m *Map) find(addr uint16) (Region, uint16, bool) {
	for _, r := range m.Regions {
		if r.Contains(addr) {
			return r, r.offset(addr), true
		}
	}
	return Region{}, 0, false
}

// Read routes addr to its region's device, or returns the open-bus value
// 0xFF if unmapped.
func (m *Map) Read(addr uint16) uint8 {
	r, off, ok := m.find(addr)
	if !ok {
		return 0xFF
	}
	return r.Device.Read(off)
}

// Write routes addr (and val) to its region's device, silently discarding
// the write if unmapped.
func (m *Map) Write(addr uint16, val uint8) {
	r, off, ok := m.find(addr)
	if !ok {
		return
	}
	r.Device.Write(off, val)
}

// Peek is the side-effect-free counterpart to Read, used for debugger
// inspection. Unmapped addresses still read as 0xFF.
func (m *Map) Peek(addr uint16) uint8 {
	r, off, ok := m.find(addr)
	if !ok {
		return 0xFF
	}
	return PeekBank(r.Device, off)
}
