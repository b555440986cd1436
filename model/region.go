package model

import "strconv"

// RegionDescriptor describes one named, independently addressable span of
// a hardware profile's memory for external inspection (the debugger's
// GetMemoryRegions call and its region-aware Peek/Read/WriteRegion
// siblings address regions by Name rather than by raw base address).
type RegionDescriptor struct {
	Name           string
	Base           uint16
	Size           int
	Readable       bool
	Writable       bool
	HasSideEffects bool
	Populated      bool
	Active         bool
}

func sidewaysRegions(s interface{ SlotPopulated(int) bool }, activeSlot int) []RegionDescriptor {
	regions := make([]RegionDescriptor, 0, 16)
	for slot := 0; slot < 16; slot++ {
		regions = append(regions, RegionDescriptor{
			Name:      sidewaysSlotName(slot),
			Base:      0x8000,
			Size:      16 * 1024,
			Readable:  true,
			Writable:  slot == SidewaysRAMSlot,
			Populated: s.SlotPopulated(slot),
			Active:    slot == activeSlot,
		})
	}
	return regions
}

func sidewaysSlotName(slot int) string {
	switch slot {
	case BasicSlot:
		return "sideways-0-basic"
	case DFSSlot:
		return "sideways-1-dfs"
	case SidewaysRAMSlot:
		return "sideways-4-ram"
	default:
		return "sideways-" + strconv.Itoa(slot)
	}
}
