package machine

import "sort"

// PCHistogram counts how many times each of the 65536 addresses has
// been executed as an instruction, for profiling and hot-loop detection.
// It is attached to a Machine via AttachPCHistogram and fed from the
// instruction hook on every instruction boundary.
type PCHistogram struct {
	visits [65536]uint64
}

// NewPCHistogram returns an empty histogram.
func NewPCHistogram() *PCHistogram {
	return &PCHistogram{}
}

// Record increments addr's visit count.
func (h *PCHistogram) Record(addr uint16) {
	h.visits[addr]++
}

// Visits returns the visit count for addr.
func (h *PCHistogram) Visits(addr uint16) uint64 {
	return h.visits[addr]
}

// TotalVisits returns the sum of every address's visit count.
func (h *PCHistogram) TotalVisits() uint64 {
	var sum uint64
	for _, v := range h.visits {
		sum += v
	}
	return sum
}

// Clear zeroes every counter.
func (h *PCHistogram) Clear() {
	h.visits = [65536]uint64{}
}

// UniqueAddresses returns the number of addresses with at least one visit.
func (h *PCHistogram) UniqueAddresses() int {
	var n int
	for _, v := range h.visits {
		if v > 0 {
			n++
		}
	}
	return n
}

// AddrVisits pairs an address with its visit count.
type AddrVisits struct {
	Addr   uint16
	Visits uint64
}

// TopAddresses returns up to n addresses ordered by descending visit
// count, for hot-spot analysis.
func (h *PCHistogram) TopAddresses(n int) []AddrVisits {
	all := make([]AddrVisits, 0, len(h.visits))
	for addr, v := range h.visits {
		if v > 0 {
			all = append(all, AddrVisits{Addr: uint16(addr), Visits: v})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Visits > all[j].Visits })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// ExceedsThreshold reports whether addr's visit count exceeds threshold,
// for loop detection.
func (h *PCHistogram) ExceedsThreshold(addr uint16, threshold uint64) bool {
	return h.visits[addr] > threshold
}
