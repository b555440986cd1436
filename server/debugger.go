package server

import (
	"fmt"
	"net/http"
)

// DebuggerState is a snapshot of the machine's run state, polled by a
// debugger UI between commands.
type DebuggerState struct {
	Paused     bool   `json:"paused"`
	HaltReason string `json:"halt_reason,omitempty"`
	Cycle      uint64 `json:"cycle"`
	Sequence   uint64 `json:"sequence"`
}

func (s *Server) stateSnapshot() DebuggerState {
	return DebuggerState{
		Paused:     s.m.Paused(),
		HaltReason: s.m.HaltReason(),
		Cycle:      s.m.Cycle(),
		Sequence:   s.m.Sequence(),
	}
}

func (s *Server) handleDebuggerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stateSnapshot())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.m.Resume()
	writeJSON(w, s.stateSnapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.m.Pause()
	writeJSON(w, s.stateSnapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.m.Reset()
	writeJSON(w, s.stateSnapshot())
}

// StepResult reports how much simulated time a step command advanced
// and why it stopped, if it stopped early.
type StepResult struct {
	CyclesExecuted uint64 `json:"cycles_executed"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleStepInstruction(w http.ResponseWriter, r *http.Request) {
	n, err := s.m.StepInstruction()
	result := StepResult{CyclesExecuted: n}
	if err != nil {
		result.Error = err.Error()
	}
	s.drainVideoStep()
	writeJSON(w, result)
}

func (s *Server) handleStepCycle(w http.ResponseWriter, r *http.Request) {
	err := s.m.Step()
	result := StepResult{CyclesExecuted: 1}
	if err != nil {
		result.Error = err.Error()
	}
	s.drainVideoStep()
	writeJSON(w, result)
}

// drainVideoStep drains whatever video batches a single debugger step
// just produced, one at a time: a single-stepping client expects the
// frame buffer to stay current, but only a handful of batches are ever
// pending here, so the bulk span API Drain uses isn't worth it.
func (s *Server) drainVideoStep() {
	if s.renderer == nil {
		return
	}
	for s.renderer.DrainOne() {
	}
}

// MemoryRequest addresses a span of the CPU-visible bus, optionally
// simulating a particular executing PC for profiles whose memory
// routing depends on it (Model B+ shadow RAM).
type MemoryRequest struct {
	Address     uint16  `json:"address"`
	Length      int     `json:"length,omitempty"`
	Data        []uint8 `json:"data,omitempty"`
	SimulatedPC *uint16 `json:"simulated_pc,omitempty"`
}

// MemoryResponse carries the bytes read back from a memory request.
type MemoryResponse struct {
	Data []uint8 `json:"data"`
}

func (s *Server) handleReadMemory(w http.ResponseWriter, r *http.Request) {
	var req MemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, MemoryResponse{Data: s.m.ReadMemory(req.Address, req.Length, req.SimulatedPC)})
}

func (s *Server) handleWriteMemory(w http.ResponseWriter, r *http.Request) {
	var req MemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.m.WriteMemory(req.Address, req.Data, req.SimulatedPC)
	writeJSON(w, struct{}{})
}

func (s *Server) handlePeekMemory(w http.ResponseWriter, r *http.Request) {
	var req MemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, MemoryResponse{Data: s.m.PeekMemory(req.Address, req.Length, req.SimulatedPC)})
}

// BreakpointRequest names an address for AddBreakpoint, or an ID for
// RemoveBreakpoint.
type BreakpointRequest struct {
	Address uint16 `json:"address,omitempty"`
	ID      uint32 `json:"id,omitempty"`
}

// BreakpointResponse carries the ID assigned by AddBreakpoint.
type BreakpointResponse struct {
	ID uint32 `json:"id"`
}

func (s *Server) handleAddBreakpoint(w http.ResponseWriter, r *http.Request) {
	var req BreakpointRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, BreakpointResponse{ID: s.m.AddBreakpoint(req.Address)})
}

func (s *Server) handleRemoveBreakpoint(w http.ResponseWriter, r *http.Request) {
	var req BreakpointRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, map[string]bool{"removed": s.m.RemoveBreakpoint(req.ID)})
}

// BreakpointInfo pairs a breakpoint's ID with its address, for listing.
type BreakpointInfo struct {
	ID      uint32 `json:"id"`
	Address uint16 `json:"address"`
}

func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request) {
	bps := s.m.ListBreakpoints()
	out := make([]BreakpointInfo, 0, len(bps))
	for id, addr := range bps {
		out = append(out, BreakpointInfo{ID: id, Address: addr})
	}
	writeJSON(w, out)
}

func (s *Server) handleClearBreakpoints(w http.ResponseWriter, r *http.Request) {
	s.m.ClearBreakpoints()
	writeJSON(w, struct{}{})
}

func (s *Server) handleGetMemoryRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.m.Profile().Regions())
}

// RegionRequest addresses a named region (as returned by
// handleGetMemoryRegions) by an offset relative to its base.
type RegionRequest struct {
	Name   string  `json:"name"`
	Offset int     `json:"offset,omitempty"`
	Length int     `json:"length,omitempty"`
	Data   []uint8 `json:"data,omitempty"`
}

func (s *Server) resolveRegion(name string) (uint16, error) {
	for _, rg := range s.m.Profile().Regions() {
		if rg.Name == name {
			return rg.Base, nil
		}
	}
	return 0, fmt.Errorf("server: no such memory region %q", name)
}

func (s *Server) handlePeekRegion(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	base, err := s.resolveRegion(req.Name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, MemoryResponse{Data: s.m.PeekMemory(base+uint16(req.Offset), req.Length, nil)})
}

func (s *Server) handleReadRegion(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	base, err := s.resolveRegion(req.Name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, MemoryResponse{Data: s.m.ReadMemory(base+uint16(req.Offset), req.Length, nil)})
}

func (s *Server) handleWriteRegion(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	base, err := s.resolveRegion(req.Name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.m.WriteMemory(base+uint16(req.Offset), req.Data, nil)
	writeJSON(w, struct{}{})
}
