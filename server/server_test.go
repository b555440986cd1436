package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmchacon/beeb/machine"
	"github.com/jmchacon/beeb/model"
	"github.com/jmchacon/beeb/pixel"
	"github.com/jmchacon/beeb/render"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m, err := machine.New(model.NewB())
	if err != nil {
		t.Fatalf("machine.New() error = %v", err)
	}
	m.Reset()
	renderer := render.NewRenderer(pixel.NewQueue(64))
	return New(m, renderer)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	resp := w.Result()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestVideoConfigReportsFixedGeometry(t *testing.T) {
	s := newTestServer(t)
	var cfg VideoConfig
	doJSON(t, s, http.MethodGet, "/video/config", nil, &cfg)
	if cfg.Width != render.Width || cfg.Height != render.Height || cfg.Format != "bgra32" {
		t.Errorf("VideoConfig = %+v, want %dx%d bgra32", cfg, render.Width, render.Height)
	}
}

func TestVideoFramesWithoutRendererIsUnavailable(t *testing.T) {
	m, err := machine.New(model.NewB())
	if err != nil {
		t.Fatalf("machine.New() error = %v", err)
	}
	s := New(m, nil)
	resp := doJSON(t, s, http.MethodGet, "/video/frames", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestKeyDownUpRoundTripThroughState(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/keyboard/down", KeyRequest{Row: 1, Column: 2}, nil)

	var state KeyboardState
	doJSON(t, s, http.MethodGet, "/keyboard/state", nil, &state)
	if len(state.Pressed) != 1 || state.Pressed[0] != (KeyRequest{Row: 1, Column: 2}) {
		t.Errorf("KeyboardState.Pressed = %+v, want exactly [{1 2}]", state.Pressed)
	}

	doJSON(t, s, http.MethodPost, "/keyboard/up", KeyRequest{Row: 1, Column: 2}, nil)
	doJSON(t, s, http.MethodGet, "/keyboard/state", nil, &state)
	if len(state.Pressed) != 0 {
		t.Errorf("KeyboardState.Pressed after key up = %+v, want none", state.Pressed)
	}
}

func TestDebuggerRunStopReflectsPausedState(t *testing.T) {
	s := newTestServer(t)
	var st DebuggerState
	doJSON(t, s, http.MethodPost, "/debugger/stop", nil, &st)
	if !st.Paused {
		t.Error("Paused should be true after /debugger/stop")
	}
	doJSON(t, s, http.MethodPost, "/debugger/run", nil, &st)
	if st.Paused {
		t.Error("Paused should be false after /debugger/run")
	}
}

func TestStepInstructionAdvancesCycles(t *testing.T) {
	s := newTestServer(t)
	var result StepResult
	doJSON(t, s, http.MethodPost, "/debugger/step_instruction", nil, &result)
	if result.CyclesExecuted == 0 {
		t.Error("CyclesExecuted = 0, want at least one cycle for a single instruction")
	}
}

func TestReadWriteMemoryRoundTrip(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/debugger/write_memory", MemoryRequest{Address: 0x1000, Data: []uint8{0xAB, 0xCD}}, nil)

	var resp MemoryResponse
	doJSON(t, s, http.MethodPost, "/debugger/read_memory", MemoryRequest{Address: 0x1000, Length: 2}, &resp)
	if len(resp.Data) != 2 || resp.Data[0] != 0xAB || resp.Data[1] != 0xCD {
		t.Errorf("ReadMemory = %v, want [0xAB 0xCD]", resp.Data)
	}
}

func TestBreakpointAddListRemove(t *testing.T) {
	s := newTestServer(t)
	var added BreakpointResponse
	doJSON(t, s, http.MethodPost, "/debugger/breakpoints/add", BreakpointRequest{Address: 0x2000}, &added)

	var listed []BreakpointInfo
	doJSON(t, s, http.MethodGet, "/debugger/breakpoints/list", nil, &listed)
	if len(listed) != 1 || listed[0].Address != 0x2000 || listed[0].ID != added.ID {
		t.Errorf("ListBreakpoints = %+v, want one entry matching %+v", listed, added)
	}

	var removed map[string]bool
	doJSON(t, s, http.MethodPost, "/debugger/breakpoints/remove", BreakpointRequest{ID: added.ID}, &removed)
	if !removed["removed"] {
		t.Error("expected removed=true for a breakpoint that was just added")
	}
}

func TestRegistersGetAndPost(t *testing.T) {
	s := newTestServer(t)
	var regs machine.Registers
	doJSON(t, s, http.MethodGet, "/cpu/registers", nil, &regs)

	a := uint8(0x42)
	doJSON(t, s, http.MethodPost, "/cpu/registers", RegisterEdits{A: &a}, &regs)
	if regs.A != 0x42 {
		t.Errorf("Registers.A = %#x after edit, want 0x42", regs.A)
	}
}

func TestRegistersUnsupportedMethod(t *testing.T) {
	s := newTestServer(t)
	resp := doJSON(t, s, http.MethodDelete, "/cpu/registers", nil, nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestRegionPeekReadWrite(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/debugger/region/write", RegionRequest{Name: "main-ram", Offset: 4, Data: []uint8{0x99}}, nil)

	var resp MemoryResponse
	doJSON(t, s, http.MethodPost, "/debugger/region/read", RegionRequest{Name: "main-ram", Offset: 4, Length: 1}, &resp)
	if len(resp.Data) != 1 || resp.Data[0] != 0x99 {
		t.Errorf("region/read = %v, want [0x99]", resp.Data)
	}

	doJSON(t, s, http.MethodPost, "/debugger/region/peek", RegionRequest{Name: "main-ram", Offset: 4, Length: 1}, &resp)
	if len(resp.Data) != 1 || resp.Data[0] != 0x99 {
		t.Errorf("region/peek = %v, want [0x99]", resp.Data)
	}
}

func TestRegionUnknownNameReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := doJSON(t, s, http.MethodPost, "/debugger/region/read", RegionRequest{Name: "no-such-region", Length: 1}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestGetMemoryRegionsListsMainRAM(t *testing.T) {
	s := newTestServer(t)
	var regions []struct {
		Name string `json:"name"`
	}
	doJSON(t, s, http.MethodGet, "/debugger/regions", nil, &regions)
	var found bool
	for _, r := range regions {
		if r.Name == "main-ram" {
			found = true
		}
	}
	if !found {
		t.Errorf("Regions() = %+v, want a main-ram entry", regions)
	}
}

func TestDecodeJSONRejectsEmptyBody(t *testing.T) {
	s := newTestServer(t)
	r := httptest.NewRequest(http.MethodPost, "/keyboard/down", nil)
	r.Body = nil
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d for a request with no body", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "request body required") {
		t.Errorf("body = %q, want it to mention the missing body", w.Body.String())
	}
}
