// Package server exposes a running machine.Machine over HTTP/JSON: a
// video configuration and frame-streaming endpoint, keyboard input, and
// a debugger control surface (run/stop/step/memory/breakpoints/
// registers). There is no RPC framework dependency here deliberately;
// every example in the retrieved corpus that exposes a network control
// surface does so with net/http and encoding/json, so that is what this
// package builds on too.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jmchacon/beeb/machine"
	"github.com/jmchacon/beeb/render"
)

// Server wires a machine.Machine and its render.Renderer onto an
// http.ServeMux. It owns no goroutines of its own beyond what
// http.Server spins up per request; the caller is responsible for
// driving the machine (e.g. running Machine.Run in a loop) and for
// calling Renderer.Drain regularly.
type Server struct {
	m        *machine.Machine
	renderer *render.Renderer
	mux      *http.ServeMux
}

// New builds a Server around m, publishing frames from renderer (which
// may be nil if this machine has no video output attached).
func New(m *machine.Machine, renderer *render.Renderer) *Server {
	s := &Server{
		m:        m,
		renderer: renderer,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server on addr, blocking until it
// returns an error (matching the reference CLI's direct
// http.ListenAndServe use rather than a separate *http.Server value).
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("server: listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Handler returns the underlying mux, for tests or for embedding behind
// another server (e.g. alongside net/http/pprof).
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/video/config", s.handleVideoConfig)
	s.mux.HandleFunc("/video/frames", s.handleVideoFrames)

	s.mux.HandleFunc("/keyboard/down", s.handleKeyDown)
	s.mux.HandleFunc("/keyboard/up", s.handleKeyUp)
	s.mux.HandleFunc("/keyboard/state", s.handleKeyState)

	s.mux.HandleFunc("/debugger/state", s.handleDebuggerState)
	s.mux.HandleFunc("/debugger/run", s.handleRun)
	s.mux.HandleFunc("/debugger/stop", s.handleStop)
	s.mux.HandleFunc("/debugger/reset", s.handleReset)
	s.mux.HandleFunc("/debugger/step_instruction", s.handleStepInstruction)
	s.mux.HandleFunc("/debugger/step_cycle", s.handleStepCycle)
	s.mux.HandleFunc("/debugger/read_memory", s.handleReadMemory)
	s.mux.HandleFunc("/debugger/write_memory", s.handleWriteMemory)
	s.mux.HandleFunc("/debugger/peek_memory", s.handlePeekMemory)
	s.mux.HandleFunc("/debugger/breakpoints/add", s.handleAddBreakpoint)
	s.mux.HandleFunc("/debugger/breakpoints/remove", s.handleRemoveBreakpoint)
	s.mux.HandleFunc("/debugger/breakpoints/list", s.handleListBreakpoints)
	s.mux.HandleFunc("/debugger/breakpoints/clear", s.handleClearBreakpoints)
	s.mux.HandleFunc("/debugger/regions", s.handleGetMemoryRegions)
	s.mux.HandleFunc("/debugger/region/peek", s.handlePeekRegion)
	s.mux.HandleFunc("/debugger/region/read", s.handleReadRegion)
	s.mux.HandleFunc("/debugger/region/write", s.handleWriteRegion)

	s.mux.HandleFunc("/cpu/registers", s.handleRegisters)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, errEmptyBody)
		return false
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

var errEmptyBody = jsonError("request body required")

type jsonError string

func (e jsonError) Error() string { return string(e) }

// frameStreamInterval bounds how often handleVideoFrames polls the
// renderer's frame buffer for a new version while a client is
// connected, so a quiet machine doesn't hold the handler goroutine in
// a busy loop.
const frameStreamInterval = 10 * time.Millisecond
