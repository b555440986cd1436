package server

import "net/http"

// KeyRequest names one matrix position by row/column, the same
// addressing the System VIA's port A scan uses.
type KeyRequest struct {
	Row    uint8 `json:"row"`
	Column uint8 `json:"column"`
}

func (s *Server) handleKeyDown(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.m.Profile().KeyMatrix().KeyDown(req.Row, req.Column)
	writeJSON(w, struct{}{})
}

func (s *Server) handleKeyUp(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.m.Profile().KeyMatrix().KeyUp(req.Row, req.Column)
	writeJSON(w, struct{}{})
}

// KeyboardState reports every pressed key as a flat list of matrix
// positions, for a client to reconcile its local key-repeat state
// against after a reconnect.
type KeyboardState struct {
	Pressed []KeyRequest `json:"pressed"`
}

func (s *Server) handleKeyState(w http.ResponseWriter, r *http.Request) {
	m := s.m.Profile().KeyMatrix()
	var state KeyboardState
	for row := uint8(0); row < 10; row++ {
		for col := uint8(0); col < 10; col++ {
			if m.IsKeyPressed(row, col) {
				state.Pressed = append(state.Pressed, KeyRequest{Row: row, Column: col})
			}
		}
	}
	writeJSON(w, state)
}
