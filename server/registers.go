package server

import (
	"net/http"

	"github.com/jmchacon/beeb/machine"
)

// RegisterEdits mirrors machine.RegisterEdits with JSON-friendly
// pointer fields: a field left out of the request body is left
// untouched by WriteRegisters.
type RegisterEdits struct {
	A  *uint8  `json:"a,omitempty"`
	X  *uint8  `json:"x,omitempty"`
	Y  *uint8  `json:"y,omitempty"`
	SP *uint8  `json:"sp,omitempty"`
	PC *uint16 `json:"pc,omitempty"`
	P  *uint8  `json:"p,omitempty"`
}

func (s *Server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.m.ReadRegisters())
	case http.MethodPost:
		var edits RegisterEdits
		if !decodeJSON(w, r, &edits) {
			return
		}
		s.m.WriteRegisters(machine.RegisterEdits{
			A: edits.A, X: edits.X, Y: edits.Y, SP: edits.SP, PC: edits.PC, P: edits.P,
		})
		writeJSON(w, s.m.ReadRegisters())
	default:
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	}
}

var errMethodNotAllowed = jsonError("method not allowed")
