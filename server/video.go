package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmchacon/beeb/render"
)

// VideoConfig describes the fixed frame geometry a client needs before
// it can interpret the pixel stream from /video/frames.
type VideoConfig struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

func (s *Server) handleVideoConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, VideoConfig{Width: render.Width, Height: render.Height, Format: "bgra32"})
}

// FrameMessage is one line of the /video/frames chunked stream: a frame
// version counter (clients skip a message whose version they've
// already seen) and the packed BGRA32 pixel grid.
type FrameMessage struct {
	Version uint64   `json:"version"`
	Pixels  []uint32 `json:"pixels"`
}

// handleVideoFrames streams newly published frames as a sequence of
// JSON lines for as long as the client stays connected, polling the
// renderer's frame buffer version rather than pushing from the render
// goroutine directly (the FrameBuffer has no subscriber list of its
// own, only a version counter, by design: see render.FrameBuffer).
func (s *Server) handleVideoFrames(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, errNoVideo)
		return
	}
	fb := s.renderer.FrameBuffer()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errNoFlush)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")

	enc := json.NewEncoder(w)
	var lastVersion uint64
	ticker := time.NewTicker(frameStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			v := fb.Version()
			if v == lastVersion {
				continue
			}
			lastVersion = v
			if err := enc.Encode(FrameMessage{Version: v, Pixels: fb.ReadFrame()}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

var errNoVideo = jsonError("video output is not enabled on this machine")
var errNoFlush = jsonError("response writer does not support streaming")
