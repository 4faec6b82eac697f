// Package httpapi exposes the engine's control surface over HTTP. Every
// operation is a GET with query parameters and answers a small JSON body with
// at least ok and message fields.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"posterlights/internal/effect"
	"posterlights/internal/engine"
)

type Server struct {
	eng *engine.Engine
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewServer(eng *engine.Engine, log zerolog.Logger) *Server {
	return &Server{
		eng:     eng,
		log:     log,
		clients: map[*websocket.Conn]bool{},
	}
}

// Handler builds the full route table wrapped in CORS and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/np_on", s.handleOn)
	mux.HandleFunc("/api/np_off", s.handleOff)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/show", s.handleShow)
	mux.HandleFunc("/api/event", s.handleEvent)
	mux.HandleFunc("/api/demo", s.handleDemo)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/progress_mode", s.handleProgressMode)
	mux.HandleFunc("/api/arc", s.handleArc)
	mux.HandleFunc("/api/progress", s.handleProgress)
	mux.HandleFunc("/api/", s.handleUnknown)
	mux.HandleFunc("/ws", s.handleFramesWS)
	mux.HandleFunc("/health", s.handleHealth)
	return withCORS(s.recovered(mux))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, id := s.eng.Frame()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "frame_id": id})
}

func (s *Server) handleOn(w http.ResponseWriter, r *http.Request) {
	s.eng.SetEnabled(true)
	writeJSON(w, http.StatusOK, engine.Result{OK: true, Message: "OK"})
}

func (s *Server) handleOff(w http.ResponseWriter, r *http.Request) {
	s.eng.SetEnabled(false)
	writeJSON(w, http.StatusOK, engine.Result{OK: true, Message: "OK"})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	res := s.eng.SetIdle(qStr(r, "name", ""))
	writeResult(w, res)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	name := qStr(r, "name", "")
	if name == "stop" {
		s.eng.StopShow()
		writeJSON(w, http.StatusOK, engine.Result{OK: true, Message: "OK"})
		return
	}
	res := s.eng.StartShow(name, qInt(r, "seconds", 10))
	writeResult(w, res)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	res := s.eng.TriggerEvent(qStr(r, "name", ""), qInt(r, "seconds", 0))
	writeResult(w, res)
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	on := qBool(r, "on", true)
	interval := s.eng.SetDemo(on, qInt(r, "interval", 30))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true, "message": "OK", "demo": on, "demo_interval_s": interval,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	// Missing params keep their current values.
	b, sp := s.eng.SetConfig(
		qFloat(r, "brightness", s.eng.Brightness()),
		qFloat(r, "speed", s.eng.Speed()),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true, "message": "OK", "brightness": b, "speed": sp,
	})
}

func (s *Server) handleProgressMode(w http.ResponseWriter, r *http.Request) {
	on := qBool(r, "on", true)
	s.eng.SetProgressMode(on)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true, "message": "OK", "progress_mode_enabled": on,
	})
}

func (s *Server) handleArc(w http.ResponseWriter, r *http.Request) {
	st := s.eng.Status()
	start, end := s.eng.SetArc(qInt(r, "start", st.ArcStart), qInt(r, "end", st.ArcEnd))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true, "message": "OK", "arc_start": start, "arc_end": end,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	pct, state := s.eng.PushProgress(
		qFloat(r, "pct", -1),
		effect.ParseState(qStr(r, "state", "")),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true, "message": "OK", "progress_pct": pct, "progress_state": string(state),
	})
}

// Unknown /api/ paths answer a JSON 404 and never mutate state.
func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, engine.Result{OK: false, Message: "unknown endpoint"})
}

func writeResult(w http.ResponseWriter, res engine.Result) {
	code := http.StatusOK
	if !res.OK {
		code = http.StatusConflict
		if res.Message == "unknown show" || res.Message == "unknown event" || res.Message == "unknown idle mode" {
			code = http.StatusNotFound
		}
	}
	writeJSON(w, code, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func qStr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func qInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func qFloat(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func qBool(r *http.Request, key string, def bool) bool {
	switch qStr(r, key, "") {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return def
}

func (s *Server) recovered(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, engine.Result{OK: false, Message: "internal error"})
			}
		}()
		h.ServeHTTP(w, r)
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
