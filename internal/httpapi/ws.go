package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type frameMsg struct {
	Type    string `json:"type"`
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

type statusMsg struct {
	Type   string `json:"type"`
	Status any    `json:"status"`
}

// handleFramesWS upgrades a viewer connection. The client gets one status
// message on connect and then frame messages as the strip changes. The
// connection joins the broadcast set only after that first write, so the
// frame fan-out can never write the socket concurrently with it.
func (s *Server) handleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	b, _ := json.Marshal(statusMsg{Type: "status", Status: s.eng.Status()})
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		conn.Close()
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Frame implements engine.Sink, fanning a rendered frame out to every viewer.
func (s *Server) Frame(id uint64, rgb []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	b, _ := json.Marshal(frameMsg{Type: "frame", T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

// BroadcastStatus pushes a fresh status snapshot to every viewer; called after
// config reloads so dashboards track live tuning.
func (s *Server) BroadcastStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	b, _ := json.Marshal(statusMsg{Type: "status", Status: s.eng.Status()})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
