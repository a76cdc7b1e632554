// Package ws exposes the daemon's control and monitoring surface over
// websockets plus a plain /health endpoint.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/effect"
)

// Controller is the engine surface the API drives.
type Controller interface {
	LedCount() int
	FrameID() uint64
	ActiveEffect() string
	PendingInputs() int
	SetColor(c color.Color, priority int, duration time.Duration)
	SetLedColors(cs []color.Color, priority int, duration time.Duration) error
	StartEffect(name string, args effect.Args, priority int, duration time.Duration) error
	Clear(priority int)
	ClearAll()
}

type Server struct {
	mu      sync.RWMutex
	ctl     Controller
	effects []string
	clients map[*websocket.Conn]bool
	start   time.Time
}

func NewServer(ctl Controller, effectNames []string) *Server {
	return &Server{
		ctl:     ctl,
		effects: effectNames,
		clients: map[*websocket.Conn]bool{},
		start:   time.Now(),
	}
}

// Routes returns the HTTP mux for the daemon, CORS-wrapped.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

// BroadcastFrame pushes a written frame to every connected /ws client.
// Wire this into the engine's OnFrame hook.
func (s *Server) BroadcastFrame(frameID uint64, rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: frameID, RGB: rgb})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
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

// Command is one /control request.
type Command struct {
	Command    string      `json:"command"` // color | ledcolors | effect | clear | clearall
	Color      []uint8     `json:"color,omitempty"`
	Colors     []byte      `json:"colors,omitempty"` // packed RGB, base64 on the wire
	Effect     string      `json:"effect,omitempty"`
	Args       effect.Args `json:"args,omitempty"`
	Priority   int         `json:"priority,omitempty"`
	DurationMs int         `json:"duration_ms,omitempty"`
}

type reply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		rep := reply{Success: true}
		if err := json.Unmarshal(data, &cmd); err != nil {
			rep = reply{Error: "invalid command: " + err.Error()}
		} else if err := s.Apply(cmd); err != nil {
			rep = reply{Error: err.Error()}
		}
		b, _ := json.Marshal(rep)
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
}

// Apply executes a single control command against the engine.
func (s *Server) Apply(cmd Command) error {
	duration := time.Duration(cmd.DurationMs) * time.Millisecond
	switch cmd.Command {
	case "color":
		if len(cmd.Color) != 3 {
			return errBadColor
		}
		s.ctl.SetColor(color.New(cmd.Color[0], cmd.Color[1], cmd.Color[2]), cmd.Priority, duration)
		return nil
	case "ledcolors":
		if len(cmd.Colors) != s.ctl.LedCount()*3 {
			return errBadFrame
		}
		cs := make([]color.Color, s.ctl.LedCount())
		for i := range cs {
			cs[i] = color.New(cmd.Colors[i*3], cmd.Colors[i*3+1], cmd.Colors[i*3+2])
		}
		return s.ctl.SetLedColors(cs, cmd.Priority, duration)
	case "effect":
		return s.ctl.StartEffect(cmd.Effect, cmd.Args, cmd.Priority, duration)
	case "clear":
		s.ctl.Clear(cmd.Priority)
		return nil
	case "clearall":
		s.ctl.ClearAll()
		return nil
	default:
		return errUnknownCommand
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"frame_id":      s.ctl.FrameID(),
		"uptime_s":      time.Since(s.start).Seconds(),
		"led_count":     s.ctl.LedCount(),
		"active_effect": s.ctl.ActiveEffect(),
		"inputs":        s.ctl.PendingInputs(),
		"effects":       s.effects,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
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
