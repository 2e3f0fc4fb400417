package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pricestream/internal/infra"
)

const (
	// Time allowed to write a frame to the client.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the peer is considered gone.
	pongWait = 60 * time.Second

	// Ping cadence; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from this same host; stay permissive so it
	// also works when viewed over a LAN address.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS streams chart updates to one dashboard client: a snapshot on
// attach, then a frame per plotted point.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	remote := conn.RemoteAddr().String()
	infra.GlobalMetrics.IncrementClients()
	slog.Info("Dashboard client connected", slog.String("remote", remote))

	updates, cancel := s.feed.Subscribe()

	defer func() {
		cancel()
		conn.Close()
		infra.GlobalMetrics.DecrementClients()
		slog.Info("Dashboard client disconnected", slog.String("remote", remote))
	}()

	// Reader goroutine: the client never sends data frames, but reading is
	// what surfaces close frames and pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
