package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/suite/internal/route"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// OriginChecker decides whether a browser origin may open a socket.
type OriginChecker func(r *http.Request) bool

// SocketHandler authorizes the caller and upgrades to a notification feed.
// Clients only receive frames; anything they send is discarded.
func (h *Hub) SocketHandler(checker route.PermissionChecker, checkOrigin OriginChecker) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := checker.RequirePermissions(r)
		if err != nil {
			route.WriteError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		sub := newSubscriber(conn, caller)
		h.add(sub)
		defer func() {
			h.remove(sub.ConnID)
			sub.Close()
		}()

		if err := sub.Send(Frame{Type: "hello", Payload: map[string]any{"connId": sub.ConnID, "pending": len(h.Recent(caller))}}); err != nil {
			return
		}

		done := make(chan struct{})
		go h.keepalive(sub, done)
		defer close(done)

		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	})
}

func (h *Hub) keepalive(sub *Subscriber, done <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			sub.mu.Lock()
			err := sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			sub.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
