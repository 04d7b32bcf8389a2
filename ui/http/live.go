package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const liveWriteWait = 10 * time.Second

type liveError struct {
	Error string `json:"error"`
}

// GetLive upgrades to a websocket and pushes the dashboard JSON on connect and then every live interval, until
// the client goes away.
func (h *Http) GetLive(rw http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, req, nil)
	if err != nil {
		log.Warningf("live: websocket upgrade from %s: %s", req.RemoteAddr, err)
		return
	}
	defer conn.Close()

	// Reading is only for noticing the close; clients send nothing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("live: websocket read: %s", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.opts.LiveInterval)
	defer ticker.Stop()
	for {
		if err := h.push(req.Context(), conn); err != nil {
			log.Debugf("live: websocket write to %s: %s", req.RemoteAddr, err)
			return
		}
		select {
		case <-gone:
			return
		case <-req.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Http) push(ctx context.Context, conn *websocket.Conn) error {
	snap, err := h.fetcher.Fetch(ctx)
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err != nil {
		log.Errorf("fetching dashboard for live feed: %s", err)
		return conn.WriteJSON(liveError{Error: adminMessage(err)})
	}
	return conn.WriteJSON(snap.View())
}

// checkOrigin admits same-host pages and the configured CORS origins.
func (h *Http) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, req.Host) {
		return true
	}
	for _, allowed := range h.opts.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
