package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"bookfinder/internal/app/hub"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/limiter"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and attaches it to the hub.
func HandleWebSocket(manager *hub.Manager, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		manager.Connect(conn)
	}
}
