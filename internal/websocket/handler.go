package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and attaches it to the hub. When
// greeting is non-nil its result is sent to the new client first so it
// starts from current state.
func HandleWebSocket(hub *Hub, logger *slog.Logger, greeting func() Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn)
		if greeting != nil {
			if err := client.Greet(greeting()); err != nil {
				logger.Error("websocket greeting", "error", err)
			}
		}
		client.Run(r.Context())
	}
}
