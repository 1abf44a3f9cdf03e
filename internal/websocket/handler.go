package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleEvents returns an HTTP handler that upgrades the connection and
// streams hub broadcasts to it.
func HandleEvents(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // same-host browser UI, origin is ourselves
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}
