package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// handleOperatorWS streams the operator broadcast feed over a WebSocket, for
// consoles that prefer it to SSE. Writes that stall are treated as a gone
// client.
func handleOperatorWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		teams := broker.Subscribe(TopicTeams)
		defer broker.Unsubscribe(TopicTeams, teams)
		verifications := broker.Subscribe(TopicVerifications)
		defer broker.Unsubscribe(TopicVerifications, verifications)

		ctx := r.Context()
		for {
			var data []byte
			select {
			case <-ctx.Done():
				return
			case data = <-teams:
			case data = <-verifications:
			}

			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
