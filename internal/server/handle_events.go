package server

import (
	"fmt"
	"net/http"
	"time"
)

const ssePingInterval = 30 * time.Second

// handleTeamEvents streams the team-scoped event feed over SSE. Delivery is
// best-effort; a reconnecting client re-syncs by calling login again.
func handleTeamEvents(store TeamStore, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := teamCode(r)
		if _, err := store.Team(r.Context(), code); err != nil {
			writeGameError(w, err)
			return
		}

		flusher, ok := sseStart(w)
		if !ok {
			return
		}

		ch := broker.Subscribe(teamTopic(code))
		defer broker.Unsubscribe(teamTopic(code), ch)

		sseLoop(w, r, flusher, ch, nil)
	}
}

// handleOperatorEvents streams every team's updates plus the verification
// queue to the operator console.
func handleOperatorEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := sseStart(w)
		if !ok {
			return
		}

		teams := broker.Subscribe(TopicTeams)
		defer broker.Unsubscribe(TopicTeams, teams)
		verifications := broker.Subscribe(TopicVerifications)
		defer broker.Unsubscribe(TopicVerifications, verifications)

		sseLoop(w, r, flusher, teams, verifications)
	}
}

func sseStart(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()
	return flusher, true
}

// sseLoop forwards events from up to two subscriptions until the client goes
// away, pinging periodically to keep intermediaries from closing the stream.
func sseLoop(w http.ResponseWriter, r *http.Request, flusher http.Flusher, a, b chan []byte) {
	ping := time.NewTicker(ssePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-a:
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
			flusher.Flush()
		case data := <-b:
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ping.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
