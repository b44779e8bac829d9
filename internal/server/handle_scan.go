package server

import (
	"net/http"
	"strings"

	"github.com/trailquest/hunt/internal/catalog"
	"github.com/trailquest/hunt/internal/game"
)

type ScanRequest struct {
	Token string `json:"token"`
}

type ScanResponse struct {
	Outcome        game.Outcome `json:"outcome"`
	CheckpointName string       `json:"checkpointName,omitempty"`
	Clue           string       `json:"clue,omitempty"`
	Team           game.Team    `json:"team"`
}

// handleScan validates a scanned checkpoint token and advances the team on a
// match. The decision is made against a snapshot of the record and applied
// conditionally; when a concurrent scan for the same team wins the write, the
// loser re-reads the advanced state and decides once more.
func handleScan(store TeamStore, engine *game.Engine, cat *catalog.Holder, broker *Broker) http.HandlerFunc {
	const casAttempts = 2

	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Token = strings.TrimSpace(req.Token)
		if req.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		code := teamCode(r)
		team, err := store.Team(r.Context(), code)
		if err != nil {
			writeGameError(w, err)
			return
		}

		current := cat.Current()
		for attempt := 0; attempt < casAttempts; attempt++ {
			res, err := engine.AttemptScan(team, current, req.Token)
			if err != nil {
				writeGameError(w, err)
				return
			}

			if res.Outcome == game.OutcomeRejected {
				writeJSON(w, http.StatusOK, ScanResponse{Outcome: res.Outcome, Team: team})
				return
			}

			applied, err := store.ApplyScan(r.Context(), team, res.Team)
			if err != nil {
				writeGameError(w, err)
				return
			}
			if applied {
				broker.Publish(TopicTeams, Event{Type: EventTeamUpdate, Team: &res.Team})
				broker.Publish(teamTopic(res.Team.Code), Event{Type: EventTeamUpdate, Team: &res.Team})

				writeJSON(w, http.StatusOK, ScanResponse{
					Outcome:        res.Outcome,
					CheckpointName: res.CheckpointName,
					Clue:           res.Clue,
					Team:           res.Team,
				})
				return
			}

			// Lost the race; re-read and decide against the new index.
			team, err = store.Team(r.Context(), code)
			if err != nil {
				writeGameError(w, err)
				return
			}
		}

		writeGameError(w, game.ErrStoreUnavailable)
	}
}
