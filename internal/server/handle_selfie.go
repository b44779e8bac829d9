package server

import (
	"net/http"
	"time"

	"github.com/trailquest/hunt/internal/catalog"
)

type SelfieRequest struct {
	PhotoURL string `json:"photoUrl"`
}

type VerifyRequest struct {
	Approve bool `json:"approve"`
}

// handleSelfieSubmit stores a team's identity photo for operator review. A
// second submission while one is pending is rejected so it cannot race the
// operator's decision.
func handleSelfieSubmit(store TeamStore, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelfieRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PhotoURL == "" {
			writeError(w, http.StatusBadRequest, "photoUrl is required")
			return
		}

		team, err := store.SubmitSelfie(r.Context(), teamCode(r), req.PhotoURL)
		if err != nil {
			writeGameError(w, err)
			return
		}

		broker.Publish(TopicVerifications, Event{Type: EventNewSelfie, Team: &team})
		broker.Publish(TopicTeams, Event{Type: EventTeamUpdate, Team: &team})
		broker.Publish(teamTopic(team.Code), Event{Type: EventTeamUpdate, Team: &team})

		writeJSON(w, http.StatusOK, team)
	}
}

// handleVerify applies the operator's approve/reject decision. Approval marks
// the team active, stamps the start time once, and freezes the checkpoint
// total for progress display. Rejection clears the photo so the team can
// re-capture; progress made earlier is deliberately left untouched.
func handleVerify(store TeamStore, broker *Broker, cat *catalog.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		code := teamCode(r)
		routeLen := 0
		if req.Approve {
			current, err := store.Team(r.Context(), code)
			if err != nil {
				writeGameError(w, err)
				return
			}
			if rt, ok := cat.Current().Route(current.RouteID); ok {
				routeLen = len(rt.Checkpoints)
			}
		}

		team, err := store.DecideSelfie(r.Context(), code, req.Approve, routeLen, time.Now())
		if err != nil {
			writeGameError(w, err)
			return
		}

		if !req.Approve {
			broker.Publish(teamTopic(team.Code), Event{Type: EventSelfieRejected, Team: &team})
		}
		broker.Publish(TopicTeams, Event{Type: EventTeamUpdate, Team: &team})
		broker.Publish(teamTopic(team.Code), Event{Type: EventTeamUpdate, Team: &team})

		writeJSON(w, http.StatusOK, team)
	}
}
