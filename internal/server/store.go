package server

import (
	"context"
	"time"

	"github.com/trailquest/hunt/internal/game"
)

// TeamStore is the durable team record store. Every mutation is a single
// atomic update; ApplyScan is additionally conditional on the checkpoint index
// the decision was made against, so concurrent scans for one team serialize
// and the loser re-reads before deciding again.
type TeamStore interface {
	Team(ctx context.Context, code string) (game.Team, error)
	ListTeams(ctx context.Context) ([]game.Team, error)
	CreateTeam(ctx context.Context, t game.Team) error

	// SubmitSelfie stores a photo reference unless one is already pending.
	SubmitSelfie(ctx context.Context, code, photoURL string) (game.Team, error)
	// DecideSelfie applies the operator decision. On approval it also sets
	// the start time if unset and freezes the total checkpoint count from
	// routeLen if not already frozen.
	DecideSelfie(ctx context.Context, code string, approve bool, routeLen int, now time.Time) (game.Team, error)
	// ApplyScan writes the engine's decision if the record still holds the
	// index it was decided against. Returns false on conflict, with no change.
	ApplyScan(ctx context.Context, prev, updated game.Team) (bool, error)
}

// OperatorSessions persists operator console logins.
type OperatorSessions interface {
	CreateOperatorSession(ctx context.Context) (string, error)
	DeleteOperatorSession(ctx context.Context, id string) error
	HasOperatorSession(ctx context.Context, id string) (bool, error)
}
