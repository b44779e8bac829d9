// Package game implements the team progression rules: how a scanned token is
// validated against a team's route, which clue comes next, and when a team is
// finished. The engine is pure — it describes the resulting team state and
// leaves persistence and fan-out to the caller.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/trailquest/hunt/internal/catalog"
)

// Outcome of a scan attempt.
type Outcome string

const (
	// OutcomeRejected means the token did not match the expected checkpoint.
	// No state changes.
	OutcomeRejected Outcome = "rejected"
	// OutcomeAdvanced means the team moved to the next checkpoint and got a
	// new clue.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeFinished means the scanned checkpoint was the last one.
	OutcomeFinished Outcome = "finished"
)

// firstScanEntry is logged as the "clue" for the first checkpoint, where no
// riddle had been handed out yet.
const firstScanEntry = "(start)"

// ScanResult describes the decision for one scan attempt. Team carries the
// updated record; for OutcomeRejected it is the input unchanged.
type ScanResult struct {
	Outcome        Outcome
	CheckpointName string // next checkpoint on advance
	Clue           string // clue handed out on advance
	Team           Team
}

// Engine decides scan attempts. The randomness source is injected so clue
// selection is reproducible in tests.
type Engine struct {
	rng *rand.Rand
	now func() time.Time
}

func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng, now: time.Now}
}

// NewEngineAt pins the clock, for tests.
func NewEngineAt(rng *rand.Rand, now func() time.Time) *Engine {
	return &Engine{rng: rng, now: now}
}

// AttemptScan evaluates a scanned token against the team's expected checkpoint.
//
// The persisted checkpoint index is the single source of truth: a token that
// matches some other checkpoint of the route still rejects (no skip-ahead),
// and a correct token scanned twice is judged the second time against the
// advanced index like any other scan.
func (e *Engine) AttemptScan(team Team, cat *catalog.Catalog, token string) (ScanResult, error) {
	if !team.Selfie.IsVerified {
		return ScanResult{}, ErrNotVerified
	}

	route, ok := cat.Route(team.RouteID)
	if !ok {
		return ScanResult{}, fmt.Errorf("route %q: %w", team.RouteID, ErrNotFound)
	}

	expected, ok := cat.RouteCheckpoint(route, team.CheckpointIndex)
	if !ok {
		if team.CheckpointIndex >= len(route.Checkpoints) {
			return ScanResult{}, ErrAlreadyFinished
		}
		return ScanResult{}, fmt.Errorf("checkpoint %q: %w",
			route.Checkpoints[team.CheckpointIndex], ErrNotFound)
	}

	if token != expected.ScanToken {
		return ScanResult{Outcome: OutcomeRejected, Team: team}, nil
	}

	clueShown := team.CurrentClue
	if clueShown == "" {
		clueShown = firstScanEntry
	}
	updated := team
	updated.Solved = append(append([]SolvedCheckpoint(nil), team.Solved...),
		SolvedCheckpoint{Name: expected.Name, Clue: clueShown})
	updated.CheckpointIndex = team.CheckpointIndex + 1

	if updated.CheckpointIndex >= len(route.Checkpoints) {
		finished := e.now().UTC()
		updated.FinishedAt = &finished
		updated.CurrentClue = ""
		return ScanResult{Outcome: OutcomeFinished, Team: updated}, nil
	}

	next, ok := cat.RouteCheckpoint(route, updated.CheckpointIndex)
	if !ok {
		return ScanResult{}, fmt.Errorf("checkpoint %q: %w",
			route.Checkpoints[updated.CheckpointIndex], ErrNotFound)
	}
	updated.CurrentClue = e.pickClue(next)

	return ScanResult{
		Outcome:        OutcomeAdvanced,
		CheckpointName: next.Name,
		Clue:           updated.CurrentClue,
		Team:           updated,
	}, nil
}

// pickClue selects uniformly among the checkpoint's candidate clues, falling
// back to a generic directive when it has none.
func (e *Engine) pickClue(cp catalog.Checkpoint) string {
	if len(cp.Clues) > 0 {
		return cp.Clues[e.rng.Intn(len(cp.Clues))]
	}
	return fmt.Sprintf("Make your way to %s.", cp.Name)
}
