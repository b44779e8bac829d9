package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trailquest/hunt/internal/database"
	"github.com/trailquest/hunt/internal/game"
	"github.com/trailquest/hunt/internal/migrations"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewSQLiteStore(db, 5*time.Second)
}

func mustCreateTeam(t *testing.T, store *SQLiteStore, code string) {
	t.Helper()
	err := store.CreateTeam(context.Background(), game.Team{
		Code:    code,
		Name:    "Night Owls",
		RouteID: "r1",
	})
	if err != nil {
		t.Fatalf("creating team %s: %v", code, err)
	}
}

func TestTeamRoundtrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	team, err := store.Team(ctx, "TEAM01")
	if err != nil {
		t.Fatalf("reading team: %v", err)
	}

	if team.Name != "Night Owls" || team.RouteID != "r1" {
		t.Errorf("unexpected team: %+v", team)
	}
	if team.CheckpointIndex != 0 {
		t.Errorf("new team: expected index 0, got %d", team.CheckpointIndex)
	}
	if team.Solved == nil || len(team.Solved) != 0 {
		t.Errorf("new team: expected empty solved log, got %v", team.Solved)
	}
	if team.Selfie.URL != "" || team.Selfie.IsVerified || team.Selfie.IsRejected {
		t.Errorf("new team: expected zero selfie state, got %+v", team.Selfie)
	}
	if team.StartedAt != nil || team.FinishedAt != nil {
		t.Errorf("new team: expected no timestamps, got %v / %v", team.StartedAt, team.FinishedAt)
	}
}

func TestTeamNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Team(context.Background(), "NOPE")
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTeams(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")
	mustCreateTeam(t, store, "TEAM02")

	teams, err := store.ListTeams(ctx)
	if err != nil {
		t.Fatalf("listing teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
}

func TestSubmitSelfiePendingGuard(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	team, err := store.SubmitSelfie(ctx, "TEAM01", "https://photos/1.jpg")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !team.Selfie.Pending() {
		t.Errorf("expected pending selfie, got %+v", team.Selfie)
	}

	// A second photo must not replace one awaiting a decision.
	_, err = store.SubmitSelfie(ctx, "TEAM01", "https://photos/2.jpg")
	if !errors.Is(err, game.ErrAlreadyPending) {
		t.Fatalf("second submit: expected ErrAlreadyPending, got %v", err)
	}

	_, err = store.SubmitSelfie(ctx, "NOPE", "https://photos/3.jpg")
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("unknown team: expected ErrNotFound, got %v", err)
	}
}

func TestDecideSelfieApprove(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	if _, err := store.SubmitSelfie(ctx, "TEAM01", "https://photos/1.jpg"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	start := time.Date(2026, 6, 13, 10, 0, 0, 0, time.UTC)
	team, err := store.DecideSelfie(ctx, "TEAM01", true, 3, start)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !team.Selfie.IsVerified {
		t.Error("expected verified selfie")
	}
	if team.StartedAt == nil || !team.StartedAt.Equal(start) {
		t.Errorf("expected start time %v, got %v", start, team.StartedAt)
	}
	if team.TotalCheckpoints != 3 {
		t.Errorf("expected 3 total checkpoints, got %d", team.TotalCheckpoints)
	}

	// Approving again must not move the start time or the frozen total.
	later := start.Add(time.Hour)
	team, err = store.DecideSelfie(ctx, "TEAM01", true, 7, later)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if !team.StartedAt.Equal(start) {
		t.Errorf("start time moved on re-approval: %v", team.StartedAt)
	}
	if team.TotalCheckpoints != 3 {
		t.Errorf("checkpoint total changed on re-approval: %d", team.TotalCheckpoints)
	}
}

func TestDecideSelfieReject(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	if _, err := store.SubmitSelfie(ctx, "TEAM01", "https://photos/1.jpg"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	team, err := store.DecideSelfie(ctx, "TEAM01", false, 0, time.Now())
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if team.Selfie.URL != "" {
		t.Errorf("expected photo cleared, got %q", team.Selfie.URL)
	}
	if !team.Selfie.IsRejected || team.Selfie.IsVerified {
		t.Errorf("expected rejected state, got %+v", team.Selfie)
	}

	// After rejection the team may submit a new photo.
	team, err = store.SubmitSelfie(ctx, "TEAM01", "https://photos/2.jpg")
	if err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
	if !team.Selfie.Pending() {
		t.Errorf("expected pending after resubmit, got %+v", team.Selfie)
	}
}

func TestDecideSelfieUnknownTeam(t *testing.T) {
	store := setupStore(t)

	_, err := store.DecideSelfie(context.Background(), "NOPE", true, 3, time.Now())
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyScanConditionalWrite(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	prev, err := store.Team(ctx, "TEAM01")
	if err != nil {
		t.Fatalf("reading team: %v", err)
	}

	updated := prev
	updated.CheckpointIndex = 1
	updated.CurrentClue = "clue-b"
	updated.Solved = []game.SolvedCheckpoint{{Name: "Plaza Fountain", Clue: "(start)"}}

	applied, err := store.ApplyScan(ctx, prev, updated)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied {
		t.Fatal("expected first apply to win")
	}

	// A write decided against the stale index must be refused.
	applied, err = store.ApplyScan(ctx, prev, updated)
	if err != nil {
		t.Fatalf("stale apply: %v", err)
	}
	if applied {
		t.Fatal("expected stale apply to be refused")
	}

	team, err := store.Team(ctx, "TEAM01")
	if err != nil {
		t.Fatalf("re-reading team: %v", err)
	}
	if team.CheckpointIndex != 1 || team.CurrentClue != "clue-b" {
		t.Errorf("unexpected state after apply: %+v", team)
	}
	if len(team.Solved) != 1 || team.Solved[0].Name != "Plaza Fountain" {
		t.Errorf("unexpected solved log: %v", team.Solved)
	}
}

func TestApplyScanPersistsFinish(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCreateTeam(t, store, "TEAM01")

	prev, err := store.Team(ctx, "TEAM01")
	if err != nil {
		t.Fatalf("reading team: %v", err)
	}

	finish := time.Date(2026, 6, 13, 15, 4, 5, 0, time.UTC)
	updated := prev
	updated.CheckpointIndex = 1
	updated.FinishedAt = &finish
	updated.Solved = []game.SolvedCheckpoint{{Name: "Plaza Fountain", Clue: "(start)"}}

	if _, err := store.ApplyScan(ctx, prev, updated); err != nil {
		t.Fatalf("apply: %v", err)
	}

	team, err := store.Team(ctx, "TEAM01")
	if err != nil {
		t.Fatalf("re-reading team: %v", err)
	}
	if team.FinishedAt == nil || !team.FinishedAt.Equal(finish) {
		t.Errorf("expected finish time %v, got %v", finish, team.FinishedAt)
	}
}

func TestOperatorSessions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateOperatorSession(ctx)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	if id == "" {
		t.Fatal("expected a session id")
	}

	ok, err := store.HasOperatorSession(ctx, id)
	if err != nil || !ok {
		t.Fatalf("expected session to exist, ok=%v err=%v", ok, err)
	}

	if err := store.DeleteOperatorSession(ctx, id); err != nil {
		t.Fatalf("deleting session: %v", err)
	}

	ok, err = store.HasOperatorSession(ctx, id)
	if err != nil {
		t.Fatalf("checking deleted session: %v", err)
	}
	if ok {
		t.Error("expected session gone after delete")
	}
}
