package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trailquest/hunt/internal/game"
)

const teamColumns = `code, name, route_id, checkpoint_index, current_clue, solved_log,
	selfie_url, selfie_verified, selfie_rejected, total_checkpoints, started_at, finished_at`

// SQLiteStore implements TeamStore and OperatorSessions on a libSQL database.
// Every call runs under its own deadline; a blown deadline surfaces as
// game.ErrStoreUnavailable so callers can distinguish transient failures.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteStore(db *sql.DB, timeout time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, timeout: timeout}
}

func (s *SQLiteStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeErr maps timeouts and cancellations onto the transient failure class.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (game.Team, error) {
	var (
		t                   game.Team
		solvedJSON          string
		verified, rejected  int
		startedAt, finished sql.NullString
	)
	err := row.Scan(&t.Code, &t.Name, &t.RouteID, &t.CheckpointIndex, &t.CurrentClue,
		&solvedJSON, &t.Selfie.URL, &verified, &rejected, &t.TotalCheckpoints,
		&startedAt, &finished)
	if err != nil {
		return t, err
	}
	t.Selfie.IsVerified = verified == 1
	t.Selfie.IsRejected = rejected == 1
	if err := json.Unmarshal([]byte(solvedJSON), &t.Solved); err != nil {
		return t, fmt.Errorf("decoding solved log for %s: %w", t.Code, err)
	}
	if t.Solved == nil {
		t.Solved = []game.SolvedCheckpoint{}
	}
	if ts, err := parseTime(startedAt); err == nil {
		t.StartedAt = ts
	}
	if ts, err := parseTime(finished); err == nil {
		t.FinishedAt = ts
	}
	return t, nil
}

func parseTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *SQLiteStore) Team(ctx context.Context, code string) (game.Team, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE code = ?`, code)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, game.ErrNotFound
	}
	return t, storeErr(err)
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]game.Team, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams ORDER BY created_at, code`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	teams := []game.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		teams = append(teams, t)
	}
	return teams, storeErr(rows.Err())
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, t game.Team) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (code, name, route_id)
		VALUES (?, ?, ?)
	`, t.Code, t.Name, t.RouteID)
	return storeErr(err)
}

func (s *SQLiteStore) SubmitSelfie(ctx context.Context, code, photoURL string) (game.Team, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// The guard rejects the write while an earlier photo is still pending,
	// even when two submissions race.
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams
		SET selfie_url = ?, selfie_verified = 0, selfie_rejected = 0
		WHERE code = ?
		  AND NOT (selfie_url != '' AND selfie_verified = 0 AND selfie_rejected = 0)
	`, photoURL, code)
	if err != nil {
		return game.Team{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return game.Team{}, storeErr(err)
	}
	if n == 0 {
		t, err := s.Team(ctx, code)
		if err != nil {
			return game.Team{}, err
		}
		if t.Selfie.Pending() {
			return game.Team{}, game.ErrAlreadyPending
		}
		return game.Team{}, fmt.Errorf("selfie submit for %s not applied", code)
	}
	return s.Team(ctx, code)
}

func (s *SQLiteStore) DecideSelfie(ctx context.Context, code string, approve bool, routeLen int, now time.Time) (game.Team, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var res sql.Result
	var err error
	if approve {
		res, err = s.db.ExecContext(ctx, `
			UPDATE teams
			SET selfie_verified = 1, selfie_rejected = 0,
			    started_at = COALESCE(started_at, ?),
			    total_checkpoints = CASE WHEN total_checkpoints = 0 THEN ? ELSE total_checkpoints END
			WHERE code = ?
		`, now.UTC().Format(time.RFC3339Nano), routeLen, code)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE teams
			SET selfie_url = '', selfie_verified = 0, selfie_rejected = 1
			WHERE code = ?
		`, code)
	}
	if err != nil {
		return game.Team{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return game.Team{}, storeErr(err)
	}
	if n == 0 {
		return game.Team{}, game.ErrNotFound
	}
	return s.Team(ctx, code)
}

func (s *SQLiteStore) ApplyScan(ctx context.Context, prev, updated game.Team) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	solvedJSON, err := json.Marshal(updated.Solved)
	if err != nil {
		return false, fmt.Errorf("encoding solved log: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE teams
		SET checkpoint_index = ?, current_clue = ?, solved_log = ?, finished_at = ?
		WHERE code = ? AND checkpoint_index = ?
	`, updated.CheckpointIndex, updated.CurrentClue, string(solvedJSON),
		formatTime(updated.FinishedAt), prev.Code, prev.CheckpointIndex)
	if err != nil {
		return false, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) CreateOperatorSession(ctx context.Context) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO operator_sessions DEFAULT VALUES
		RETURNING id
	`).Scan(&id)
	return id, storeErr(err)
}

func (s *SQLiteStore) DeleteOperatorSession(ctx context.Context, id string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM operator_sessions WHERE id = ?`, id)
	return storeErr(err)
}

func (s *SQLiteStore) HasOperatorSession(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM operator_sessions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, storeErr(err)
}
