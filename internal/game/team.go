package game

import "time"

// Selfie is the verification sub-record of a team. The states are: no photo
// (URL empty), pending (URL set, neither flag), verified, or rejected (photo
// cleared, team may resubmit).
type Selfie struct {
	URL        string `json:"url,omitempty"`
	IsVerified bool   `json:"isVerified"`
	IsRejected bool   `json:"isRejected"`
}

// Pending reports whether a photo is on file and still awaiting a decision.
func (s Selfie) Pending() bool {
	return s.URL != "" && !s.IsVerified && !s.IsRejected
}

// SolvedCheckpoint is one entry of the append-only progress log: the
// checkpoint the team just departed paired with the clue that was active there.
type SolvedCheckpoint struct {
	Name string `json:"name"`
	Clue string `json:"clue"`
}

// Team is the durable per-team record and, marshalled as-is, the snapshot
// pushed to clients on every committed mutation.
type Team struct {
	Code             string             `json:"teamCode"`
	Name             string             `json:"teamName"`
	RouteID          string             `json:"routeId"`
	CheckpointIndex  int                `json:"checkpointIndex"`
	CurrentClue      string             `json:"currentClue,omitempty"`
	Solved           []SolvedCheckpoint `json:"solvedCheckpoints"`
	Selfie           Selfie             `json:"selfie"`
	TotalCheckpoints int                `json:"totalCheckpoints"`
	StartedAt        *time.Time         `json:"startedAt,omitempty"`
	FinishedAt       *time.Time         `json:"finishedAt,omitempty"`
}
