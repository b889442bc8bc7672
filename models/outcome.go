package models

import (
	"time"

	"github.com/google/uuid"
)

type OutcomeKind string

const (
	OutcomeRoundInProgress     OutcomeKind = "round_in_progress"
	OutcomeRoundAdvanced       OutcomeKind = "round_advanced"
	OutcomeTournamentCompleted OutcomeKind = "tournament_completed"
)

// Placement is one podium slot. In 2v2 the first place holds the whole winning team.
type Placement struct {
	Place    int  `json:"place"`
	Entrants Unit `json:"entrants"`
}

// MatchOutcome is what recording a winner produced.
type MatchOutcome struct {
	Kind   OutcomeKind `json:"kind"`
	Match  MatchKey    `json:"match"`
	Winner Unit        `json:"winner"`
	Loser  Unit        `json:"loser"`

	// Set for OutcomeRoundAdvanced.
	NextRound int     `json:"next_round,omitempty"`
	Matches   []Match `json:"matches,omitempty"`

	// Set for OutcomeTournamentCompleted.
	Placements []Placement          `json:"placements,omitempty"`
	Summary    *CompletedTournament `json:"summary,omitempty"`
}

// CompletedTournament is the archived record of a finished bracket.
type CompletedTournament struct {
	RunID       uuid.UUID   `json:"run_id" db:"run_id"`
	TenantID    string      `json:"tenant_id" db:"tenant_id"`
	Mode        Mode        `json:"mode" db:"mode"`
	Details     Details     `json:"details" db:"details"`
	Rounds      [][]Match   `json:"rounds,omitempty" db:"-"`
	RoundCount  int         `json:"round_count" db:"round_count"`
	Placements  []Placement `json:"placements" db:"placements"`
	ArchiveURL  *string     `json:"archive_url,omitempty" db:"archive_url"`
	CompletedAt time.Time   `json:"completed_at" db:"completed_at"`
}

// WinnerIDs lists the ids of the first place holders.
func (c *CompletedTournament) WinnerIDs() []string {
	ids := make([]string, 0, 2)
	for _, p := range c.Placements {
		if p.Place != 1 {
			continue
		}
		for _, e := range p.Entrants {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
