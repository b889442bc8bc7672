package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Mode is the tournament format.
type Mode string

const (
	ModeOneVsOne Mode = "1v1"
	ModeTwoVsTwo Mode = "2v2"
)

func (m Mode) Valid() bool {
	return m == ModeOneVsOne || m == ModeTwoVsTwo
}

// UnitSize is the number of entrants per bracket unit.
func (m Mode) UnitSize() int {
	if m == ModeTwoVsTwo {
		return 2
	}
	return 1
}

var validCapacities = map[Mode][]int{
	ModeOneVsOne: {2, 4, 8, 16, 32},
	ModeTwoVsTwo: {2, 4, 8, 16},
}

// ValidCapacities lists the sizes hosts may pick for a mode. Counted in players for 1v1 and in teams for 2v2.
func ValidCapacities(m Mode) []int {
	return slices.Clone(validCapacities[m])
}

func IsValidCapacity(m Mode, capacity int) bool {
	return slices.Contains(validCapacities[m], capacity)
}

// TournamentStatus представляет состояние турнира гильдии.
type TournamentStatus string

const (
	StatusUnconfigured TournamentStatus = "unconfigured"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
)

// Details are the cosmetic settings a host fills in when announcing a tournament.
type Details struct {
	Title     string    `json:"title"`
	Map       string    `json:"map,omitempty"`
	Abilities string    `json:"abilities,omitempty"`
	Prizes    [4]string `json:"prizes"`
}

// MatchKey addresses a match by 1-based round number and 1-based position in the round.
type MatchKey struct {
	Round int
	Index int
}

func (k MatchKey) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("r%dm%d", k.Round, k.Index)), nil
}

func (k *MatchKey) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "r%dm%d", &k.Round, &k.Index)
	return err
}

type Match struct {
	Round int  `json:"round"`
	Index int  `json:"index"`
	Home  Unit `json:"home"`
	Away  Unit `json:"away"`
}

func (m Match) Key() MatchKey {
	return MatchKey{Round: m.Round, Index: m.Index}
}

// Side returns the unit holding entrantID and its opponent.
func (m Match) Side(entrantID string) (own Unit, opponent Unit, ok bool) {
	switch {
	case m.Home.Contains(entrantID):
		return m.Home, m.Away, true
	case m.Away.Contains(entrantID):
		return m.Away, m.Home, true
	default:
		return nil, nil, false
	}
}

func (m Match) clone() Match {
	m.Home = m.Home.Clone()
	m.Away = m.Away.Clone()
	return m
}

// Tournament is the per-tenant bracket aggregate. It is only mutated inside a tenant critical section.
type Tournament struct {
	RunID    uuid.UUID `json:"run_id"`
	Mode     Mode      `json:"mode"`
	Capacity int       `json:"capacity"`
	Details  Details   `json:"details"`

	Entrants []Entrant `json:"entrants"`
	Active   bool      `json:"active"`

	Rounds     [][]Match         `json:"rounds"`
	Results    []Unit            `json:"results"`
	Eliminated []Entrant         `json:"eliminated"`
	Winners    map[MatchKey]Unit `json:"winners"`

	FillerCount int `json:"filler_count"`
}

func NewTournament() *Tournament {
	return &Tournament{
		Mode:        ModeOneVsOne,
		Winners:     make(map[MatchKey]Unit),
		FillerCount: 1,
	}
}

func (t *Tournament) Status() TournamentStatus {
	switch {
	case t.Capacity == 0:
		return StatusUnconfigured
	case t.Active:
		return StatusActive
	default:
		return StatusRegistration
	}
}

// Slots is the pool size limit in entrants.
func (t *Tournament) Slots() int {
	return t.Capacity * t.Mode.UnitSize()
}

// Filled is the registration count in the unit the capacity is expressed in.
func (t *Tournament) Filled() int {
	return len(t.Entrants) / t.Mode.UnitSize()
}

// NextFiller consumes the filler counter.
func (t *Tournament) NextFiller() Entrant {
	f := NewFiller(t.FillerCount)
	t.FillerCount++
	return f
}

// NextFillerUnit builds a unit made only of fresh fillers.
func (t *Tournament) NextFillerUnit() Unit {
	u := make(Unit, 0, t.Mode.UnitSize())
	for range t.Mode.UnitSize() {
		u = append(u, t.NextFiller())
	}
	return u
}

func (t *Tournament) IndexOf(entrantID string) int {
	for i, e := range t.Entrants {
		if e.ID == entrantID {
			return i
		}
	}
	return -1
}

func (t *Tournament) CurrentRound() []Match {
	if len(t.Rounds) == 0 {
		return nil
	}
	return t.Rounds[len(t.Rounds)-1]
}

// Clone returns a deep copy safe to hand out of the critical section.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Entrants = slices.Clone(t.Entrants)
	c.Eliminated = slices.Clone(t.Eliminated)
	c.Results = make([]Unit, len(t.Results))
	for i, u := range t.Results {
		c.Results[i] = u.Clone()
	}
	c.Rounds = make([][]Match, len(t.Rounds))
	for i, round := range t.Rounds {
		c.Rounds[i] = make([]Match, len(round))
		for j, m := range round {
			c.Rounds[i][j] = m.clone()
		}
	}
	c.Winners = make(map[MatchKey]Unit, len(t.Winners))
	for k, u := range t.Winners {
		c.Winners[k] = u.Clone()
	}
	return &c
}
