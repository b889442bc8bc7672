package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/google/uuid"
)

// TournamentService drives a guild's single-elimination bracket from registration to placements.
type TournamentService interface {
	Configure(ctx context.Context, tenantID string, mode models.Mode, capacity int, details models.Details) (*models.Tournament, error)
	Reset(ctx context.Context, tenantID string) error

	Register(ctx context.Context, tenantID string, player models.Entrant) (int, error)
	Unregister(ctx context.Context, tenantID string, player models.Entrant) (int, error)
	AddFillers(ctx context.Context, tenantID string, count int) (int, error)

	Start(ctx context.Context, tenantID string) (*models.Tournament, error)
	RecordWinner(ctx context.Context, tenantID string, entrantID string) (*models.MatchOutcome, error)

	Tournament(ctx context.Context, tenantID string) (*models.Tournament, error)
}

type tournamentService struct {
	store    repositories.TenantStore
	shuffler brackets.Shuffler
	logger   *slog.Logger
	now      func() time.Time
}

func NewTournamentService(store repositories.TenantStore, shuffler brackets.Shuffler, logger *slog.Logger) TournamentService {
	if shuffler == nil {
		shuffler = brackets.NewRandomShuffler()
	}
	return &tournamentService{
		store:    store,
		shuffler: shuffler,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *tournamentService) Configure(ctx context.Context, tenantID string, mode models.Mode, capacity int, details models.Details) (*models.Tournament, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	var snapshot *models.Tournament
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		if state.Tournament.Active {
			s.logger.Warn("reconfiguring an active tournament", "tenant", tenantID, "run_id", state.Tournament.RunID)
		}
		state.ResetTournament()
		t := state.Tournament
		t.Mode = mode
		t.Capacity = capacity
		t.Details = details
		snapshot = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("tournament configured", "tenant", tenantID, "mode", mode, "capacity", capacity)
	return snapshot, nil
}

func (s *tournamentService) Reset(ctx context.Context, tenantID string) error {
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		if state.Tournament.Status() == models.StatusUnconfigured {
			return ErrNotConfigured
		}
		state.ResetTournament()
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("tournament reset", "tenant", tenantID)
	return nil
}

func (s *tournamentService) Register(ctx context.Context, tenantID string, player models.Entrant) (int, error) {
	var filled int
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t := state.Tournament
		if err := requireRegistration(t); err != nil {
			return err
		}

		joining := models.Unit{player}
		if t.Mode == models.ModeTwoVsTwo {
			team, ok := state.TeamOf(player.ID)
			if !ok {
				return ErrNotInTeam
			}
			joining = team.Unit()
		}

		for _, e := range joining {
			if t.IndexOf(e.ID) >= 0 {
				return fmt.Errorf("%w: %s", ErrAlreadyRegistered, e.ID)
			}
		}
		if len(t.Entrants)+len(joining) > t.Slots() {
			return ErrFull
		}

		t.Entrants = append(t.Entrants, joining...)
		filled = t.Filled()
		return nil
	})
	return filled, err
}

func (s *tournamentService) Unregister(ctx context.Context, tenantID string, player models.Entrant) (int, error) {
	var filled int
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t := state.Tournament
		if err := requireRegistration(t); err != nil {
			return err
		}

		leaving := models.Unit{player}
		if t.Mode == models.ModeTwoVsTwo {
			if team, ok := state.TeamOf(player.ID); ok {
				leaving = team.Unit()
			}
		}

		before := len(t.Entrants)
		t.Entrants = slices.DeleteFunc(t.Entrants, func(e models.Entrant) bool {
			return !e.IsFiller() && leaving.Contains(e.ID)
		})
		if len(t.Entrants) == before {
			return ErrNotRegistered
		}
		filled = t.Filled()
		return nil
	})
	return filled, err
}

func (s *tournamentService) AddFillers(ctx context.Context, tenantID string, count int) (int, error) {
	added := 0
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t := state.Tournament
		if err := requireRegistration(t); err != nil {
			return err
		}
		for added < count && len(t.Entrants) < t.Slots() {
			t.Entrants = append(t.Entrants, t.NextFiller())
			added++
		}
		return nil
	})
	return added, err
}

func (s *tournamentService) Start(ctx context.Context, tenantID string) (*models.Tournament, error) {
	var snapshot *models.Tournament
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t := state.Tournament
		if err := requireRegistration(t); err != nil {
			return err
		}
		if len(t.Entrants) < 2 {
			return fmt.Errorf("%w: have %d", ErrInsufficientEntrants, len(t.Entrants))
		}

		units := brackets.PartitionUnits(t.Mode, t.Entrants, state.TeammateOf, t.NextFiller)
		units = brackets.PadUnits(units, t.NextFillerUnit)
		s.shuffler.Shuffle(len(units), func(i, j int) {
			units[i], units[j] = units[j], units[i]
		})

		t.Entrants = brackets.Flatten(units)
		t.Active = true
		t.RunID = uuid.New()
		t.Rounds = [][]models.Match{brackets.PairRound(1, units)}
		t.Results = nil
		t.Eliminated = nil
		t.Winners = make(map[models.MatchKey]models.Unit)

		snapshot = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament started",
		"tenant", tenantID,
		"run_id", snapshot.RunID,
		"entrants", len(snapshot.Entrants),
		"matches", len(snapshot.CurrentRound()))
	return snapshot, nil
}

func (s *tournamentService) RecordWinner(ctx context.Context, tenantID string, entrantID string) (*models.MatchOutcome, error) {
	var outcome *models.MatchOutcome
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t := state.Tournament
		if !t.Active {
			return ErrNotActive
		}

		round := t.CurrentRound()
		var (
			match         models.Match
			winner, loser models.Unit
			found         bool
		)
		for _, m := range round {
			if _, resolved := t.Winners[m.Key()]; resolved {
				continue
			}
			if winner, loser, found = m.Side(entrantID); found {
				match = m
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrNoSuchMatch, entrantID)
		}

		t.Eliminated = append(t.Eliminated, loser...)
		t.Winners[match.Key()] = winner.Clone()
		t.Results = append(t.Results, winner.Clone())

		outcome = &models.MatchOutcome{
			Kind:   models.OutcomeRoundInProgress,
			Match:  match.Key(),
			Winner: winner.Clone(),
			Loser:  loser.Clone(),
		}
		if len(t.Results) < len(round) {
			return nil
		}

		if len(round) == 1 {
			placements := brackets.ComputePlacements(winner, t.Eliminated)
			outcome.Kind = models.OutcomeTournamentCompleted
			outcome.Placements = placements
			outcome.Summary = s.summarize(tenantID, t, placements)
			state.ResetTournament()
			return nil
		}

		next := len(t.Rounds) + 1
		units := brackets.PadUnits(t.Results, t.NextFillerUnit)
		matches := brackets.PairRound(next, units)
		t.Rounds = append(t.Rounds, matches)
		t.Results = nil

		outcome.Kind = models.OutcomeRoundAdvanced
		outcome.NextRound = next
		outcome.Matches = make([]models.Match, len(matches))
		copy(outcome.Matches, matches)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch outcome.Kind {
	case models.OutcomeRoundAdvanced:
		s.logger.Info("round advanced", "tenant", tenantID, "round", outcome.NextRound, "matches", len(outcome.Matches))
	case models.OutcomeTournamentCompleted:
		s.logger.Info("tournament completed", "tenant", tenantID, "run_id", outcome.Summary.RunID, "winner", outcome.Winner.DisplayName())
	}
	return outcome, nil
}

// summarize captures the finished bracket before the tenant's tournament is replaced.
func (s *tournamentService) summarize(tenantID string, t *models.Tournament, placements []models.Placement) *models.CompletedTournament {
	snapshot := t.Clone()
	return &models.CompletedTournament{
		RunID:       t.RunID,
		TenantID:    tenantID,
		Mode:        t.Mode,
		Details:     t.Details,
		Rounds:      snapshot.Rounds,
		RoundCount:  len(t.Rounds),
		Placements:  placements,
		CompletedAt: s.now().UTC(),
	}
}

func (s *tournamentService) Tournament(ctx context.Context, tenantID string) (*models.Tournament, error) {
	var snapshot *models.Tournament
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		snapshot = state.Tournament.Clone()
		return nil
	})
	return snapshot, err
}

// requireRegistration checks the tournament is configured and still accepting entrants.
func requireRegistration(t *models.Tournament) error {
	switch t.Status() {
	case models.StatusUnconfigured:
		return ErrNotConfigured
	case models.StatusActive:
		return ErrAlreadyActive
	}
	return nil
}
