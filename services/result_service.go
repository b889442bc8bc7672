package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Broadcaster pushes an event to every viewer of a guild's bracket.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event brackets.Event)
}

// ResultService reacts to engine results: live feed, announcements and the completion archive.
type ResultService interface {
	PublishStart(ctx context.Context, tenantID string, t *models.Tournament) error
	PublishOutcome(ctx context.Context, tenantID string, outcome *models.MatchOutcome) error

	History(ctx context.Context, tenantID string, winnerID string, limit int) ([]*models.CompletedTournament, error)
	Get(ctx context.Context, runID uuid.UUID) (*models.CompletedTournament, error)
	Delete(ctx context.Context, tenantID string, runID uuid.UUID) error
	PruneHistory(ctx context.Context, before time.Time) (int64, error)
}

type resultService struct {
	repo        repositories.ResultRepository
	uploader    storage.FileUploader
	announcer   Announcer
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewResultService wires the publication targets. uploader and announcer may be nil when not configured.
func NewResultService(
	repo repositories.ResultRepository,
	uploader storage.FileUploader,
	announcer Announcer,
	broadcaster Broadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		repo:        repo,
		uploader:    uploader,
		announcer:   announcer,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *resultService) PublishStart(ctx context.Context, tenantID string, t *models.Tournament) error {
	s.broadcast(tenantID, brackets.EventTournamentStarted, t)
	return s.announce(ctx, tenantID, FormatStart(t))
}

func (s *resultService) PublishOutcome(ctx context.Context, tenantID string, outcome *models.MatchOutcome) error {
	switch outcome.Kind {
	case models.OutcomeRoundInProgress:
		s.broadcast(tenantID, brackets.EventMatchResolved, outcome)
		return nil
	case models.OutcomeRoundAdvanced:
		s.broadcast(tenantID, brackets.EventRoundAdvanced, outcome)
		return s.announce(ctx, tenantID, FormatOutcome(outcome))
	case models.OutcomeTournamentCompleted:
	default:
		return fmt.Errorf("unknown outcome kind %q", outcome.Kind)
	}

	if outcome.Summary == nil {
		return fmt.Errorf("completed outcome for tenant %s carries no summary", tenantID)
	}

	// Архив и объявление независимы: ошибка одного не отменяет другое.
	var g errgroup.Group
	g.Go(func() error {
		return s.archive(ctx, outcome.Summary)
	})
	g.Go(func() error {
		return s.announce(ctx, tenantID, FormatOutcome(outcome))
	})
	err := g.Wait()

	s.broadcast(tenantID, brackets.EventTournamentCompleted, outcome)
	return err
}

func (s *resultService) archive(ctx context.Context, summary *models.CompletedTournament) error {
	if s.uploader != nil {
		doc, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to encode tournament %s: %w", summary.RunID, err)
		}
		key := storage.ResultKey(summary.TenantID, summary.RunID.String())
		uploaded, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(doc))
		if err != nil {
			return fmt.Errorf("failed to archive bracket of tournament %s: %w", summary.RunID, err)
		}
		if uploaded.Location != "" {
			location := uploaded.Location
			summary.ArchiveURL = &location
		}
	}

	if err := s.repo.Create(ctx, summary); err != nil {
		return fmt.Errorf("failed to store result of tournament %s: %w", summary.RunID, err)
	}
	s.logger.Info("tournament result archived", "tenant", summary.TenantID, "run_id", summary.RunID)
	return nil
}

func (s *resultService) announce(ctx context.Context, tenantID, message string) error {
	if s.announcer == nil {
		return nil
	}
	return s.announcer.Announce(ctx, tenantID, message)
}

func (s *resultService) broadcast(tenantID, eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(tenantID, brackets.Event{
		Type:    eventType,
		Payload: payload,
		RoomID:  tenantID,
	})
}

func (s *resultService) History(ctx context.Context, tenantID string, winnerID string, limit int) ([]*models.CompletedTournament, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.ListByTenant(ctx, tenantID, winnerID, limit)
}

func (s *resultService) Get(ctx context.Context, runID uuid.UUID) (*models.CompletedTournament, error) {
	return s.repo.GetByRunID(ctx, runID)
}

// Delete removes the archived row and, when an object store is configured, its document.
func (s *resultService) Delete(ctx context.Context, tenantID string, runID uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, runID); err != nil {
		return err
	}
	if s.uploader == nil {
		return nil
	}
	if err := s.uploader.Delete(ctx, storage.ResultKey(tenantID, runID.String())); err != nil {
		s.logger.Warn("archived document left behind", "tenant", tenantID, "run_id", runID, "error", err)
	}
	return nil
}

func (s *resultService) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := s.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune results before %s: %w", before.Format(time.RFC3339), err)
	}
	return deleted, nil
}

// FormatStart renders the round 1 pairings of a freshly started tournament.
func FormatStart(t *models.Tournament) string {
	var sb strings.Builder
	title := t.Details.Title
	if title == "" {
		title = "Tournament"
	}
	fmt.Fprintf(&sb, "**%s** (%s) has started!\n", title, t.Mode)
	if t.Details.Map != "" {
		fmt.Fprintf(&sb, "Map: %s\n", t.Details.Map)
	}
	if t.Details.Abilities != "" {
		fmt.Fprintf(&sb, "Abilities: %s\n", t.Details.Abilities)
	}
	writeMatches(&sb, 1, t.CurrentRound())
	return sb.String()
}

// FormatOutcome renders a round advance or the final podium.
func FormatOutcome(outcome *models.MatchOutcome) string {
	var sb strings.Builder
	switch outcome.Kind {
	case models.OutcomeRoundAdvanced:
		fmt.Fprintf(&sb, "%s advances.\n", outcome.Winner.DisplayName())
		writeMatches(&sb, outcome.NextRound, outcome.Matches)
	case models.OutcomeTournamentCompleted:
		title := "Tournament"
		var prizes [4]string
		if outcome.Summary != nil {
			if outcome.Summary.Details.Title != "" {
				title = outcome.Summary.Details.Title
			}
			prizes = outcome.Summary.Details.Prizes
		}
		fmt.Fprintf(&sb, "**%s** is over!\n", title)
		for _, p := range outcome.Placements {
			fmt.Fprintf(&sb, "%s %s", placeLabel(p.Place), p.Entrants.DisplayName())
			if prize := prizes[p.Place-1]; prize != "" {
				fmt.Fprintf(&sb, " (%s)", prize)
			}
			sb.WriteString("\n")
		}
	default:
		fmt.Fprintf(&sb, "%s wins match %d of round %d.\n", outcome.Winner.DisplayName(), outcome.Match.Index, outcome.Match.Round)
	}
	return sb.String()
}

func writeMatches(sb *strings.Builder, round int, matches []models.Match) {
	fmt.Fprintf(sb, "Round %d:\n", round)
	for _, m := range matches {
		fmt.Fprintf(sb, "%d. %s vs %s\n", m.Index, m.Home.DisplayName(), m.Away.DisplayName())
	}
}

func placeLabel(place int) string {
	switch place {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", place)
	}
}
