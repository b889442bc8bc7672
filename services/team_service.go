package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

type TeamService interface {
	Invite(ctx context.Context, tenantID string, inviter, invitee models.Entrant) error
	Accept(ctx context.Context, tenantID string, inviterID string, invitee models.Entrant) (*models.Team, error)
	Decline(ctx context.Context, tenantID string, inviterID, inviteeID string) error
	// Leave dissolves the player's team and returns the freed teammate.
	Leave(ctx context.Context, tenantID string, playerID string) (*models.Entrant, error)
	TeammateOf(ctx context.Context, tenantID string, playerID string) (*models.Entrant, error)
	TeamOf(ctx context.Context, tenantID string, playerID string) (*models.Team, error)
	PendingInvitations(ctx context.Context, tenantID string, inviteeID string) ([]models.Invitation, error)
	// PruneInvitations drops invitations sent before the cutoff across all tenants.
	PruneInvitations(ctx context.Context, before time.Time) (int, error)
}

type teamService struct {
	store repositories.TenantStore
	now   func() time.Time
}

func NewTeamService(store repositories.TenantStore) TeamService {
	return &teamService{store: store, now: time.Now}
}

func (s *teamService) Invite(ctx context.Context, tenantID string, inviter, invitee models.Entrant) error {
	if inviter.ID == invitee.ID {
		return ErrSelfInvite
	}
	return s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		if _, ok := state.TeamOf(inviter.ID); ok {
			return fmt.Errorf("%w: inviter %s", ErrAlreadyTeamed, inviter.ID)
		}
		if _, ok := state.TeamOf(invitee.ID); ok {
			return fmt.Errorf("%w: invitee %s", ErrAlreadyTeamed, invitee.ID)
		}
		pending := state.Invitations[invitee.ID]
		if findInvitation(pending, inviter.ID) >= 0 {
			return ErrDuplicateInvitation
		}
		state.Invitations[invitee.ID] = append(pending, models.Invitation{
			Inviter: inviter,
			Invitee: invitee,
			SentAt:  s.now(),
		})
		return nil
	})
}

func (s *teamService) Accept(ctx context.Context, tenantID string, inviterID string, invitee models.Entrant) (*models.Team, error) {
	var team *models.Team
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		// Either side may have joined another team since the invitation was sent.
		if _, ok := state.TeamOf(inviterID); ok {
			return fmt.Errorf("%w: inviter %s", ErrAlreadyTeamed, inviterID)
		}
		if _, ok := state.TeamOf(invitee.ID); ok {
			return fmt.Errorf("%w: invitee %s", ErrAlreadyTeamed, invitee.ID)
		}

		pending := state.Invitations[invitee.ID]
		idx := findInvitation(pending, inviterID)
		if idx < 0 {
			return ErrInvitationNotFound
		}
		invitation := pending[idx]

		team = &models.Team{
			ID:        state.NextTeamID(),
			Members:   [2]models.Entrant{invitation.Inviter, invitee},
			CreatedAt: s.now(),
		}
		state.Teams[team.ID] = team
		state.PlayerTeams[inviterID] = team.ID
		state.PlayerTeams[invitee.ID] = team.ID
		removeInvitation(state, invitee.ID, idx)

		copied := *team
		team = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) Decline(ctx context.Context, tenantID string, inviterID, inviteeID string) error {
	return s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		if idx := findInvitation(state.Invitations[inviteeID], inviterID); idx >= 0 {
			removeInvitation(state, inviteeID, idx)
		}
		return nil
	})
}

func (s *teamService) Leave(ctx context.Context, tenantID string, playerID string) (*models.Entrant, error) {
	var freed *models.Entrant
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		team, ok := state.TeamOf(playerID)
		if !ok {
			return ErrNotInTeam
		}
		if mate, ok := team.Teammate(playerID); ok {
			freed = &mate
		}
		for _, m := range team.Members {
			delete(state.PlayerTeams, m.ID)
		}
		delete(state.Teams, team.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freed, nil
}

func (s *teamService) TeammateOf(ctx context.Context, tenantID string, playerID string) (*models.Entrant, error) {
	var mate *models.Entrant
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		if e, ok := state.TeammateOf(playerID); ok {
			mate = &e
		}
		return nil
	})
	return mate, err
}

func (s *teamService) TeamOf(ctx context.Context, tenantID string, playerID string) (*models.Team, error) {
	var team models.Team
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		t, ok := state.TeamOf(playerID)
		if !ok {
			return ErrNotInTeam
		}
		team = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *teamService) PendingInvitations(ctx context.Context, tenantID string, inviteeID string) ([]models.Invitation, error) {
	var pending []models.Invitation
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		pending = slices.Clone(state.Invitations[inviteeID])
		return nil
	})
	if pending == nil {
		pending = []models.Invitation{}
	}
	return pending, err
}

func (s *teamService) PruneInvitations(ctx context.Context, before time.Time) (int, error) {
	pruned := 0
	for _, tenantID := range s.store.Tenants() {
		err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
			for inviteeID, pending := range state.Invitations {
				kept := slices.DeleteFunc(pending, func(inv models.Invitation) bool {
					return inv.SentAt.Before(before)
				})
				pruned += len(pending) - len(kept)
				if len(kept) == 0 {
					delete(state.Invitations, inviteeID)
				} else {
					state.Invitations[inviteeID] = kept
				}
			}
			return nil
		})
		if err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}

func findInvitation(pending []models.Invitation, inviterID string) int {
	return slices.IndexFunc(pending, func(inv models.Invitation) bool {
		return inv.Inviter.ID == inviterID
	})
}

func removeInvitation(state *repositories.TenantState, inviteeID string, idx int) {
	pending := slices.Delete(state.Invitations[inviteeID], idx, idx+1)
	if len(pending) == 0 {
		delete(state.Invitations, inviteeID)
		return
	}
	state.Invitations[inviteeID] = pending
}
