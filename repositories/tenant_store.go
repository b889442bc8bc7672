package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/bracket-engine/models"
)

// TenantState is everything one guild owns: its tournament, teams, pending invitations and host roster.
// It must only be touched inside TenantStore.WithTenant.
type TenantState struct {
	TenantID    string
	Tournament  *models.Tournament
	Teams       map[string]*models.Team
	PlayerTeams map[string]string              // player id -> team id
	Invitations map[string][]models.Invitation // invitee id -> pending, oldest first
	Hosts       models.HostRoster

	teamSeq int
}

func newTenantState(tenantID string) *TenantState {
	return &TenantState{
		TenantID:    tenantID,
		Tournament:  models.NewTournament(),
		Teams:       make(map[string]*models.Team),
		PlayerTeams: make(map[string]string),
		Invitations: make(map[string][]models.Invitation),
	}
}

// ResetTournament replaces the tournament with a fresh default value.
func (s *TenantState) ResetTournament() {
	s.Tournament = models.NewTournament()
}

func (s *TenantState) NextTeamID() string {
	s.teamSeq++
	return fmt.Sprintf("team_%d_%s", s.teamSeq, s.TenantID)
}

func (s *TenantState) TeamOf(playerID string) (*models.Team, bool) {
	teamID, ok := s.PlayerTeams[playerID]
	if !ok {
		return nil, false
	}
	team, ok := s.Teams[teamID]
	return team, ok
}

func (s *TenantState) TeammateOf(playerID string) (models.Entrant, bool) {
	team, ok := s.TeamOf(playerID)
	if !ok {
		return models.Entrant{}, false
	}
	return team.Teammate(playerID)
}

// TenantStore owns the per-tenant state and serializes access to it.
type TenantStore interface {
	// WithTenant runs fn while holding the tenant's lock. State is created lazily.
	// fn must not block on I/O.
	WithTenant(ctx context.Context, tenantID string, fn func(state *TenantState) error) error

	// Tenants lists the ids of every tenant that has state.
	Tenants() []string
}

type tenantSlot struct {
	mu    sync.Mutex
	state *TenantState
}

type memoryTenantStore struct {
	mu      sync.Mutex
	tenants map[string]*tenantSlot
}

// NewMemoryTenantStore keeps state in process memory; nothing survives a restart.
func NewMemoryTenantStore() TenantStore {
	return &memoryTenantStore{tenants: make(map[string]*tenantSlot)}
}

func (s *memoryTenantStore) slot(tenantID string) *tenantSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.tenants[tenantID]
	if !ok {
		slot = &tenantSlot{state: newTenantState(tenantID)}
		s.tenants[tenantID] = slot
	}
	return slot
}

func (s *memoryTenantStore) WithTenant(ctx context.Context, tenantID string, fn func(state *TenantState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot := s.slot(tenantID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return fn(slot.state)
}

func (s *memoryTenantStore) Tenants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
