package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// HostService ведёт список ведущих (хостов) гильдии.
type HostService interface {
	Open(ctx context.Context, tenantID string, capacity int) error
	Register(ctx context.Context, tenantID string, host models.Entrant) (int, error)
	Unregister(ctx context.Context, tenantID string, hostID string) (int, error)
	Hosts(ctx context.Context, tenantID string) (models.HostRoster, error)
}

type hostService struct {
	store repositories.TenantStore
}

func NewHostService(store repositories.TenantStore) HostService {
	return &hostService{store: store}
}

// Open starts a fresh roster; previous hosts are dropped.
func (s *hostService) Open(ctx context.Context, tenantID string, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		state.Hosts = models.HostRoster{Open: true, Capacity: capacity}
		return nil
	})
}

func (s *hostService) Register(ctx context.Context, tenantID string, host models.Entrant) (int, error) {
	var count int
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		roster := &state.Hosts
		if !roster.Open {
			return ErrHostRegistrationClosed
		}
		if roster.IndexOf(host.ID) >= 0 {
			return ErrAlreadyRegistered
		}
		if len(roster.Hosts) >= roster.Capacity {
			return ErrFull
		}
		roster.Hosts = append(roster.Hosts, host)
		count = len(roster.Hosts)
		return nil
	})
	return count, err
}

func (s *hostService) Unregister(ctx context.Context, tenantID string, hostID string) (int, error) {
	var count int
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		roster := &state.Hosts
		if !roster.Open {
			return ErrHostRegistrationClosed
		}
		idx := roster.IndexOf(hostID)
		if idx < 0 {
			return ErrNotRegistered
		}
		roster.Hosts = slices.Delete(roster.Hosts, idx, idx+1)
		count = len(roster.Hosts)
		return nil
	})
	return count, err
}

func (s *hostService) Hosts(ctx context.Context, tenantID string) (models.HostRoster, error) {
	var roster models.HostRoster
	err := s.store.WithTenant(ctx, tenantID, func(state *repositories.TenantState) error {
		roster = state.Hosts
		roster.Hosts = slices.Clone(state.Hosts.Hosts)
		return nil
	})
	if roster.Hosts == nil {
		roster.Hosts = []models.Entrant{}
	}
	return roster, err
}
