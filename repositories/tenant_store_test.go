package repositories

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTenantCreatesStateLazily(t *testing.T) {
	store := NewMemoryTenantStore()
	assert.Empty(t, store.Tenants())

	err := store.WithTenant(context.Background(), "g1", func(state *TenantState) error {
		assert.Equal(t, "g1", state.TenantID)
		assert.Equal(t, models.StatusUnconfigured, state.Tournament.Status())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, store.Tenants())
}

func TestWithTenantPropagatesError(t *testing.T) {
	store := NewMemoryTenantStore()
	boom := errors.New("boom")

	err := store.WithTenant(context.Background(), "g1", func(*TenantState) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWithTenantCancelledContext(t *testing.T) {
	store := NewMemoryTenantStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithTenant(ctx, "g1", func(*TenantState) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithTenantSerializesPerTenant(t *testing.T) {
	store := NewMemoryTenantStore()
	const workers = 50

	var wg sync.WaitGroup
	for i := range workers {
		for _, tenant := range []string{"g1", "g2"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.WithTenant(context.Background(), tenant, func(state *TenantState) error {
					t := state.Tournament
					t.Entrants = append(t.Entrants, models.NewPlayer(strconv.Itoa(i), "p"))
					return nil
				})
			}()
		}
	}
	wg.Wait()

	for _, tenant := range []string{"g1", "g2"} {
		_ = store.WithTenant(context.Background(), tenant, func(state *TenantState) error {
			assert.Len(t, state.Tournament.Entrants, workers)
			return nil
		})
	}
	assert.Equal(t, []string{"g1", "g2"}, store.Tenants())
}

func TestNextTeamID(t *testing.T) {
	state := newTenantState("g7")

	assert.Equal(t, "team_1_g7", state.NextTeamID())
	assert.Equal(t, "team_2_g7", state.NextTeamID())
}

func TestResetTournamentReplacesValue(t *testing.T) {
	state := newTenantState("g1")
	old := state.Tournament
	old.Capacity = 4
	old.FillerCount = 9

	state.ResetTournament()

	assert.NotSame(t, old, state.Tournament)
	assert.Equal(t, 0, state.Tournament.Capacity)
	assert.Equal(t, 1, state.Tournament.FillerCount)
}
