package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeams(now *time.Time) *teamService {
	svc := NewTeamService(repositories.NewMemoryTenantStore()).(*teamService)
	if now != nil {
		svc.now = func() time.Time { return *now }
	}
	return svc
}

func TestInvitationScenario(t *testing.T) {
	svc := newTeams(nil)
	ctx := context.Background()
	a, b, c := player("a"), player("b"), player("c")

	require.NoError(t, svc.Invite(ctx, guild, a, b))
	assert.ErrorIs(t, svc.Invite(ctx, guild, a, b), ErrDuplicateInvitation)

	team, err := svc.Accept(ctx, guild, "a", b)
	require.NoError(t, err)
	assert.Equal(t, "team_1_"+guild, team.ID)
	assert.Equal(t, a, team.Members[0])
	assert.Equal(t, b, team.Members[1])

	mate, err := svc.TeammateOf(ctx, guild, "b")
	require.NoError(t, err)
	require.NotNil(t, mate)
	assert.Equal(t, a, *mate)

	_, err = svc.Accept(ctx, guild, "a", b)
	assert.ErrorIs(t, err, ErrAlreadyTeamed)

	assert.ErrorIs(t, svc.Invite(ctx, guild, c, a), ErrAlreadyTeamed)
	assert.ErrorIs(t, svc.Invite(ctx, guild, a, c), ErrAlreadyTeamed)

	pending, err := svc.PendingInvitations(ctx, guild, "b")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInviteSelf(t *testing.T) {
	svc := newTeams(nil)
	assert.ErrorIs(t, svc.Invite(context.Background(), guild, player("a"), player("a")), ErrSelfInvite)
}

func TestAcceptWithoutInvitation(t *testing.T) {
	svc := newTeams(nil)
	_, err := svc.Accept(context.Background(), guild, "a", player("b"))
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestAcceptAfterInviterTeamedElsewhere(t *testing.T) {
	svc := newTeams(nil)
	ctx := context.Background()

	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("b")))
	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("c")))
	_, err := svc.Accept(ctx, guild, "a", player("c"))
	require.NoError(t, err)

	_, err = svc.Accept(ctx, guild, "a", player("b"))
	assert.ErrorIs(t, err, ErrAlreadyTeamed)
}

func TestDeclineIsIdempotent(t *testing.T) {
	svc := newTeams(nil)
	ctx := context.Background()

	require.NoError(t, svc.Decline(ctx, guild, "a", "b"))

	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("b")))
	require.NoError(t, svc.Invite(ctx, guild, player("c"), player("b")))
	require.NoError(t, svc.Decline(ctx, guild, "a", "b"))
	require.NoError(t, svc.Decline(ctx, guild, "a", "b"))

	pending, err := svc.PendingInvitations(ctx, guild, "b")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].Inviter.ID)

	_, err = svc.Accept(ctx, guild, "a", player("b"))
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestLeave(t *testing.T) {
	svc := newTeams(nil)
	ctx := context.Background()

	_, err := svc.Leave(ctx, guild, "a")
	assert.ErrorIs(t, err, ErrNotInTeam)

	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("b")))
	_, err = svc.Accept(ctx, guild, "a", player("b"))
	require.NoError(t, err)

	freed, err := svc.Leave(ctx, guild, "b")
	require.NoError(t, err)
	require.NotNil(t, freed)
	assert.Equal(t, "a", freed.ID)

	mate, err := svc.TeammateOf(ctx, guild, "a")
	require.NoError(t, err)
	assert.Nil(t, mate)
	_, err = svc.TeamOf(ctx, guild, "a")
	assert.ErrorIs(t, err, ErrNotInTeam)

	// Both are free to team up again.
	require.NoError(t, svc.Invite(ctx, guild, player("b"), player("a")))
	team, err := svc.Accept(ctx, guild, "b", player("a"))
	require.NoError(t, err)
	assert.Equal(t, "team_2_"+guild, team.ID)
}

func TestTeamsAreScopedPerGuild(t *testing.T) {
	svc := newTeams(nil)
	ctx := context.Background()

	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("b")))
	_, err := svc.Accept(ctx, "guild-2", "a", player("b"))
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestPruneInvitations(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	svc := newTeams(&now)
	ctx := context.Background()

	require.NoError(t, svc.Invite(ctx, guild, player("a"), player("b")))
	require.NoError(t, svc.Invite(ctx, "guild-2", player("c"), player("d")))
	now = now.Add(4 * time.Minute)
	require.NoError(t, svc.Invite(ctx, guild, player("e"), player("b")))
	now = now.Add(2 * time.Minute)

	pruned, err := svc.PruneInvitations(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	pending, err := svc.PendingInvitations(ctx, guild, "b")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e", pending[0].Inviter.ID)

	pending, err = svc.PendingInvitations(ctx, "guild-2", "d")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
