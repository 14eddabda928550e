package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/service"
	"github.com/dawudu11/burptracker/internal/storage"
)

func setupRepos(t *testing.T) *storage.Repositories {
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repos, err := storage.NewFileRepositories(
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "groups.json"),
		filepath.Join(dir, "sessions.json"),
		logger,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Closer.Close() })
	return repos
}

func TestCreateOrGetUserIdempotent(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	first, err := service.CreateOrGetUser(ctx, repos.Users, "BurpMaster")
	require.NoError(t, err)

	second, err := service.CreateOrGetUser(ctx, repos.Users, "BurpMaster")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := repos.Users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateOrGetUserRejectsBlank(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	_, err := service.CreateOrGetUser(ctx, repos.Users, "   ")
	require.Error(t, err)
	assert.True(t, internal.IsValidation(err))
}

func TestCreateGroup(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)

	assert.Len(t, group.InviteCode, 6)
	for _, c := range group.InviteCode {
		assert.NotContains(t, "O0I1", string(c))
		assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '2' && c <= '9'))
	}

	creator, err := repos.Users.GetUserByUsername(ctx, "BurpMaster")
	require.NoError(t, err)
	require.NotNil(t, creator)
	assert.Equal(t, creator.ID, group.CreatorID)
	assert.Equal(t, []string{creator.ID}, group.Members)
}

func TestCreateGroupRejectsEmptyName(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	_, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "  ", "BurpMaster")
	require.Error(t, err)
	assert.True(t, internal.IsValidation(err))
}

func TestInviteCodesUnique(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Squad", "BurpMaster")
		require.NoError(t, err)
		assert.False(t, seen[group.InviteCode], "duplicate invite code %s", group.InviteCode)
		seen[group.InviteCode] = true
	}
}

// collidingGroupRepo reports the first n saves as invite-code collisions,
// standing in for a concurrent create that won the code.
type collidingGroupRepo struct {
	storage.GroupRepository
	collisions int
}

func (r *collidingGroupRepo) SaveGroup(ctx context.Context, g *internal.Group) error {
	if r.collisions > 0 {
		r.collisions--
		return storage.ErrInviteCodeTaken
	}
	return r.GroupRepository.SaveGroup(ctx, g)
}

func TestCreateGroupRetriesOnInviteCodeCollision(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	groups := &collidingGroupRepo{GroupRepository: repos.Groups, collisions: 2}
	group, err := service.CreateGroup(ctx, repos.Users, groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)
	assert.Zero(t, groups.collisions)
	assert.Len(t, group.InviteCode, 6)

	saved, err := repos.Groups.GetGroupByInviteCode(ctx, group.InviteCode)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, group.ID, saved.ID)
}

func TestJoinGroup(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)

	user, joined, err := service.JoinGroup(ctx, repos.Users, repos.Groups, group.InviteCode, "BurpChamp")
	require.NoError(t, err)
	assert.Equal(t, "BurpChamp", user.Username)
	assert.Contains(t, joined.Members, user.ID)
	assert.Len(t, joined.Members, 2)

	// Re-joining does not duplicate membership.
	_, joined, err = service.JoinGroup(ctx, repos.Users, repos.Groups, group.InviteCode, "BurpChamp")
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)
}

func TestJoinGroupInvalidCode(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)

	_, _, err = service.JoinGroup(ctx, repos.Users, repos.Groups, "INVALID", "BurpChamp")
	require.Error(t, err)
	assert.True(t, internal.IsNotFound(err))
	assert.Contains(t, err.Error(), "invalid")

	// No membership mutated anywhere.
	unchanged, err := repos.Groups.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, unchanged.Members, 1)
}

func TestRenameGroup(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)

	renamed, err := service.RenameGroup(ctx, repos.Groups, group.ID, group.CreatorID, "Super Burp Squad")
	require.NoError(t, err)
	assert.Equal(t, "Super Burp Squad", renamed.Name)

	_, err = service.RenameGroup(ctx, repos.Groups, group.ID, "outsider", "Hijacked")
	require.Error(t, err)
	assert.True(t, internal.IsPermission(err))

	_, err = service.RenameGroup(ctx, repos.Groups, "no-such-group", group.CreatorID, "Whatever")
	require.Error(t, err)
	assert.True(t, internal.IsNotFound(err))
}

func TestRecordPersonalSessionTooShort(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	_, err := service.RecordPersonalSession(ctx, repos.Sessions, 50)
	require.Error(t, err)
	assert.True(t, internal.IsValidation(err))
	assert.Contains(t, strings.ToLower(err.Error()), "too short")

	// Rejection leaves the ledger untouched.
	count, err := repos.Sessions.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRecordPersonalSessionSums(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	durations := []int{1500, 2000, 3000, 1200}
	var stats *internal.DayStats
	for _, d := range durations {
		var err error
		stats, err = service.RecordPersonalSession(ctx, repos.Sessions, d)
		require.NoError(t, err)
	}

	assert.Equal(t, 7700, stats.TotalTime)
	assert.Equal(t, 4, stats.SessionCount)
	assert.Equal(t, 3000, stats.LongestSession)
	assert.Equal(t, 1925, stats.AverageSession)
}

func TestRecordGroupSessionChecks(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	group, err := service.CreateGroup(ctx, repos.Users, repos.Groups, "Elite Burpers", "BurpMaster")
	require.NoError(t, err)
	outsider, err := service.CreateOrGetUser(ctx, repos.Users, "Stranger")
	require.NoError(t, err)

	_, _, err = service.RecordGroupSession(ctx, repos.Users, repos.Groups, repos.Sessions, group.ID, "no-such-user", 2500, "manual")
	require.Error(t, err)
	assert.True(t, internal.IsNotFound(err))

	_, _, err = service.RecordGroupSession(ctx, repos.Users, repos.Groups, repos.Sessions, "no-such-group", group.CreatorID, 2500, "manual")
	require.Error(t, err)
	assert.True(t, internal.IsNotFound(err))

	_, _, err = service.RecordGroupSession(ctx, repos.Users, repos.Groups, repos.Sessions, group.ID, outsider.ID, 2500, "manual")
	require.Error(t, err)
	assert.True(t, internal.IsNotFound(err))

	session, stats, err := service.RecordGroupSession(ctx, repos.Users, repos.Groups, repos.Sessions, group.ID, group.CreatorID, 2500, "manual")
	require.NoError(t, err)
	assert.Equal(t, "BurpMaster", session.Username)
	assert.Equal(t, group.ID, session.GroupID)
	require.Len(t, stats.DailyLeaderboard, 1)
	assert.Equal(t, 2500, stats.DailyLeaderboard[0].LongestBurp)
}
