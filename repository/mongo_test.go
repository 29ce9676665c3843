package repository_test

import (
	"context"
	"testing"
	"time"

	"atomichabits/model"
	"atomichabits/repository"
	"atomichabits/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(now time.Time) repository.Clock {
	return func() time.Time { return now }
}

func TestHabitsRepoOperations(t *testing.T) {
	client, cfg := testutils.SetupTestDB(t)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := repository.GetHabitsRepo(client, cfg, fixedClock(now))
	ctx := context.Background()
	userID := uuid.NewString()

	first := &model.Habit{
		HabitID:   uuid.NewString(),
		UserID:    userID,
		Title:     "Run",
		Frequency: model.FrequencyDaily,
		Category:  model.CategoryHealth,
		CreatedAt: now.Add(-2 * time.Hour),
		UpdatedAt: now.Add(-2 * time.Hour),
	}
	second := &model.Habit{
		HabitID:   uuid.NewString(),
		UserID:    userID,
		Title:     "Read",
		Frequency: model.FrequencyWeekly,
		Category:  model.CategoryLearning,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, repo.SaveHabit(ctx, second))
		require.NoError(t, repo.SaveHabit(ctx, first))

		habits, err := repo.LoadHabits(ctx, userID)
		require.NoError(t, err)
		require.Len(t, habits, 2)
		assert.Equal(t, first.HabitID, habits[0].HabitID)
		assert.Equal(t, second.HabitID, habits[1].HabitID)
	})

	t.Run("BulkSave", func(t *testing.T) {
		first.Completed = true
		first.Streak = 3
		require.NoError(t, repo.SaveHabits(ctx, userID, []*model.Habit{first}))

		found, err := repo.FindHabit(ctx, userID, first.HabitID)
		require.NoError(t, err)
		assert.True(t, found.Completed)
		assert.Equal(t, 3, found.Streak)
	})

	t.Run("ScopedToOwner", func(t *testing.T) {
		_, err := repo.FindHabit(ctx, uuid.NewString(), first.HabitID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Completions", func(t *testing.T) {
		for _, day := range []string{"2024-03-08", "2024-03-09", "2024-03-10"} {
			require.NoError(t, repo.SaveCompletion(ctx, &model.Completion{
				CompletionID: first.HabitID + ":" + day,
				HabitID:      first.HabitID,
				UserID:       userID,
				Day:          day,
				Completed:    true,
				RecordedAt:   now,
			}))
		}

		from, _ := model.ParseDay("2024-03-09", time.UTC)
		completions, err := repo.LoadCompletions(ctx, userID, from, now)
		require.NoError(t, err)
		assert.Len(t, completions, 2)
	})

	t.Run("Owners", func(t *testing.T) {
		ids, err := repo.UserIDsWithHabits(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, userID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteHabit(ctx, userID, first.HabitID))
		require.NoError(t, repo.DeleteCompletions(ctx, userID, first.HabitID))

		err := repo.DeleteHabit(ctx, userID, first.HabitID)
		assert.ErrorIs(t, err, model.ErrNotFound)

		completions, err := repo.LoadCompletions(ctx, userID, now.AddDate(0, 0, -30), now)
		require.NoError(t, err)
		assert.Empty(t, completions)
	})
}

func TestUserRepoOperations(t *testing.T) {
	client, cfg := testutils.SetupTestDB(t)
	repo := repository.GetUserRepo(client, cfg)
	ctx := context.Background()

	user := &model.User{
		UserID:    uuid.NewString(),
		Email:     "runner@example.com",
		FullName:  "Test Runner",
		Password:  "salt$hash",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.AddUser(ctx, user))

	dup := *user
	dup.UserID = uuid.NewString()
	assert.ErrorIs(t, repo.AddUser(ctx, &dup), repository.ErrEmailTaken)

	found, err := repo.FindUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.UserID, found.UserID)

	missing, err := repo.FindUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.SetTwoFactorSecret(ctx, user.UserID, "SECRET"))
	require.NoError(t, repo.Enable2FAWithRecoveryCodes(ctx, user.UserID, []string{"a", "b"}))
	found, err = repo.FindUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, found.TwoFactorEnabled)
	assert.Equal(t, "SECRET", found.TwoFactorSecret)
	assert.Len(t, found.RecoveryCodes, 2)

	require.NoError(t, repo.Disable2FA(ctx, user.UserID))
	found, err = repo.FindUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.False(t, found.TwoFactorEnabled)
	assert.Empty(t, found.RecoveryCodes)

	err = repo.Disable2FA(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSessionRepoOperations(t *testing.T) {
	client, cfg := testutils.SetupTestDB(t)
	repo := repository.GetSessionRepo(client, cfg)
	ctx := context.Background()
	userID := uuid.NewString()
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateSession(ctx, &model.Session{
			SessionID:      uuid.NewString(),
			UserID:         userID,
			DisplayName:    "Chrome on Linux",
			CreatedAt:      now,
			ExpiresAt:      now.Add(24 * time.Hour),
			LastActivityAt: now.Add(time.Duration(i) * time.Minute),
			IsActive:       true,
		}))
	}

	count, err := repo.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.EndLeastActiveSession(ctx, userID))
	count, err = repo.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sessions, err := repo.GetUserActiveSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].LastActivityAt.After(sessions[1].LastActivityAt))

	missing, err := repo.GetSession(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.EndAllUserSessions(ctx, userID))
	count, err = repo.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
