package demo

import (
	"testing"
	"time"

	"atomichabits/model"
	"atomichabits/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

	h1, c1 := Generate("u1", now, Options{Days: 30, Seed: 7})
	h2, c2 := Generate("u1", now, Options{Days: 30, Seed: 7})

	assert.Equal(t, h1, h2)
	assert.Equal(t, c1, c2)
}

func TestGenerateProducesConsistentHabits(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

	habits, completions := Generate("u1", now, Options{Days: 60, Seed: 1})
	require.Len(t, habits, len(templates))

	ids := make(map[string]bool)
	for _, h := range habits {
		ids[h.HabitID] = true
		assert.Equal(t, "u1", h.UserID)
		assert.True(t, h.Frequency.Valid())
		assert.True(t, h.Category.Valid())
		assert.GreaterOrEqual(t, h.Streak, 0)
		assert.False(t, h.UpdatedAt.Before(h.CreatedAt), h.Title)
		if h.IsArchived {
			assert.False(t, h.Completed, h.Title)
		}
		if h.Completed {
			require.NotNil(t, h.LastCompleted)
			assert.False(t, h.LastCompleted.After(now))
		}
	}

	for _, c := range completions {
		assert.True(t, ids[c.HabitID], "completion for unknown habit %s", c.HabitID)
		assert.Equal(t, model.CompletionID(c.HabitID, c.Day), c.CompletionID)
		assert.False(t, c.RecordedAt.After(now))
	}
}

func TestTrailingRun(t *testing.T) {
	assert.Equal(t, 0, trailingRun(nil))
	assert.Equal(t, 2, trailingRun([]bool{true, false, true, true}))
	assert.Equal(t, 2, trailingRun([]bool{true, true, false}), "open period miss is ignored")
	assert.Equal(t, 0, trailingRun([]bool{true, false, false}))
}

func TestClock(t *testing.T) {
	assert.Equal(t, 6*time.Hour+30*time.Minute, clock("06:30"))
	assert.Equal(t, 12*time.Hour, clock(""))
}

func TestOptionsGenerateServesAsSeedFunc(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)
	opts := Options{Days: 14, Seed: 3}

	var seed repository.SeedFunc = opts.Generate
	habits, completions := seed("demo", now)
	wantHabits, wantCompletions := Generate("demo", now, opts)

	assert.Equal(t, wantHabits, habits)
	assert.Equal(t, wantCompletions, completions)
}
