package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"atomichabits/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	cfg := &config.Config{
		DemoMode:   true,
		Location:   time.UTC,
		LocalStore: config.LocalStoreConfig{Path: filepath.Join(t.TempDir(), "habits.db")},
	}
	app, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestSeedThenStats(t *testing.T) {
	app := newTestContext(t)

	require.NoError(t, (&SeedCmd{User: "alice", Days: 30, Seed: 7}).Run(app))

	habits, err := app.Store.LoadHabits(app.Ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, habits)

	from := app.Store.Now().AddDate(0, 0, -29)
	completions, err := app.Store.LoadCompletions(app.Ctx, "alice", from, app.Store.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, completions)

	require.NoError(t, (&StatsCmd{User: "alice", Range: "rolling"}).Run(app))
	assert.Error(t, (&StatsCmd{User: "alice", Range: "rolling", From: "tomorrow"}).Run(app))
}

func TestResetAll(t *testing.T) {
	app := newTestContext(t)
	require.NoError(t, (&SeedCmd{User: "alice", Days: 10, Seed: 1}).Run(app))
	require.NoError(t, (&SeedCmd{User: "bob", Days: 10, Seed: 2}).Run(app))

	ids, err := app.Store.UserIDsWithHabits(app.Ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	require.NoError(t, (&ResetCmd{All: true}).Run(app))
	require.NoError(t, (&ResetCmd{User: "alice"}).Run(app))
}

func TestInitDBLocal(t *testing.T) {
	app := newTestContext(t)
	require.NoError(t, (&InitDBCmd{}).Run(app))
}
