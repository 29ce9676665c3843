package repository

import (
	"context"
	"time"

	"atomichabits/model"
)

// HabitStore is the storage collaborator behind the habit service. The
// Mongo repository and the local demo store both implement it; which one
// is used is decided once at start-up.
type HabitStore interface {
	LoadHabits(ctx context.Context, userID string) ([]*model.Habit, error)
	// FindHabit returns a *model.NotFoundError for unknown ids.
	FindHabit(ctx context.Context, userID, habitID string) (*model.Habit, error)
	SaveHabit(ctx context.Context, habit *model.Habit) error
	SaveHabits(ctx context.Context, userID string, habits []*model.Habit) error
	DeleteHabit(ctx context.Context, userID, habitID string) error

	// LoadCompletions returns entries whose day lies in [from, to].
	LoadCompletions(ctx context.Context, userID string, from, to time.Time) ([]*model.Completion, error)
	SaveCompletion(ctx context.Context, completion *model.Completion) error
	// DeleteCompletions removes the history of one habit. Having none is
	// not an error.
	DeleteCompletions(ctx context.Context, userID, habitID string) error

	Now() time.Time
}

// Clock returns the current time. Stores take one so tests can pin "now".
type Clock func() time.Time

// SystemClock reports wall-clock time in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}
