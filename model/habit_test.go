package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsApplicableOn(t *testing.T) {
	created := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		archived bool
		date     time.Time
		want     bool
	}{
		{"day before creation", false, time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), false},
		{"creation day before creation time", false, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), true},
		{"after creation", false, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"archived", true, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Habit{CreatedAt: created, IsArchived: tt.archived}
			assert.Equal(t, tt.want, IsApplicableOn(h, tt.date))
		})
	}
}

func TestFrequencyWindowStart(t *testing.T) {
	ref := time.Date(2024, 5, 17, 13, 45, 10, 0, time.UTC)

	tests := []struct {
		freq Frequency
		want time.Time
	}{
		{FrequencyDaily, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{FrequencyWeekly, time.Date(2024, 5, 10, 13, 45, 10, 0, time.UTC)},
		{FrequencyMonthly, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			assert.True(t, tt.want.Equal(FrequencyWindowStart(tt.freq, ref)))
		})
	}
}

func TestFrequencyAndCategoryValidity(t *testing.T) {
	assert.True(t, FrequencyWeekly.Valid())
	assert.False(t, Frequency("yearly").Valid())
	assert.True(t, CategoryCareer.Valid())
	assert.False(t, Category("health").Valid())
}

func TestCloneDetachesLastCompleted(t *testing.T) {
	last := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	h := &Habit{HabitID: "h1", LastCompleted: &last}

	c := h.Clone()
	*c.LastCompleted = last.Add(time.Hour)

	assert.True(t, h.LastCompleted.Equal(last))
}

func TestErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, HabitNotFound("x"), ErrNotFound)
	assert.ErrorIs(t, &InvalidStateError{Reason: "nope"}, ErrInvalidState)
	assert.EqualError(t, HabitNotFound("x"), "habit x not found")
	assert.ErrorIs(t, &ValidationError{Field: "from", Reason: "bad"}, ErrInvalidInput)
}

func TestSessionUsable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	base := Session{
		IsActive:       true,
		ExpiresAt:      now.Add(time.Hour),
		LastActivityAt: now.Add(-time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(*Session)
		want   bool
	}{
		{"fresh", func(*Session) {}, true},
		{"ended", func(s *Session) { s.IsActive = false }, false},
		{"expired", func(s *Session) { s.ExpiresAt = now }, false},
		{"idle", func(s *Session) { s.LastActivityAt = now.Add(-3 * time.Hour) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			assert.Equal(t, tt.want, s.Usable(now, 2*time.Hour))
		})
	}

	var missing *Session
	assert.False(t, missing.Usable(now, time.Hour))
}
