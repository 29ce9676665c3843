package usecase

import (
	"time"

	"atomichabits/model"
)

const weekPeriod = 7 * 24 * time.Hour

// IsStale reports whether a completed habit's period has elapsed at now.
// A habit that has never been completed is always stale.
func IsStale(h *model.Habit, now time.Time) bool {
	if h.LastCompleted == nil {
		return true
	}
	last := h.LastCompleted.In(now.Location())

	switch h.Frequency {
	case model.FrequencyDaily:
		return !model.SameDay(last, now)
	case model.FrequencyWeekly:
		return now.Sub(last) > weekPeriod
	case model.FrequencyMonthly:
		return last.Year() != now.Year() || last.Month() != now.Month()
	default:
		return false
	}
}

// ResetStaleCompletions clears the completed flag of every non-archived
// habit whose period elapsed. Streak and last completion are kept. The
// input habits are not modified.
func ResetStaleCompletions(habits []*model.Habit, now time.Time) ([]*model.Habit, int) {
	updated, changed := resetStale(habits, now)
	return updated, len(changed)
}

func resetStale(habits []*model.Habit, now time.Time) (updated, changed []*model.Habit) {
	updated = make([]*model.Habit, 0, len(habits))
	for _, h := range habits {
		if h.IsArchived || !h.Completed || !IsStale(h, now) {
			updated = append(updated, h)
			continue
		}

		reset := h.Clone()
		reset.Completed = false
		reset.UpdatedAt = now
		updated = append(updated, reset)
		changed = append(changed, reset)
	}
	return updated, changed
}

// SetCompleted toggles the completion state of h as of now and adjusts the
// streak. Setting the state it already has returns an unchanged copy.
func SetCompleted(h *model.Habit, completed bool, now time.Time) (*model.Habit, error) {
	if h.IsArchived {
		return nil, &model.InvalidStateError{Reason: "cannot complete an archived habit"}
	}

	next := h.Clone()
	if h.Completed == completed {
		return next, nil
	}

	if completed {
		next.Streak++
		last := now
		next.LastCompleted = &last
	} else if next.Streak > 0 {
		next.Streak--
	}
	next.Completed = completed
	next.UpdatedAt = now
	return next, nil
}

// completionFor returns the history entry implied by a toggle from before to
// after, or nil when the toggle recorded nothing.
func completionFor(before, after *model.Habit, now time.Time) *model.Completion {
	var day string
	switch {
	case !before.Completed && after.Completed:
		day = model.DayKey(now)
	case before.Completed && !after.Completed && before.LastCompleted != nil:
		day = model.DayKey(before.LastCompleted.In(now.Location()))
	default:
		return nil
	}

	return &model.Completion{
		CompletionID: model.CompletionID(after.HabitID, day),
		HabitID:      after.HabitID,
		UserID:       after.UserID,
		Day:          day,
		Completed:    after.Completed,
		RecordedAt:   now,
	}
}

// ComputeStats derives one sample per calendar day in
// [windowStart, windowEnd] together with the streak summary. A day's value
// is the share of applicable habits completed that day. Completion entries
// for habits missing from habits are ignored.
func ComputeStats(habits []*model.Habit, completions []*model.Completion, windowStart, windowEnd time.Time) model.ActivityStats {
	loc := windowStart.Location()
	start := model.StartOfDay(windowStart)
	end := model.StartOfDay(windowEnd.In(loc))

	stats := model.ActivityStats{
		Samples:     []model.DailyActivitySample{},
		WindowStart: start,
		WindowEnd:   end,
	}
	if end.Before(start) {
		return stats
	}

	logged := make(map[string]map[string]bool)
	for _, c := range completions {
		if !c.Completed {
			continue
		}
		if logged[c.HabitID] == nil {
			logged[c.HabitID] = make(map[string]bool)
		}
		logged[c.HabitID][c.Day] = true
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := model.DayKey(d)
		sample := model.DailyActivitySample{Date: key}

		for _, h := range habits {
			if !model.IsApplicableOn(h, d) {
				continue
			}
			sample.Total++
			if logged[h.HabitID][key] || (h.Completed && h.LastCompleted != nil && model.SameDay(d, *h.LastCompleted)) {
				sample.Count++
			}
		}
		if sample.Total > 0 {
			sample.Value = float64(sample.Count) / float64(sample.Total)
		}
		stats.Samples = append(stats.Samples, sample)
	}

	run := 0
	trailing := true
	for i := len(stats.Samples) - 1; i >= 0; i-- {
		s := stats.Samples[i]
		if s.Value <= 0 {
			trailing = false
			run = 0
			continue
		}

		run++
		stats.TotalActiveDays++
		stats.TotalCompletions += s.Count
		if trailing {
			stats.CurrentStreak = run
		}
		if run > stats.MaxStreak {
			stats.MaxStreak = run
		}
	}

	return stats
}
