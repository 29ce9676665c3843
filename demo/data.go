// Package demo generates sample habits with a plausible completion history
// for the local demo store and the seed command.
package demo

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"atomichabits/model"

	"github.com/google/uuid"
)

type template struct {
	title        string
	description  string
	frequency    model.Frequency
	category     model.Category
	timeOfDay    string
	reminderTime string
	rate         float64
	archived     bool
}

var templates = []template{
	{"Morning Meditation", "Start each day with 10 minutes of mindful meditation to clear your mind and set positive intentions for the day.", model.FrequencyDaily, model.CategoryMindfulness, "06:30", "06:25", 0.8, false},
	{"Read 20 Pages", "Read 20 pages of a non-fiction book to expand knowledge and vocabulary.", model.FrequencyDaily, model.CategoryLearning, "21:00", "20:55", 0.7, false},
	{"Workout Session", "Complete a 30-minute strength training workout focusing on major muscle groups.", model.FrequencyWeekly, model.CategoryFitness, "17:30", "17:15", 0.85, false},
	{"Gratitude Journaling", "Write down three things you are grateful for to cultivate positivity and mindfulness.", model.FrequencyDaily, model.CategoryMindfulness, "22:00", "21:55", 0.5, false},
	{"Weekly Planning", "Plan your goals and tasks for the upcoming week to stay organized and focused.", model.FrequencyWeekly, model.CategoryProductivity, "18:00", "17:45", 0.9, false},
	{"Learn Spanish", "Practice Spanish vocabulary for 15 minutes using a language learning app.", model.FrequencyDaily, model.CategoryLearning, "19:30", "19:25", 0.75, false},
	{"Monthly Budget Review", "Review your monthly expenses and update your budget for the coming month.", model.FrequencyMonthly, model.CategoryCareer, "10:00", "09:55", 0.9, false},
	{"Daily Water Intake", "Drink at least 2 liters of water throughout the day for proper hydration.", model.FrequencyDaily, model.CategoryHealth, "", "", 0.6, true},
	{"Call a Friend", "Reach out to a friend or family member to maintain social connections.", model.FrequencyWeekly, model.CategorySocial, "19:00", "18:55", 0.7, false},
	{"Code Review", "Review and refactor code for personal projects.", model.FrequencyDaily, model.CategoryCareer, "10:00", "09:55", 0.7, false},
}

type Options struct {
	Days int
	Seed uint64
}

func DefaultOptions() Options {
	return Options{Days: 90, Seed: 42}
}

// Generate builds the sample habits for userID with Days of history ending
// at now. The same options, user and day always give the same data.
func Generate(userID string, now time.Time, opts Options) ([]*model.Habit, []*model.Completion) {
	if opts.Days <= 0 {
		opts.Days = DefaultOptions().Days
	}
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(model.StartOfDay(now).Unix())))

	today := model.StartOfDay(now)
	first := today.AddDate(0, 0, -(opts.Days - 1))

	habits := make([]*model.Habit, 0, len(templates))
	var completions []*model.Completion

	for _, t := range templates {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(userID+"/"+t.title)).String()
		created := first.AddDate(0, 0, -5).Add(clock(t.timeOfDay))

		h := &model.Habit{
			HabitID:      id,
			UserID:       userID,
			Title:        t.title,
			Description:  t.description,
			Frequency:    t.frequency,
			Category:     t.category,
			TimeOfDay:    t.timeOfDay,
			ReminderTime: t.reminderTime,
			CreatedAt:    created,
			UpdatedAt:    created,
			IsArchived:   t.archived,
		}

		var hits []bool
		for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
			if !occursOn(t.frequency, d) {
				continue
			}
			done := rng.Float64() < t.rate
			hits = append(hits, done)
			if !done {
				continue
			}

			at := d.Add(clock(t.timeOfDay))
			if at.After(now) {
				at = now
			}
			day := model.DayKey(d)
			completions = append(completions, &model.Completion{
				CompletionID: model.CompletionID(id, day),
				HabitID:      id,
				UserID:       userID,
				Day:          day,
				Completed:    true,
				RecordedAt:   at,
			})
			last := at
			h.LastCompleted = &last
			h.UpdatedAt = at
		}

		h.Streak = trailingRun(hits)
		if h.LastCompleted != nil && !t.archived {
			h.Completed = !h.LastCompleted.Before(model.FrequencyWindowStart(t.frequency, now))
		}
		habits = append(habits, h)
	}

	return habits, completions
}

// Generate adapts the package-level Generate to repository.SeedFunc.
func (o Options) Generate(userID string, now time.Time) ([]*model.Habit, []*model.Completion) {
	return Generate(userID, now, o)
}

func occursOn(freq model.Frequency, d time.Time) bool {
	switch freq {
	case model.FrequencyWeekly:
		return d.Weekday() == time.Monday
	case model.FrequencyMonthly:
		return d.Day() == 1
	default:
		return true
	}
}

// trailingRun counts consecutive hits at the end of the series. A miss on
// the latest occurrence is ignored since that period may still be open.
func trailingRun(hits []bool) int {
	if n := len(hits); n > 0 && !hits[n-1] {
		hits = hits[:n-1]
	}
	run := 0
	for i := len(hits) - 1; i >= 0 && hits[i]; i-- {
		run++
	}
	return run
}

// clock parses "HH:MM" into an offset from midnight, defaulting to noon.
func clock(hhmm string) time.Duration {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 12 * time.Hour
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 12 * time.Hour
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}
