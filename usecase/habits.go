package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"atomichabits/model"
	"atomichabits/repository"
	"atomichabits/utils"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// StatsCache stores computed stats per user and window. Implementations
// must tolerate a nil receiver.
type StatsCache interface {
	GetStats(ctx context.Context, userID, window string) (*model.ActivityStats, error)
	SetStats(ctx context.Context, userID, window string, stats *model.ActivityStats) error
	Invalidate(ctx context.Context, userID string) error
}

type HabitsService struct {
	store repository.HabitStore
	cache StatsCache
}

// NewHabitsService wires the engine to store. cache may be nil.
func NewHabitsService(store repository.HabitStore, cache StatsCache) *HabitsService {
	return &HabitsService{store: store, cache: cache}
}

type ListOptions struct {
	Category        model.Category
	IncludeArchived bool
	ArchivedOnly    bool
	Skip            int
	Limit           int
}

type CreateHabitInput struct {
	Title        string
	Description  string
	Frequency    model.Frequency
	Category     model.Category
	TimeOfDay    string
	ReminderTime string
}

// UpdateHabitInput carries a partial update; nil fields are left alone.
type UpdateHabitInput struct {
	Title        *string
	Description  *string
	Frequency    *model.Frequency
	Category     *model.Category
	TimeOfDay    *string
	ReminderTime *string
	Completed    *bool
	IsArchived   *bool
}

// loadHabits runs the reset pass over the stored habits before handing them
// out. Failing to persist the reset is logged and the loaded data returned.
func (s *HabitsService) loadHabits(ctx context.Context, userID string) ([]*model.Habit, error) {
	habits, err := s.store.LoadHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	updated, changed := resetStale(habits, s.store.Now())
	if len(changed) == 0 {
		return habits, nil
	}

	if err := s.store.SaveHabits(ctx, userID, changed); err != nil {
		utils.TrackError("database", "reset_persist_failed")
		log.Error("failed to persist reset habits", "user", userID, "count", len(changed), "err", err)
		return habits, nil
	}
	utils.TrackResets(len(changed))
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *HabitsService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		utils.TrackError("cache", "stats_invalidate_failed")
		log.Warn("failed to invalidate stats cache", "user", userID, "err", err)
	}
}

func (s *HabitsService) ListHabits(ctx context.Context, userID string, opts ListOptions) ([]*model.Habit, error) {
	utils.TrackHabitOperation("list")

	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*model.Habit, 0, len(habits))
	for _, h := range habits {
		if opts.ArchivedOnly && !h.IsArchived {
			continue
		}
		if !opts.ArchivedOnly && !opts.IncludeArchived && h.IsArchived {
			continue
		}
		if opts.Category != "" && h.Category != opts.Category {
			continue
		}
		filtered = append(filtered, h)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	if opts.Skip >= len(filtered) {
		return []*model.Habit{}, nil
	}
	end := opts.Skip + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[opts.Skip:end], nil
}

// GetHabit reads a single habit, applying the reset pass to it.
func (s *HabitsService) GetHabit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	utils.TrackHabitOperation("get")
	return s.findHabit(ctx, userID, habitID)
}

// findHabit is the single-habit counterpart of loadHabits.
func (s *HabitsService) findHabit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit, err := s.store.FindHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	_, changed := resetStale([]*model.Habit{habit}, s.store.Now())
	if len(changed) == 0 {
		return habit, nil
	}
	if err := s.store.SaveHabit(ctx, changed[0]); err != nil {
		utils.TrackError("database", "reset_persist_failed")
		log.Error("failed to persist reset habit", "user", userID, "habit", habitID, "err", err)
		return habit, nil
	}
	utils.TrackResets(1)
	s.invalidate(ctx, userID)
	return changed[0], nil
}

func (s *HabitsService) CreateHabit(ctx context.Context, userID string, in CreateHabitInput) (*model.Habit, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &model.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !in.Frequency.Valid() {
		return nil, &model.ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", in.Frequency)}
	}
	if !in.Category.Valid() {
		return nil, &model.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", in.Category)}
	}

	now := s.store.Now()
	habit := &model.Habit{
		HabitID:      uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Frequency:    in.Frequency,
		Category:     in.Category,
		TimeOfDay:    in.TimeOfDay,
		ReminderTime: in.ReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.SaveHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	utils.TrackHabitOperation("create")
	s.invalidate(ctx, userID)
	return habit, nil
}

// UpdateHabit applies a partial update. Unarchiving happens before a
// completion change and archiving after it, so a single request can both
// revive and complete a habit, or complete and then archive it.
func (s *HabitsService) UpdateHabit(ctx context.Context, userID, habitID string, in UpdateHabitInput) (*model.Habit, error) {
	current, err := s.findHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	now := s.store.Now()
	next := current.Clone()
	dirty := false

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, &model.ValidationError{Field: "title", Reason: "must not be empty"}
		}
		next.Title = title
		dirty = true
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
		dirty = true
	}
	if in.Frequency != nil {
		if !in.Frequency.Valid() {
			return nil, &model.ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", *in.Frequency)}
		}
		next.Frequency = *in.Frequency
		dirty = true
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, &model.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", *in.Category)}
		}
		next.Category = *in.Category
		dirty = true
	}
	if in.TimeOfDay != nil {
		next.TimeOfDay = *in.TimeOfDay
		dirty = true
	}
	if in.ReminderTime != nil {
		next.ReminderTime = *in.ReminderTime
		dirty = true
	}

	if in.IsArchived != nil && !*in.IsArchived && next.IsArchived {
		next.IsArchived = false
		dirty = true
	}

	var completion *model.Completion
	if in.Completed != nil {
		toggled, err := SetCompleted(next, *in.Completed, now)
		if err != nil {
			return nil, err
		}
		completion = completionFor(next, toggled, now)
		next = toggled
	}

	if in.IsArchived != nil && *in.IsArchived && !next.IsArchived {
		next.IsArchived = true
		dirty = true
	}

	if dirty {
		next.UpdatedAt = now
	}
	if err := s.save(ctx, next, completion); err != nil {
		return nil, err
	}
	utils.TrackHabitOperation("update")
	return next, nil
}

// SetCompleted marks a habit completed or not completed as of now.
func (s *HabitsService) SetCompleted(ctx context.Context, userID, habitID string, completed bool) (*model.Habit, error) {
	current, err := s.findHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	now := s.store.Now()
	next, err := SetCompleted(current, completed, now)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, next, completionFor(current, next, now)); err != nil {
		return nil, err
	}

	if completed {
		utils.TrackHabitOperation("complete")
	} else {
		utils.TrackHabitOperation("uncomplete")
	}
	return next, nil
}

func (s *HabitsService) ToggleArchive(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	current, err := s.findHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.IsArchived = !current.IsArchived
	next.UpdatedAt = s.store.Now()
	if err := s.save(ctx, next, nil); err != nil {
		return nil, err
	}

	if next.IsArchived {
		utils.TrackHabitOperation("archive")
	} else {
		utils.TrackHabitOperation("unarchive")
	}
	return next, nil
}

func (s *HabitsService) save(ctx context.Context, habit *model.Habit, completion *model.Completion) error {
	if err := s.store.SaveHabit(ctx, habit); err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	if completion != nil {
		if err := s.store.SaveCompletion(ctx, completion); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
	}
	s.invalidate(ctx, habit.UserID)
	return nil
}

// DeleteHabit removes the habit and its completion history.
func (s *HabitsService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := s.store.DeleteHabit(ctx, userID, habitID); err != nil {
		return err
	}
	if err := s.store.DeleteCompletions(ctx, userID, habitID); err != nil {
		return fmt.Errorf("failed to delete completion history: %w", err)
	}
	utils.TrackHabitOperation("delete")
	s.invalidate(ctx, userID)
	return nil
}

// ResetHabits runs the reset pass explicitly and reports how many habits
// it cleared. Unlike reads, a persistence failure is returned.
func (s *HabitsService) ResetHabits(ctx context.Context, userID string) (int, error) {
	habits, err := s.store.LoadHabits(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load habits: %w", err)
	}

	_, changed := resetStale(habits, s.store.Now())
	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.store.SaveHabits(ctx, userID, changed); err != nil {
		return 0, fmt.Errorf("failed to save reset habits: %w", err)
	}
	utils.TrackResets(len(changed))
	s.invalidate(ctx, userID)
	return len(changed), nil
}

// GetStats computes the activity stats of userID over window, serving from
// the cache when one is configured.
func (s *HabitsService) GetStats(ctx context.Context, userID string, window StatsWindow) (*model.ActivityStats, error) {
	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.store.Now()
	start, end, err := window.Resolve(now, earliestCreated(habits, now))
	if err != nil {
		return nil, err
	}

	key := model.DayKey(start) + ":" + model.DayKey(end)
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, userID, key)
		if err != nil {
			log.Warn("failed to read stats cache", "user", userID, "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	completions, err := s.store.LoadCompletions(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	stats := ComputeStats(habits, completions, start, end)
	if s.cache != nil {
		if err := s.cache.SetStats(ctx, userID, key, &stats); err != nil {
			log.Warn("failed to write stats cache", "user", userID, "err", err)
		}
	}
	return &stats, nil
}

func earliestCreated(habits []*model.Habit, now time.Time) time.Time {
	earliest := now
	for _, h := range habits {
		if h.CreatedAt.Before(earliest) {
			earliest = h.CreatedAt
		}
	}
	return earliest
}

// CategoryCounts summarises active habits per category plus the archive.
func (s *HabitsService) CategoryCounts(ctx context.Context, userID string) (*model.CategoryCounts, error) {
	habits, err := s.store.LoadHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	counts := &model.CategoryCounts{ByCategory: make(map[model.Category]int, len(model.Categories))}
	for _, c := range model.Categories {
		counts.ByCategory[c] = 0
	}
	for _, h := range habits {
		if h.IsArchived {
			counts.Archived++
			continue
		}
		counts.All++
		counts.ByCategory[h.Category]++
	}
	return counts, nil
}
