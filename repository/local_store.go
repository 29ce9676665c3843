package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"atomichabits/model"
	"atomichabits/utils"

	_ "modernc.org/sqlite"
)

const (
	habitsKeyPrefix      = "demo_habits:"
	completionsKeyPrefix = "demo_habits_completed:"
)

// SeedFunc produces the initial data for a user whose local store is empty.
type SeedFunc func(userID string, now time.Time) ([]*model.Habit, []*model.Completion)

// LocalStore is the demo-mode HabitStore. It keeps one JSON document per user
// and collection in a SQLite key/value table, so a user's habits are always
// read and written as a whole.
type LocalStore struct {
	db    *sql.DB
	clock Clock
	seed  SeedFunc
	mu    sync.Mutex
}

var _ HabitStore = (*LocalStore)(nil)

// OpenLocalStore opens (creating if needed) the SQLite file at path. A nil
// seed leaves new users with no habits.
func OpenLocalStore(path string, clock Clock, seed SeedFunc) (*LocalStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	s := &LocalStore{db: db, clock: clock, seed: seed}
	if err := s.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Now() time.Time {
	return s.clock()
}

func (s *LocalStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// habits must be called with s.mu held.
func (s *LocalStore) habits(ctx context.Context, userID string) ([]*model.Habit, error) {
	timer := utils.TrackDBOperation("find", "local_habits")
	defer timer.ObserveDuration()

	var habits []*model.Habit
	found, err := s.getJSON(ctx, habitsKeyPrefix+userID, &habits)
	if err != nil {
		utils.TrackError("database", "local_habit_fetch_failed")
		return nil, err
	}
	if found || s.seed == nil {
		return habits, nil
	}

	habits, completions := s.seed(userID, s.clock())
	if err := s.putJSON(ctx, habitsKeyPrefix+userID, habits); err != nil {
		return nil, err
	}
	if err := s.putJSON(ctx, completionsKeyPrefix+userID, completions); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *LocalStore) completions(ctx context.Context, userID string) ([]*model.Completion, error) {
	var completions []*model.Completion
	if _, err := s.getJSON(ctx, completionsKeyPrefix+userID, &completions); err != nil {
		utils.TrackError("database", "local_completion_fetch_failed")
		return nil, err
	}
	return completions, nil
}

func (s *LocalStore) LoadHabits(ctx context.Context, userID string) ([]*model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, err := s.habits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []*model.Habit{}
	}
	return habits, nil
}

func (s *LocalStore) FindHabit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, err := s.habits(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.HabitID == habitID {
			return h, nil
		}
	}
	return nil, model.HabitNotFound(habitID)
}

func (s *LocalStore) SaveHabit(ctx context.Context, habit *model.Habit) error {
	if habit.UserID == "" {
		return errors.New("user ID is required")
	}
	return s.SaveHabits(ctx, habit.UserID, []*model.Habit{habit})
}

func (s *LocalStore) SaveHabits(ctx context.Context, userID string, updates []*model.Habit) error {
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timer := utils.TrackDBOperation("upsert", "local_habits")
	defer timer.ObserveDuration()

	habits, err := s.habits(ctx, userID)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(habits))
	for i, h := range habits {
		index[h.HabitID] = i
	}
	for _, u := range updates {
		if i, ok := index[u.HabitID]; ok {
			habits[i] = u
			continue
		}
		index[u.HabitID] = len(habits)
		habits = append(habits, u)
	}

	if err := s.putJSON(ctx, habitsKeyPrefix+userID, habits); err != nil {
		utils.TrackError("database", "local_habit_save_failed")
		return err
	}
	return nil
}

func (s *LocalStore) DeleteHabit(ctx context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, err := s.habits(ctx, userID)
	if err != nil {
		return err
	}

	kept := habits[:0]
	for _, h := range habits {
		if h.HabitID != habitID {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(habits) {
		return model.HabitNotFound(habitID)
	}
	return s.putJSON(ctx, habitsKeyPrefix+userID, kept)
}

func (s *LocalStore) LoadCompletions(ctx context.Context, userID string, from, to time.Time) ([]*model.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.completions(ctx, userID)
	if err != nil {
		return nil, err
	}

	lo, hi := model.DayKey(from), model.DayKey(to)
	var out []*model.Completion
	for _, c := range all {
		if c.Day >= lo && c.Day <= hi {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *LocalStore) SaveCompletion(ctx context.Context, completion *model.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.completions(ctx, completion.UserID)
	if err != nil {
		return err
	}

	replaced := false
	for i, c := range all {
		if c.CompletionID == completion.CompletionID {
			all[i] = completion
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, completion)
	}
	return s.putJSON(ctx, completionsKeyPrefix+completion.UserID, all)
}

func (s *LocalStore) DeleteCompletions(ctx context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.completions(ctx, userID)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, c := range all {
		if c.HabitID != habitID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.putJSON(ctx, completionsKeyPrefix+userID, kept)
}

func (s *LocalStore) UserIDsWithHabits(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv WHERE key LIKE ? ORDER BY key`, habitsKeyPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list local users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		ids = append(ids, strings.TrimPrefix(key, habitsKeyPrefix))
	}
	return ids, rows.Err()
}
