package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atomichabits/config"
	"atomichabits/model"
	"atomichabits/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HabitsRepo is the MongoDB implementation of HabitStore.
type HabitsRepo struct {
	Habits      *mongo.Collection
	Completions *mongo.Collection
	clock       Clock
}

var _ HabitStore = (*HabitsRepo)(nil)

func GetHabitsRepo(client *mongo.Client, cfg config.DatabaseConfig, clock Clock) *HabitsRepo {
	db := client.Database(cfg.DatabaseName)
	return &HabitsRepo{
		Habits:      db.Collection(cfg.HabitsCollection),
		Completions: db.Collection(cfg.CompletionsCollection),
		clock:       clock,
	}
}

func (r *HabitsRepo) Now() time.Time {
	return r.clock()
}

func (r *HabitsRepo) LoadHabits(ctx context.Context, userID string) ([]*model.Habit, error) {
	timer := utils.TrackDBOperation("find", "habits")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.Habits.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		utils.TrackError("database", "habit_fetch_failed")
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer cursor.Close(ctx)

	habits := []*model.Habit{}
	if err = cursor.All(ctx, &habits); err != nil {
		utils.TrackError("database", "habit_decode_failed")
		return nil, fmt.Errorf("failed to decode habits: %w", err)
	}
	return habits, nil
}

func (r *HabitsRepo) FindHabit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	timer := utils.TrackDBOperation("find", "habits")
	defer timer.ObserveDuration()

	var habit model.Habit
	err := r.Habits.FindOne(ctx, bson.M{"_id": habitID, "user_id": userID}).Decode(&habit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.HabitNotFound(habitID)
		}
		utils.TrackError("database", "habit_fetch_failed")
		return nil, fmt.Errorf("failed to fetch habit: %w", err)
	}
	return &habit, nil
}

func (r *HabitsRepo) SaveHabit(ctx context.Context, habit *model.Habit) error {
	timer := utils.TrackDBOperation("upsert", "habits")
	defer timer.ObserveDuration()

	if habit.UserID == "" {
		utils.TrackError("database", "missing_user_id")
		return errors.New("user ID is required")
	}

	filter := bson.M{"_id": habit.HabitID, "user_id": habit.UserID}
	_, err := r.Habits.ReplaceOne(ctx, filter, habit, options.Replace().SetUpsert(true))
	if err != nil {
		utils.TrackError("database", "habit_save_failed")
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

func (r *HabitsRepo) SaveHabits(ctx context.Context, userID string, habits []*model.Habit) error {
	if len(habits) == 0 {
		return nil
	}

	timer := utils.TrackDBOperation("bulk_upsert", "habits")
	defer timer.ObserveDuration()

	writes := make([]mongo.WriteModel, 0, len(habits))
	for _, h := range habits {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": h.HabitID, "user_id": userID}).
			SetReplacement(h).
			SetUpsert(true))
	}

	if _, err := r.Habits.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		utils.TrackError("database", "habit_bulk_save_failed")
		return fmt.Errorf("failed to save habits: %w", err)
	}
	return nil
}

func (r *HabitsRepo) DeleteHabit(ctx context.Context, userID, habitID string) error {
	timer := utils.TrackDBOperation("delete", "habits")
	defer timer.ObserveDuration()

	result, err := r.Habits.DeleteOne(ctx, bson.M{"_id": habitID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "habit_deletion_failed")
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.DeletedCount == 0 {
		utils.TrackError("database", "habit_not_found")
		return model.HabitNotFound(habitID)
	}
	return nil
}

func (r *HabitsRepo) LoadCompletions(ctx context.Context, userID string, from, to time.Time) ([]*model.Completion, error) {
	timer := utils.TrackDBOperation("find", "habit_completions")
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id": userID,
		"day": bson.M{
			"$gte": model.DayKey(from),
			"$lte": model.DayKey(to),
		},
	}
	cursor, err := r.Completions.Find(ctx, filter)
	if err != nil {
		utils.TrackError("database", "completion_fetch_failed")
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer cursor.Close(ctx)

	var completions []*model.Completion
	if err = cursor.All(ctx, &completions); err != nil {
		utils.TrackError("database", "completion_decode_failed")
		return nil, fmt.Errorf("failed to decode completions: %w", err)
	}
	return completions, nil
}

func (r *HabitsRepo) SaveCompletion(ctx context.Context, completion *model.Completion) error {
	timer := utils.TrackDBOperation("upsert", "habit_completions")
	defer timer.ObserveDuration()

	filter := bson.M{"_id": completion.CompletionID}
	_, err := r.Completions.ReplaceOne(ctx, filter, completion, options.Replace().SetUpsert(true))
	if err != nil {
		utils.TrackError("database", "completion_save_failed")
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}

func (r *HabitsRepo) DeleteCompletions(ctx context.Context, userID, habitID string) error {
	timer := utils.TrackDBOperation("delete", "habit_completions")
	defer timer.ObserveDuration()

	_, err := r.Completions.DeleteMany(ctx, bson.M{"user_id": userID, "habit_id": habitID})
	if err != nil {
		utils.TrackError("database", "completion_deletion_failed")
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	return nil
}

// UserIDsWithHabits lists the owners of at least one habit. The admin CLI
// uses it to run the reset pass for everyone.
func (r *HabitsRepo) UserIDsWithHabits(ctx context.Context) ([]string, error) {
	timer := utils.TrackDBOperation("distinct", "habits")
	defer timer.ObserveDuration()

	values, err := r.Habits.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		utils.TrackError("database", "habit_distinct_failed")
		return nil, fmt.Errorf("failed to list habit owners: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
