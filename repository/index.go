package repository

import (
	"context"
	"fmt"
	"time"

	"atomichabits/config"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SetupIndexes(ctx context.Context, db *mongo.Database, cfg config.DatabaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		cfg.HabitsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: 1},
				},
				Options: options.Index().SetName("user_habits_created"),
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "is_archived", Value: 1},
					{Key: "category", Value: 1},
				},
				Options: options.Index().SetName("user_habits_archived_category"),
			},
		},
		cfg.CompletionsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "day", Value: 1},
				},
				Options: options.Index().SetName("user_completion_day"),
			},
			{
				Keys: bson.D{
					{Key: "habit_id", Value: 1},
					{Key: "day", Value: 1},
				},
				Options: options.Index().SetName("habit_completion_day").SetUnique(true),
			},
		},
		cfg.UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("user_email").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("user_id_index").SetUnique(true),
			},
		},
		cfg.SessionsCollection: {
			{
				Keys:    bson.D{{Key: "session_id", Value: 1}},
				Options: options.Index().SetName("session_id_index").SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "is_active", Value: 1},
					{Key: "last_activity_at", Value: -1},
				},
				Options: options.Index().SetName("user_active_sessions"),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("session_expiry").SetExpireAfterSeconds(0),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	log.Info("created indexes", "collections", len(indexes))
	return nil
}
