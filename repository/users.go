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
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepo struct {
	MongoCollection *mongo.Collection
}

func GetUserRepo(client *mongo.Client, cfg config.DatabaseConfig) *UserRepo {
	return &UserRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.UsersCollection),
	}
}

func (r *UserRepo) AddUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	if user.Email == "" || user.Password == "" {
		utils.TrackError("database", "invalid_user_data")
		return errors.New("email and password required")
	}

	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		utils.TrackError("database", "user_creation_failed")
		return fmt.Errorf("failed to add user: %w", err)
	}

	utils.TrackRegistration()
	return nil
}

// FindUserByEmail returns nil, nil when no user has the address.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindUser returns nil, nil for an unknown id.
func (r *UserRepo) FindUser(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	var user model.User
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) updateUser(ctx context.Context, userID string, set bson.M, reason string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	set["updated_at"] = time.Now()
	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set})
	if err != nil {
		utils.TrackError("database", reason)
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		utils.TrackError("database", "user_not_found")
		return &model.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}

// SetTwoFactorSecret stores a pending secret; 2FA stays disabled until the
// first code is verified.
func (r *UserRepo) SetTwoFactorSecret(ctx context.Context, userID, secret string) error {
	return r.updateUser(ctx, userID, bson.M{"two_factor_secret": secret}, "2fa_secret_failed")
}

func (r *UserRepo) Enable2FAWithRecoveryCodes(ctx context.Context, userID string, recoveryCodes []string) error {
	return r.updateUser(ctx, userID, bson.M{
		"two_factor_enabled": true,
		"recovery_codes":     recoveryCodes,
	}, "2fa_enable_failed")
}

func (r *UserRepo) UpdateRecoveryCodes(ctx context.Context, userID string, codes []string) error {
	return r.updateUser(ctx, userID, bson.M{"recovery_codes": codes}, "recovery_codes_update_failed")
}

func (r *UserRepo) Disable2FA(ctx context.Context, userID string) error {
	return r.updateUser(ctx, userID, bson.M{
		"two_factor_secret":  "",
		"two_factor_enabled": false,
		"recovery_codes":     nil,
	}, "2fa_disable_failed")
}
