package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"atomichabits/model"
	"atomichabits/services"
	"atomichabits/utils"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const TOTPIssuer = "AtomicHabits"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	ErrTwoFactorNotSetUp    = errors.New("two-factor authentication has not been set up")
)

// UserStore is implemented by repository.UserRepo. Finders return nil, nil
// for unknown users.
type UserStore interface {
	AddUser(ctx context.Context, user *model.User) error
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUser(ctx context.Context, userID string) (*model.User, error)
	SetTwoFactorSecret(ctx context.Context, userID, secret string) error
	Enable2FAWithRecoveryCodes(ctx context.Context, userID string, recoveryCodes []string) error
	UpdateRecoveryCodes(ctx context.Context, userID string, codes []string) error
	Disable2FA(ctx context.Context, userID string) error
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		UserID:    uuid.NewString(),
		Email:     normalizeEmail(req.Email),
		FullName:  strings.TrimSpace(req.FullName),
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.AddUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the password and, when 2FA is enabled, either a TOTP
// code or an unused recovery code. A recovery code is consumed on success.
func (s *UserService) Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		utils.TrackAuthAttempt("failure", "user_not_found")
		return nil, ErrInvalidCredentials
	}

	ok, err := services.VerifyPassword(user.Password, req.Password)
	if err != nil || !ok {
		utils.TrackAuthAttempt("failure", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if req.TwoFactorCode == "" {
			utils.TrackAuthAttempt("pending", "2fa_required")
			return user, ErrTwoFactorRequired
		}
		if err := s.checkSecondFactor(ctx, user, req.TwoFactorCode); err != nil {
			utils.TrackAuthAttempt("failure", "invalid_2fa")
			return nil, err
		}
		utils.TrackAuthAttempt("success", "2fa")
	}

	utils.TrackAuthAttempt("success", "password")
	return user, nil
}

func (s *UserService) checkSecondFactor(ctx context.Context, user *model.User, code string) error {
	if totp.Validate(code, user.TwoFactorSecret) {
		return nil
	}

	hashed := utils.HashRecoveryCode(code)
	i := slices.Index(user.RecoveryCodes, hashed)
	if i < 0 {
		return ErrInvalidTwoFactorCode
	}
	remaining := slices.Delete(slices.Clone(user.RecoveryCodes), i, i+1)
	if err := s.users.UpdateRecoveryCodes(ctx, user.UserID, remaining); err != nil {
		return fmt.Errorf("failed to consume recovery code: %w", err)
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &model.NotFoundError{Resource: "user", ID: userID}
	}
	return user, nil
}

// SetupTwoFactor generates and stores a pending TOTP secret. 2FA is only
// enabled once EnableTwoFactor sees a valid code for it.
func (s *UserService) SetupTwoFactor(ctx context.Context, userID string) (*otp.Key, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, &model.InvalidStateError{Reason: "two-factor authentication is already enabled"}
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate 2FA secret: %w", err)
	}
	if err := s.users.SetTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}
	return key, nil
}

// EnableTwoFactor verifies code against the pending secret and returns the
// plaintext recovery codes. Only their hashes are stored.
func (s *UserService) EnableTwoFactor(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorSecret == "" {
		return nil, ErrTwoFactorNotSetUp
	}
	if !totp.Validate(code, user.TwoFactorSecret) {
		return nil, ErrInvalidTwoFactorCode
	}

	codes, err := utils.GenerateRecoveryCodes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery codes: %w", err)
	}
	if err := s.users.Enable2FAWithRecoveryCodes(ctx, userID, utils.HashRecoveryCodes(codes)); err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *UserService) DisableTwoFactor(ctx context.Context, userID, code string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return &model.InvalidStateError{Reason: "two-factor authentication is not enabled"}
	}
	if err := s.checkSecondFactor(ctx, user, code); err != nil {
		return err
	}
	return s.users.Disable2FA(ctx, userID)
}
