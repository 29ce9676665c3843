package handler

import (
	"context"
	"errors"

	"atomichabits/dto"
	"atomichabits/middleware"
	"atomichabits/model"
	"atomichabits/repository"
	"atomichabits/services"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const MaxActiveSessions = 5

// SessionManager is implemented by repository.SessionRepo.
type SessionManager interface {
	middleware.SessionStore
	GetUserActiveSessions(ctx context.Context, userID string) ([]*model.Session, error)
	CountActiveSessions(ctx context.Context, userID string) (int, error)
	EndAllUserSessions(ctx context.Context, userID string) error
	EndLeastActiveSession(ctx context.Context, userID string) error
}

type TokenRevoker interface {
	middleware.TokenBlacklist
	BlacklistTokens(ctx context.Context, accessToken, refreshToken string) error
}

type AuthHandler struct {
	users    *usecase.UserService
	tokens   *services.TokenService
	revoker  TokenRevoker
	sessions SessionManager
}

func NewAuthHandler(users *usecase.UserService, tokens *services.TokenService, revoker TokenRevoker, sessions SessionManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, revoker: revoker, sessions: sessions}
}

func (h *AuthHandler) issueTokens(userID string) (*dto.TokenResponse, error) {
	access, err := h.tokens.GenerateToken(userID)
	if err != nil {
		return nil, err
	}
	utils.TokenUsage.WithLabelValues(services.TokenTypeAccess, "generated").Inc()

	refresh, err := h.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	utils.TokenUsage.WithLabelValues(services.TokenTypeRefresh, "generated").Inc()

	return &dto.TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// startSession enforces the session cap, then records a new session. The
// returned notice is non-empty when an older session had to be ended.
func (h *AuthHandler) startSession(c *gin.Context, userID string) (string, error) {
	ctx := c.Request.Context()

	count, err := h.sessions.CountActiveSessions(ctx, userID)
	if err != nil {
		return "", err
	}

	var notice string
	if count >= MaxActiveSessions {
		if err := h.sessions.EndLeastActiveSession(ctx, userID); err != nil {
			return "", err
		}
		notice = "Logged out of least active session due to session limit"
		log.Info("ended least active session", "user", userID, "limit", MaxActiveSessions)
	}

	if _, err := middleware.CreateSession(c, userID, h.sessions); err != nil {
		return "", err
	}
	return notice, nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("validation", "registration")
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		utils.Conflict(c, "Email already registered")
		return
	case errors.Is(err, services.ErrWeakPassword):
		utils.BadRequest(c, err.Error())
		return
	case err != nil:
		utils.HandleError(c, err)
		return
	}

	tokens, err := h.issueTokens(user.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if _, err := h.startSession(c, user.UserID); err != nil {
		utils.TrackError("session", "creation")
		utils.HandleError(c, err)
		return
	}

	utils.Created(c, gin.H{
		"user":   dto.ToUserProfileResponse(user, nil),
		"tokens": tokens,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("auth", "invalid_request")
		utils.TrackAuthAttempt("failure", "validation")
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req)
	switch {
	case errors.Is(err, usecase.ErrTwoFactorRequired):
		utils.Success(c, gin.H{
			"requires_2fa": true,
			"message":      "2FA code required",
		})
		return
	case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrInvalidTwoFactorCode):
		utils.Unauthorized(c, err.Error())
		return
	case err != nil:
		utils.HandleError(c, err)
		return
	}

	notice, err := h.startSession(c, user.UserID)
	if err != nil {
		utils.TrackError("session", "creation")
		utils.HandleError(c, err)
		return
	}
	tokens, err := h.issueTokens(user.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	response := gin.H{
		"message": "Login successful",
		"tokens":  tokens,
		"user":    dto.ToUserProfileResponse(user, nil),
	}
	if notice != "" {
		response["notice"] = notice
	}
	utils.Success(c, response)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	if h.revoker != nil && h.revoker.IsTokenBlacklisted(ctx, req.RefreshToken) {
		utils.TrackAuthAttempt("failure", "refresh_revoked")
		utils.Unauthorized(c, "Token has been invalidated")
		return
	}

	claims, err := h.tokens.ParseToken(req.RefreshToken, services.TokenTypeRefresh)
	if err != nil {
		utils.TrackAuthAttempt("failure", "refresh_invalid")
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	tokens, err := h.issueTokens(claims.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if h.revoker != nil {
		if err := h.revoker.BlacklistTokens(ctx, "", req.RefreshToken); err != nil {
			log.Warn("failed to revoke rotated refresh token", "user", claims.UserID, "err", err)
		}
	}

	utils.TrackAuthAttempt("success", "refresh")
	utils.Success(c, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	if h.revoker != nil {
		if err := h.revoker.BlacklistTokens(ctx, c.GetString(middleware.ContextAccessToken), req.RefreshToken); err != nil {
			utils.TrackError("auth", "logout_revoke")
			utils.HandleError(c, err)
			return
		}
	}

	if sessionID, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := h.sessions.TouchSession(ctx, sessionID, false); err != nil && !errors.Is(err, model.ErrNotFound) {
			log.Warn("failed to end session on logout", "session", sessionID, "err", err)
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)

	utils.Success(c, gin.H{"message": "Successfully logged out"})
}
