package middleware

import (
	"context"
	"fmt"
	"time"

	"atomichabits/model"
	"atomichabits/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie     = "session_id"
	SessionTTL        = 24 * time.Hour
	sessionIdleLimit  = 48 * time.Hour
	ContextSessionKey = "session"
)

// SessionStore is implemented by repository.SessionRepo.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	TouchSession(ctx context.Context, sessionID string, active bool) error
}

// SessionMiddleware refreshes the activity timestamp of the session named by
// the cookie and ends sessions idle for too long. Requests without a
// session pass through untouched.
func SessionMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		session, err := sessions.GetSession(ctx, sessionID)
		if err != nil || session == nil || !session.IsActive {
			c.SetCookie(SessionCookie, "", -1, "/", "", true, true)
			c.Next()
			return
		}

		if !session.Usable(time.Now(), sessionIdleLimit) {
			if err := sessions.TouchSession(ctx, sessionID, false); err != nil {
				log.Warn("failed to end idle session", "session", sessionID, "err", err)
			}
			c.SetCookie(SessionCookie, "", -1, "/", "", true, true)
			c.Next()
			return
		}

		if err := sessions.TouchSession(ctx, sessionID, true); err != nil {
			log.Warn("failed to touch session", "session", sessionID, "err", err)
		}
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// CreateSession records a new session for userID and sets its cookie.
func CreateSession(c *gin.Context, userID string, sessions SessionStore) (*model.Session, error) {
	userAgent := c.Request.UserAgent()
	browser, os, device := utils.ParseUserAgent(userAgent)
	now := time.Now()

	session := &model.Session{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		DisplayName:    utils.GenerateSessionName(userAgent, c.ClientIP()),
		DeviceInfo:     fmt.Sprintf("%s on %s (%s)", browser, os, device),
		IPAddress:      c.ClientIP(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(SessionTTL),
		LastActivityAt: now,
		IsActive:       true,
	}

	if err := sessions.CreateSession(c.Request.Context(), session); err != nil {
		return nil, err
	}

	c.SetCookie(SessionCookie, session.SessionID, int(SessionTTL.Seconds()), "/", "", true, true)
	return session, nil
}
