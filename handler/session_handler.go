package handler

import (
	"atomichabits/middleware"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) GetActiveSessions(c *gin.Context) {
	sessions, err := h.sessions.GetUserActiveSessions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"sessions": sessions,
	})
}

func (h *AuthHandler) LogoutAllSessions(c *gin.Context) {
	if err := h.sessions.EndAllUserSessions(c.Request.Context(), middleware.UserID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	utils.Success(c, gin.H{
		"message": "Successfully logged out of all sessions",
	})
}
