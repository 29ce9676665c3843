package handler

import (
	"net/http"

	"atomichabits/dto"
	"atomichabits/middleware"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	baseURL := utils.GetBaseURL(c)
	links := map[string]dto.Link{
		"self":     {Href: baseURL + "/user", Method: http.MethodGet},
		"habits":   {Href: baseURL + "/habits", Method: http.MethodGet},
		"stats":    {Href: baseURL + "/habits/stats", Method: http.MethodGet},
		"sessions": {Href: baseURL + "/sessions/active", Method: http.MethodGet},
		"logout":   {Href: baseURL + "/user/logout", Method: http.MethodPost},
	}
	utils.Success(c, dto.ToUserProfileResponse(user, links))
}
