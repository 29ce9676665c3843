package handler

import (
	"atomichabits/dto"
	"atomichabits/middleware"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

// GetStats serves the activity calendar for ?range= or ?from=&to=.
func (h *HabitHandler) GetStats(c *gin.Context) {
	var query dto.StatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequest(c, "Invalid query parameters")
		return
	}

	stats, err := h.habits.GetStats(c.Request.Context(), middleware.UserID(c), usecase.StatsWindow{
		Range: query.Range,
		From:  query.From,
		To:    query.To,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, stats)
}

func (h *HabitHandler) CategoryCounts(c *gin.Context) {
	counts, err := h.habits.CategoryCounts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, counts)
}
