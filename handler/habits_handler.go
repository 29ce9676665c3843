package handler

import (
	"net/http"

	"atomichabits/dto"
	"atomichabits/middleware"
	"atomichabits/model"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	habits *usecase.HabitsService
}

func NewHabitHandler(habits *usecase.HabitsService) *HabitHandler {
	return &HabitHandler{habits: habits}
}

func habitLinks(c *gin.Context) func(*model.Habit) map[string]dto.Link {
	baseURL := utils.GetBaseURL(c)
	return func(h *model.Habit) map[string]dto.Link {
		self := baseURL + "/habits/" + h.HabitID
		return map[string]dto.Link{
			"self":     {Href: self, Method: http.MethodGet},
			"update":   {Href: self, Method: http.MethodPut},
			"delete":   {Href: self, Method: http.MethodDelete},
			"complete": {Href: self + "/complete", Method: http.MethodPost},
			"archive":  {Href: self + "/archive", Method: http.MethodPost},
		}
	}
}

func (h *HabitHandler) ListHabits(c *gin.Context) {
	var query dto.ListHabitsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.TrackError("validation", "list_query")
		utils.BadRequest(c, "Invalid query parameters")
		return
	}

	habits, err := h.habits.ListHabits(c.Request.Context(), middleware.UserID(c), usecase.ListOptions{
		Category:        query.Category,
		IncludeArchived: query.IncludeArchived,
		ArchivedOnly:    query.Archived,
		Skip:            query.Skip,
		Limit:           query.Limit,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, dto.ToHabitResponses(habits, habitLinks(c)))
}

func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("validation", "create_habit")
		utils.BadRequest(c, "Invalid request body")
		return
	}

	habit, err := h.habits.CreateHabit(c.Request.Context(), middleware.UserID(c), usecase.CreateHabitInput{
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    req.Frequency,
		Category:     req.Category,
		TimeOfDay:    req.TimeOfDay,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Header("Location", utils.GetBaseURL(c)+"/habits/"+habit.HabitID)
	utils.Created(c, dto.ToHabitResponse(habit, habitLinks(c)(habit)))
}

func (h *HabitHandler) GetHabit(c *gin.Context) {
	habit, err := h.habits.GetHabit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, dto.ToHabitResponse(habit, habitLinks(c)(habit)))
}

func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("validation", "update_habit")
		utils.BadRequest(c, "Invalid request body")
		return
	}

	habit, err := h.habits.UpdateHabit(c.Request.Context(), middleware.UserID(c), c.Param("id"), usecase.UpdateHabitInput{
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    req.Frequency,
		Category:     req.Category,
		TimeOfDay:    req.TimeOfDay,
		ReminderTime: req.ReminderTime,
		Completed:    req.Completed,
		IsArchived:   req.IsArchived,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, dto.ToHabitResponse(habit, habitLinks(c)(habit)))
}

func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	if err := h.habits.DeleteHabit(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContent(c)
}

func (h *HabitHandler) CompleteHabit(c *gin.Context) {
	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	habit, err := h.habits.SetCompleted(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.Completed)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, dto.ToHabitResponse(habit, habitLinks(c)(habit)))
}

func (h *HabitHandler) ToggleArchive(c *gin.Context) {
	habit, err := h.habits.ToggleArchive(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	message := "Habit unarchived successfully"
	if habit.IsArchived {
		message = "Habit archived successfully"
	}
	utils.Success(c, dto.ArchiveResponse{
		ID:         habit.HabitID,
		Title:      habit.Title,
		IsArchived: habit.IsArchived,
		Message:    message,
	})
}

func (h *HabitHandler) ResetHabits(c *gin.Context) {
	count, err := h.habits.ResetHabits(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, dto.ResetResponse{
		ResetCount: count,
		Message:    "Reset completed",
	})
}
