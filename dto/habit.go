package dto

import (
	"time"

	"atomichabits/model"
)

type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // GET, POST, PUT, DELETE
}

type CreateHabitRequest struct {
	Title        string          `json:"title" binding:"required,min=1,max=100"`
	Description  string          `json:"description" binding:"required,min=1,max=500"`
	Frequency    model.Frequency `json:"frequency" binding:"required,habit_frequency"`
	Category     model.Category  `json:"category" binding:"required,habit_category"`
	TimeOfDay    string          `json:"time_of_day,omitempty" binding:"omitempty,clock"`
	ReminderTime string          `json:"reminder_time,omitempty" binding:"omitempty,clock"`
}

// UpdateHabitRequest is a partial update; absent fields are left unchanged.
type UpdateHabitRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Frequency    *model.Frequency `json:"frequency" binding:"omitempty,habit_frequency"`
	Category     *model.Category  `json:"category" binding:"omitempty,habit_category"`
	TimeOfDay    *string          `json:"time_of_day" binding:"omitempty,clock"`
	ReminderTime *string          `json:"reminder_time" binding:"omitempty,clock"`
	Completed    *bool            `json:"completed"`
	IsArchived   *bool            `json:"is_archived"`
}

type CompleteRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type HabitResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Frequency     model.Frequency `json:"frequency"`
	Category      model.Category  `json:"category"`
	TimeOfDay     string          `json:"time_of_day,omitempty"`
	ReminderTime  string          `json:"reminder_time,omitempty"`
	Streak        int             `json:"streak"`
	Completed     bool            `json:"completed"`
	IsArchived    bool            `json:"is_archived"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	LastCompleted *time.Time      `json:"last_completed,omitempty"`
	Links         map[string]Link `json:"_links,omitempty"`
}

func ToHabitResponse(h *model.Habit, links map[string]Link) HabitResponse {
	return HabitResponse{
		ID:            h.HabitID,
		Title:         h.Title,
		Description:   h.Description,
		Frequency:     h.Frequency,
		Category:      h.Category,
		TimeOfDay:     h.TimeOfDay,
		ReminderTime:  h.ReminderTime,
		Streak:        h.Streak,
		Completed:     h.Completed,
		IsArchived:    h.IsArchived,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
		LastCompleted: h.LastCompleted,
		Links:         links,
	}
}

func ToHabitResponses(habits []*model.Habit, linksFor func(*model.Habit) map[string]Link) []HabitResponse {
	responses := make([]HabitResponse, len(habits))
	for i, h := range habits {
		responses[i] = ToHabitResponse(h, linksFor(h))
	}
	return responses
}

type ResetResponse struct {
	ResetCount int    `json:"reset_count"`
	Message    string `json:"message"`
}

type ArchiveResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	IsArchived bool   `json:"is_archived"`
	Message    string `json:"message"`
}

type ListHabitsQuery struct {
	Category        model.Category `form:"category" binding:"omitempty,habit_category"`
	Archived        bool           `form:"archived"`
	IncludeArchived bool           `form:"include_archived"`
	Skip            int            `form:"skip" binding:"min=0"`
	Limit           int            `form:"limit,default=10" binding:"min=1,max=100"`
}

type StatsQuery struct {
	Range string `form:"range"`
	From  string `form:"from"`
	To    string `form:"to"`
}
