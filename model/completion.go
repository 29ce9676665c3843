package model

import "time"

// Completion is the per-day history entry for a habit. There is at most one
// per (habit, day); a later toggle on the same day overwrites it.
type Completion struct {
	CompletionID string    `bson:"_id" json:"id"`
	HabitID      string    `bson:"habit_id" json:"habit_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Day          string    `bson:"day" json:"day"`
	Completed    bool      `bson:"completed" json:"completed"`
	RecordedAt   time.Time `bson:"recorded_at" json:"recorded_at"`
}

// CompletionID derives the stable id of the entry for habitID on day.
func CompletionID(habitID, day string) string {
	return habitID + "/" + day
}
