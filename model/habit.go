package model

import "time"

type Frequency string
type Category string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	CategoryMindfulness  Category = "Mindfulness"
	CategoryLearning     Category = "Learning"
	CategoryProductivity Category = "Productivity"
	CategoryHealth       Category = "Health"
	CategoryFitness      Category = "Fitness"
	CategoryCareer       Category = "Career"
	CategorySocial       Category = "Social"
	CategoryOther        Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMindfulness,
	CategoryLearning,
	CategoryProductivity,
	CategoryHealth,
	CategoryFitness,
	CategoryCareer,
	CategorySocial,
	CategoryOther,
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Habit struct {
	HabitID       string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Frequency     Frequency  `bson:"frequency" json:"frequency"`
	Category      Category   `bson:"category" json:"category"`
	TimeOfDay     string     `bson:"time_of_day,omitempty" json:"time_of_day,omitempty"`
	ReminderTime  string     `bson:"reminder_time,omitempty" json:"reminder_time,omitempty"`
	Streak        int        `bson:"streak" json:"streak"`
	Completed     bool       `bson:"completed" json:"completed"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
	LastCompleted *time.Time `bson:"last_completed,omitempty" json:"last_completed,omitempty"`
	IsArchived    bool       `bson:"is_archived" json:"is_archived"`
}

// Clone returns a copy that shares no pointers with h.
func (h *Habit) Clone() *Habit {
	c := *h
	if h.LastCompleted != nil {
		last := *h.LastCompleted
		c.LastCompleted = &last
	}
	return &c
}

// IsApplicableOn reports whether h counts toward the denominator of the
// completion rate for the calendar day containing date.
func IsApplicableOn(h *Habit, date time.Time) bool {
	if h.IsArchived {
		return false
	}
	return !StartOfDay(h.CreatedAt.In(date.Location())).After(StartOfDay(date))
}

// FrequencyWindowStart returns the start of the period that ref falls in.
func FrequencyWindowStart(freq Frequency, ref time.Time) time.Time {
	switch freq {
	case FrequencyWeekly:
		return ref.Add(-7 * 24 * time.Hour)
	case FrequencyMonthly:
		return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	default:
		return StartOfDay(ref)
	}
}
