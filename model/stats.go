package model

import "time"

type DailyActivitySample struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Total int     `json:"total"`
}

type ActivityStats struct {
	Samples          []DailyActivitySample `json:"samples"`
	CurrentStreak    int                   `json:"current_streak"`
	MaxStreak        int                   `json:"max_streak"`
	TotalActiveDays  int                   `json:"total_active_days"`
	TotalCompletions int                   `json:"total_completions"`
	WindowStart      time.Time             `json:"window_start"`
	WindowEnd        time.Time             `json:"window_end"`
}

// CategoryCounts backs the habit sidebar: every non-archived habit under
// All and its category, archived habits only under Archived.
type CategoryCounts struct {
	All        int              `json:"all"`
	Archived   int              `json:"archived"`
	ByCategory map[Category]int `json:"by_category"`
}
