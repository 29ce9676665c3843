package usecase

import (
	"fmt"
	"time"

	"atomichabits/model"
)

const (
	RangeDefault     = "default"
	RangeRolling     = "rolling"
	RangeCurrentYear = "current_year"
	RangeLastYear    = "last_year"
	RangeAllTime     = "all_time"

	MaxWindowDays = 3700
)

// StatsWindow selects the days covered by GetStats. From/To take precedence
// over Range when either is set; a missing bound defaults to the preset's.
type StatsWindow struct {
	Range string
	From  string
	To    string
}

// Resolve turns w into calendar-day bounds in now's location. earliest is
// the first day anything could have happened, used by the all_time preset.
func (w StatsWindow) Resolve(now, earliest time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	today := model.StartOfDay(now)

	var start, end time.Time
	switch w.Range {
	case "", RangeDefault:
		start = time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
		end = today
	case RangeRolling:
		start = today.AddDate(0, 0, -365)
		end = today
	case RangeCurrentYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = today
	case RangeLastYear:
		start = time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, loc)
	case RangeAllTime:
		start = model.StartOfDay(earliest.In(loc))
		end = today
		if start.After(end) {
			start = end
		}
	default:
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "range", Reason: fmt.Sprintf("unknown range %q", w.Range)}
	}

	if w.From != "" {
		from, err := model.ParseDay(w.From, loc)
		if err != nil {
			return time.Time{}, time.Time{}, &model.ValidationError{Field: "from", Reason: "expected YYYY-MM-DD"}
		}
		start = from
	}
	if w.To != "" {
		to, err := model.ParseDay(w.To, loc)
		if err != nil {
			return time.Time{}, time.Time{}, &model.ValidationError{Field: "to", Reason: "expected YYYY-MM-DD"}
		}
		end = to
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "to", Reason: "must not be before from"}
	}
	if days := model.DaysBetween(start, end); days > MaxWindowDays {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "range", Reason: fmt.Sprintf("window of %d days exceeds %d", days, MaxWindowDays)}
	}
	return start, end, nil
}
