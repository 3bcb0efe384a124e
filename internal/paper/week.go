package paper

import "time"

// NextWeekStart returns the Monday strictly after now, at midnight in
// now's location. Called on a Monday it returns the following Monday,
// never today.
func NextWeekStart(now time.Time) time.Time {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
}

// StartOfWeek returns the Monday of now's week at midnight, for on-demand
// generation targeting the current week.
func StartOfWeek(now time.Time) time.Time {
	days := int(now.Weekday()) - 1
	if days < 0 {
		days = 6 // Sunday belongs to the week that started 6 days back
	}
	monday := now.AddDate(0, 0, -days)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}
