package domain

import "time"

// Streak is a named recurring habit tracked per calendar date. Several tasks
// may link to one streak; its log is the union of direct toggles and state
// mirrored from those tasks.
type Streak struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Notify    bool      `json:"notify"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StreakLog records whether a streak was satisfied on a date. At most one
// row exists per (streak, date).
type StreakLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	StreakID  int64     `json:"streak_id"`
	Date      Date      `json:"date"`
	Done      bool      `json:"done"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StreakCount derives the user-visible "current streak" number from the set
// of done dates:
//
//   - done today: consecutive done days ending today (>= 1)
//   - done yesterday but not today: consecutive done days ending yesterday,
//     so a run completed last night still reads as a streak
//   - neither: days missed since the last done day, negated; today itself is
//     not counted as missed
//
// A streak with no done history at all counts as 0.
func StreakCount(doneDates []Date, today Date) int {
	if len(doneDates) == 0 {
		return 0
	}
	done := make(map[Date]struct{}, len(doneDates))
	for _, d := range doneDates {
		done[d] = struct{}{}
	}

	start := today
	if _, ok := done[start]; !ok {
		start = today.AddDays(-1)
		if _, ok := done[start]; !ok {
			return -missedSince(done, today)
		}
	}

	count := 0
	for d := start; ; d = d.AddDays(-1) {
		if _, ok := done[d]; !ok {
			break
		}
		count++
	}
	return count
}

// missedSince counts the undone days strictly between the most recent done
// day and today. Future-dated done entries are ignored.
func missedSince(done map[Date]struct{}, today Date) int {
	var last Date
	for d := range done {
		if d.Before(today) && last.Before(d) {
			last = d
		}
	}
	if last.IsZero() {
		return 0
	}
	return today.DaysSince(last) - 1
}
