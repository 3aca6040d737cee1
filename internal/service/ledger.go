package service

import (
	"time"

	"github.com/yourname/habitroom/internal"
)

const dateLayout = "2006-01-02"

// Today returns the server-local current date key. Streak and points always
// anchor here, never at the date the client happens to be viewing.
func Today() string {
	return time.Now().Format(dateLayout)
}

// DaysAgo returns the date key n days before anchor, or "" when the anchor
// does not parse.
func DaysAgo(anchor string, n int) string {
	t, err := time.Parse(dateLayout, anchor)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -n).Format(dateLayout)
}

func PreviousDate(date string) string {
	return DaysAgo(date, 1)
}

// IsCompleted reports whether userID completed the item on the given date.
// The current ledger is checked first; the legacy check-in shape only counts
// when the current one does not already mark the date as done.
func IsCompleted(item *internal.Item, date, userID string) bool {
	if item == nil {
		return false
	}
	if item.CompletedDates.Completed(date, userID) {
		return true
	}
	return item.CheckIns.Completed(date, userID)
}

// SetCompletion records a check-in (or un-check, with completed=false) in the
// current ledger. The legacy CheckIns shape is never written.
func SetCompletion(item *internal.Item, date, userID string, completed bool) {
	if item == nil {
		return
	}
	if item.CompletedDates == nil {
		item.CompletedDates = internal.CompletionMap{}
	}
	day := item.CompletedDates[date]
	if day == nil {
		day = map[string]bool{}
		item.CompletedDates[date] = day
	}
	day[userID] = completed
}

// ledgerView returns the item's completion ledger with the legacy shape
// projected in, without mutating the item.
func ledgerView(item *internal.Item) internal.CompletionMap {
	if item == nil {
		return nil
	}
	if item.CompletedDates != nil {
		return item.CompletedDates
	}
	view := *item
	view.Normalize()
	return view.CompletedDates
}
