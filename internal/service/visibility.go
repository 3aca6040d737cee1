package service

import (
	"strings"

	"github.com/yourname/habitroom/internal"
)

// IsVisible decides whether an item shows up for its owner on viewedDate.
// An item does not exist before its first date, is always shown on the first
// date itself, and afterwards retires for exactly the day after a completion:
// finishing a task removes it the next day, an unfinished task carries over.
func IsVisible(item *internal.Item, viewedDate, memberID string) bool {
	if item == nil {
		return false
	}
	first := firstDate(item, viewedDate)
	if first > viewedDate {
		return false
	}
	if first == viewedDate {
		return true
	}
	prev := PreviousDate(viewedDate)
	if prev == "" {
		return true
	}
	return !ledgerView(item).Completed(prev, memberID)
}

// firstDate resolves the item's first visible date, falling back to the date
// part of the creation timestamp for records predating the firstDate field.
func firstDate(item *internal.Item, fallback string) string {
	if item.FirstDate != "" {
		return datePart(item.FirstDate)
	}
	if item.CreatedAt != "" {
		return datePart(item.CreatedAt)
	}
	return fallback
}

func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

// VisibleItems filters a member's items down to those shown on viewedDate.
func VisibleItems(room *internal.Room, memberID, viewedDate string) []internal.Item {
	if room == nil {
		return nil
	}
	items := []internal.Item{}
	for _, item := range room.Items {
		if item.UserID != memberID {
			continue
		}
		if IsVisible(&item, viewedDate, memberID) {
			items = append(items, item)
		}
	}
	return items
}
