package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourname/habitroom/internal"
)

const (
	streakWindow = 365
	pointsWindow = 30
	pointsPerDay = 10
	streakBonus  = 5
)

type LeaderboardEntry struct {
	Member internal.Member `json:"member"`
	Score  int             `json:"score"`
	Rank   string          `json:"rank"`
}

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func userItems(room *internal.Room, userID string) []*internal.Item {
	if room == nil {
		return nil
	}
	var items []*internal.Item
	for i := range room.Items {
		if room.Items[i].UserID == userID {
			items = append(items, &room.Items[i])
		}
	}
	return items
}

// ItemStreak walks backward from today and counts consecutive completed days,
// stopping at the first miss. The walk covers at most a year.
func ItemStreak(item *internal.Item, userID, today string) int {
	if item == nil {
		return 0
	}
	anchor, err := time.Parse(dateLayout, today)
	if err != nil {
		return 0
	}
	streak := 0
	for i := 0; i < streakWindow; i++ {
		date := anchor.AddDate(0, 0, -i).Format(dateLayout)
		if !IsCompleted(item, date, userID) {
			break
		}
		streak++
	}
	return streak
}

// UserStreak is the longest current streak across the user's items, not a sum.
func UserStreak(room *internal.Room, userID, today string) int {
	best := 0
	for _, item := range userItems(room, userID) {
		if s := ItemStreak(item, userID, today); s > best {
			best = s
		}
	}
	return best
}

// UserPoints awards 10 points for every completed day in the 30 most recent
// days, summed across all of the user's items.
func UserPoints(room *internal.Room, userID, today string) int {
	anchor, err := time.Parse(dateLayout, today)
	if err != nil {
		return 0
	}
	points := 0
	for _, item := range userItems(room, userID) {
		for i := 0; i < pointsWindow; i++ {
			date := anchor.AddDate(0, 0, -i).Format(dateLayout)
			if IsCompleted(item, date, userID) {
				points += pointsPerDay
			}
		}
	}
	return points
}

// LeaderboardScore is the ranking metric: 30-day points plus a streak bonus.
// It is used only for ordering, not for the points display.
func LeaderboardScore(room *internal.Room, userID, today string) int {
	return UserPoints(room, userID, today) + UserStreak(room, userID, today)*streakBonus
}

// Leaderboard ranks the room's members by score, descending. Ties keep the
// members' original order.
func Leaderboard(room *internal.Room, today string) []LeaderboardEntry {
	if room == nil {
		return nil
	}
	entries := make([]LeaderboardEntry, 0, len(room.Members))
	for _, m := range room.Members {
		entries = append(entries, LeaderboardEntry{
			Member: m,
			Score:  LeaderboardScore(room, m.ID, today),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = rankLabel(i)
	}
	return entries
}

func rankLabel(pos int) string {
	switch pos {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", pos+1)
	}
}

// UserProgress counts how many of the user's items were completed on the
// given date. Unlike streak and points this follows the viewed date.
func UserProgress(room *internal.Room, userID, date string) Progress {
	items := userItems(room, userID)
	p := Progress{Total: len(items)}
	for _, item := range items {
		if IsCompleted(item, date, userID) {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}

// TotalPoints sums the user's 30-day points across all their rooms.
func TotalPoints(rooms []internal.Room, userID, today string) int {
	total := 0
	for i := range rooms {
		total += UserPoints(&rooms[i], userID, today)
	}
	return total
}

// BestStreak is the user's longest current streak across all their rooms.
func BestStreak(rooms []internal.Room, userID, today string) int {
	best := 0
	for i := range rooms {
		if s := UserStreak(&rooms[i], userID, today); s > best {
			best = s
		}
	}
	return best
}
