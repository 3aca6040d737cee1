package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourname/habitroom/internal"
)

const anchor = "2024-03-10"

// itemDoneFor builds an item completed by userID on the n most recent days
// counting back from anchor.
func itemDoneFor(userID string, days int) internal.Item {
	item := internal.Item{ID: "i-" + userID, UserID: userID}
	for i := 0; i < days; i++ {
		SetCompletion(&item, DaysAgo(anchor, i), userID, true)
	}
	return item
}

func TestItemStreakStopsAtFirstMiss(t *testing.T) {
	item := itemDoneFor("u1", 5)
	assert.Equal(t, 5, ItemStreak(&item, "u1", anchor))

	// A miss today resets the streak entirely.
	SetCompletion(&item, anchor, "u1", false)
	assert.Equal(t, 0, ItemStreak(&item, "u1", anchor))
}

func TestItemStreakCapsAtWindow(t *testing.T) {
	item := itemDoneFor("u1", 400)
	assert.Equal(t, 365, ItemStreak(&item, "u1", anchor))
}

func TestItemStreakLegacyShape(t *testing.T) {
	item := internal.Item{
		UserID: "u1",
		CheckIns: internal.CompletionMap{
			anchor:       {"u1": true},
			"2024-03-09": {"u1": true},
		},
	}
	assert.Equal(t, 2, ItemStreak(&item, "u1", anchor))
}

func TestUserStreakTakesMaxAcrossItems(t *testing.T) {
	room := &internal.Room{
		Members: []internal.Member{{ID: "u1"}},
		Items: []internal.Item{
			itemDoneFor("u1", 3),
			itemDoneFor("u1", 7),
		},
	}
	assert.Equal(t, 7, UserStreak(room, "u1", anchor))
}

func TestUserPointsSumAcrossItems(t *testing.T) {
	room := &internal.Room{
		Members: []internal.Member{{ID: "u1"}},
		Items: []internal.Item{
			itemDoneFor("u1", 3),
			itemDoneFor("u1", 7),
		},
	}
	assert.Equal(t, 100, UserPoints(room, "u1", anchor))
}

func TestUserPointsIgnoresDaysOutsideWindow(t *testing.T) {
	item := internal.Item{UserID: "u1"}
	SetCompletion(&item, DaysAgo(anchor, 29), "u1", true)
	SetCompletion(&item, DaysAgo(anchor, 30), "u1", true)
	room := &internal.Room{Items: []internal.Item{item}}
	assert.Equal(t, 10, UserPoints(room, "u1", anchor))
}

func TestLeaderboardScoreScenario(t *testing.T) {
	// One item completed on each of the last 5 days, none before.
	item := itemDoneFor("u1", 5)
	room := &internal.Room{
		Members: []internal.Member{{ID: "u1", Name: "Ann"}},
		Items:   []internal.Item{item},
	}
	assert.Equal(t, 5, UserStreak(room, "u1", anchor))
	assert.Equal(t, 50, UserPoints(room, "u1", anchor))
	assert.Equal(t, 75, LeaderboardScore(room, "u1", anchor))
}

func TestLeaderboardOrderingAndRanks(t *testing.T) {
	room := &internal.Room{
		Members: []internal.Member{
			{ID: "u1", Name: "Ann"},
			{ID: "u2", Name: "Ben"},
			{ID: "u3", Name: "Cay"},
			{ID: "u4", Name: "Dee"},
		},
		Items: []internal.Item{
			itemDoneFor("u2", 2),
			itemDoneFor("u3", 5),
		},
	}
	board := Leaderboard(room, anchor)
	assert.Len(t, board, 4)
	assert.Equal(t, "u3", board[0].Member.ID)
	assert.Equal(t, "u2", board[1].Member.ID)
	// Tied at zero: original member order is preserved.
	assert.Equal(t, "u1", board[2].Member.ID)
	assert.Equal(t, "u4", board[3].Member.ID)

	assert.Equal(t, "🥇", board[0].Rank)
	assert.Equal(t, "🥈", board[1].Rank)
	assert.Equal(t, "🥉", board[2].Rank)
	assert.Equal(t, "4.", board[3].Rank)
}

func TestCalculatorsDegradeOnMalformedInput(t *testing.T) {
	assert.Equal(t, 0, UserStreak(nil, "u1", anchor))
	assert.Equal(t, 0, UserPoints(nil, "u1", anchor))
	assert.Nil(t, Leaderboard(nil, anchor))

	room := &internal.Room{Members: []internal.Member{{ID: "u1"}}}
	assert.Equal(t, 0, LeaderboardScore(room, "u1", anchor))
	assert.Equal(t, 0, UserPoints(room, "u1", "garbage"))
	assert.Equal(t, 0, UserStreak(room, "u1", "garbage"))
}

func TestUserProgressFollowsViewedDate(t *testing.T) {
	done := internal.Item{ID: "a", UserID: "u1"}
	SetCompletion(&done, "2024-03-05", "u1", true)
	pending := internal.Item{ID: "b", UserID: "u1"}
	room := &internal.Room{Items: []internal.Item{done, pending}}

	p := UserProgress(room, "u1", "2024-03-05")
	assert.Equal(t, Progress{Completed: 1, Total: 2, Percentage: 50}, p)

	p = UserProgress(room, "u1", "2024-03-06")
	assert.Equal(t, Progress{Completed: 0, Total: 2, Percentage: 0}, p)

	assert.Equal(t, Progress{}, UserProgress(room, "u9", "2024-03-05"))
}

func TestDashboardTotalsAcrossRooms(t *testing.T) {
	roomA := internal.Room{Items: []internal.Item{itemDoneFor("u1", 2)}}
	roomB := internal.Room{Items: []internal.Item{itemDoneFor("u1", 6)}}
	rooms := []internal.Room{roomA, roomB}

	assert.Equal(t, 80, TotalPoints(rooms, "u1", anchor))
	assert.Equal(t, 6, BestStreak(rooms, "u1", anchor))
}
