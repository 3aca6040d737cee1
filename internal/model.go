package internal

import (
	"encoding/json"
	"time"
)

// MaxRoomMembers caps how many people can share a room.
const MaxRoomMembers = 4

// CompletionMap maps an ISO date (YYYY-MM-DD) to per-member completion flags.
type CompletionMap map[string]map[string]bool

// UnmarshalJSON keeps only well-formed entries: the value for a date must be
// an object and leaf values must be JSON booleans. Anything else is dropped so
// partially migrated records degrade to "not done" instead of failing to load.
func (m *CompletionMap) UnmarshalJSON(data []byte) error {
	*m = CompletionMap{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for date, v := range raw {
		var day map[string]json.RawMessage
		if err := json.Unmarshal(v, &day); err != nil {
			continue
		}
		entry := make(map[string]bool, len(day))
		for user, bv := range day {
			var b bool
			if err := json.Unmarshal(bv, &b); err != nil {
				continue
			}
			entry[user] = b
		}
		(*m)[date] = entry
	}
	return nil
}

// Completed reports whether userID checked off the given date. Only a literal
// true counts; absence and explicit false are equivalent.
func (m CompletionMap) Completed(date, userID string) bool {
	return m[date][userID]
}

func (m CompletionMap) Clone() CompletionMap {
	if m == nil {
		return nil
	}
	out := make(CompletionMap, len(m))
	for date, day := range m {
		entry := make(map[string]bool, len(day))
		for user, done := range day {
			entry[user] = done
		}
		out[date] = entry
	}
	return out
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	UserID    string `json:"userId"`
	FirstDate string `json:"firstDate,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	// CompletedDates is the current ledger shape. CheckIns is the legacy
	// shape: read-only, never written by new code, consulted only when
	// CompletedDates does not mark a date as done.
	CompletedDates CompletionMap `json:"completedDates,omitempty"`
	CheckIns       CompletionMap `json:"checkIns,omitempty"`
}

// Clone returns a copy whose ledger maps are independent of the receiver's.
func (it Item) Clone() Item {
	it.CompletedDates = it.CompletedDates.Clone()
	it.CheckIns = it.CheckIns.Clone()
	return it
}

// Normalize projects legacy check-ins into the current ledger shape. It runs
// only when the item still lacks a CompletedDates map; items carrying both
// shapes are left untouched.
func (it *Item) Normalize() {
	if it == nil || it.CompletedDates != nil || len(it.CheckIns) == 0 {
		return
	}
	out := CompletionMap{}
	for date, day := range it.CheckIns {
		for user, done := range day {
			if !done {
				continue
			}
			if out[date] == nil {
				out[date] = map[string]bool{}
			}
			out[date][user] = true
		}
	}
	it.CompletedDates = out
}

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creatorId"`
	Members   []Member  `json:"members"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone deep-copies the room so callers can mutate members, items, and their
// ledger maps without touching the original.
func (r Room) Clone() Room {
	if r.Members != nil {
		r.Members = append([]Member(nil), r.Members...)
	}
	if r.Items != nil {
		items := make([]Item, len(r.Items))
		for i := range r.Items {
			items[i] = r.Items[i].Clone()
		}
		r.Items = items
	}
	return r
}

func (r *Room) HasMember(userID string) bool {
	if r == nil {
		return false
	}
	for _, m := range r.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Room change feed event types.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

type RoomEvent struct {
	Type   string `json:"eventType"`
	RoomID string `json:"roomId"`
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
