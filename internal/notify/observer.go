// Package notify delivers room change events so clients can refetch. Two
// implementations back the same interface: a Postgres LISTEN feed when the
// remote store is available, and a fixed-interval poller otherwise.
package notify

import "github.com/yourname/habitroom/internal"

type RoomObserver interface {
	Events() <-chan internal.RoomEvent
	Close() error
}
