package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/storage"
)

// ListenObserver relays pg_notify events from the rooms channel.
type ListenObserver struct {
	pool   *pgxpool.Pool
	events chan internal.RoomEvent
	cancel context.CancelFunc
	logger internal.Logger
}

func NewListenObserver(pool *pgxpool.Pool, logger internal.Logger) *ListenObserver {
	ctx, cancel := context.WithCancel(context.Background())
	o := &ListenObserver{
		pool:   pool,
		events: make(chan internal.RoomEvent, 32),
		cancel: cancel,
		logger: logger,
	}
	go o.run(ctx)
	return o
}

func (o *ListenObserver) Events() <-chan internal.RoomEvent { return o.events }

func (o *ListenObserver) Close() error {
	o.cancel()
	return nil
}

func (o *ListenObserver) run(ctx context.Context) {
	defer close(o.events)
	for {
		if err := o.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			o.logger.Warnf("notify: listen loop failed, retrying: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (o *ListenObserver) listen(ctx context.Context) error {
	conn, err := o.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+storage.NotifyChannel); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev internal.RoomEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			o.logger.Warnf("notify: dropping malformed payload %q: %v", n.Payload, err)
			continue
		}
		select {
		case o.events <- ev:
		default:
			// Subscribers refetch on any event, so dropping under
			// backpressure loses nothing.
		}
	}
}
