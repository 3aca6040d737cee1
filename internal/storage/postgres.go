package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/habitroom/internal"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying room change events.
const NotifyChannel = "room_events"

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStorage{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		logger.Warnf("failed to ensure rooms schema: %v", err)
	}
	return s, nil
}

func (p *PostgresStorage) Pool() *pgxpool.Pool { return p.pool }

func (p *PostgresStorage) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS rooms (
		id         text PRIMARY KEY,
		name       text NOT NULL,
		creator_id text NOT NULL,
		members    jsonb NOT NULL DEFAULT '[]',
		items      jsonb NOT NULL DEFAULT '[]',
		created_at timestamptz NOT NULL DEFAULT now()
	)`)
	return err
}

func (p *PostgresStorage) ListRooms(ctx context.Context) ([]internal.Room, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, creator_id, members, items, created_at FROM rooms ORDER BY created_at DESC`)
	if err != nil {
		p.logger.Errorf("failed to query rooms: %v", err)
		return nil, err
	}
	defer rows.Close()

	var rooms []internal.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			p.logger.Errorf("failed to scan room: %v", err)
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func (p *PostgresStorage) GetRoom(ctx context.Context, id string) (*internal.Room, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, creator_id, members, items, created_at FROM rooms WHERE lower(id) = lower($1)`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to scan room %s: %v", id, err)
		return nil, err
	}
	return room, nil
}

func (p *PostgresStorage) InsertRoom(ctx context.Context, room *internal.Room) error {
	members, err := json.Marshal(room.Members)
	if err != nil {
		return err
	}
	items, err := json.Marshal(room.Items)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO rooms (id, name, creator_id, members, items, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		room.ID, room.Name, room.CreatorID, members, items, room.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert room %s: %v", room.ID, err)
		return err
	}
	p.notify(ctx, internal.EventInsert, room.ID)
	return nil
}

func (p *PostgresStorage) UpdateRoomFields(ctx context.Context, id string, fields RoomFields) error {
	var sets []string
	var args []any
	n := 1
	if fields.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *fields.Name)
		n++
	}
	if fields.Members != nil {
		members, err := json.Marshal(*fields.Members)
		if err != nil {
			return err
		}
		sets = append(sets, fmt.Sprintf("members = $%d", n))
		args = append(args, members)
		n++
	}
	if fields.Items != nil {
		items, err := json.Marshal(*fields.Items)
		if err != nil {
			return err
		}
		sets = append(sets, fmt.Sprintf("items = $%d", n))
		args = append(args, items)
		n++
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE rooms SET %s WHERE lower(id) = lower($%d)", strings.Join(sets, ", "), n)
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to update room %s: %v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.notify(ctx, internal.EventUpdate, id)
	return nil
}

func (p *PostgresStorage) DeleteRoom(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE lower(id) = lower($1)`, id)
	if err != nil {
		p.logger.Errorf("failed to delete room %s: %v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.notify(ctx, internal.EventDelete, id)
	return nil
}

// notify publishes a change event on the rooms channel. Delivery is
// best-effort: listeners reconcile by refetching, so a lost event only delays
// a refresh until the next poll.
func (p *PostgresStorage) notify(ctx context.Context, eventType, roomID string) {
	payload, err := json.Marshal(internal.RoomEvent{Type: eventType, RoomID: roomID})
	if err != nil {
		return
	}
	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(payload)); err != nil {
		p.logger.Warnf("failed to notify %s for room %s: %v", eventType, roomID, err)
	}
}

func scanRoom(row pgx.Row) (*internal.Room, error) {
	var r internal.Room
	var members, items []byte
	if err := row.Scan(&r.ID, &r.Name, &r.CreatorID, &members, &items, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(members, &r.Members); err != nil {
		r.Members = nil
	}
	if err := json.Unmarshal(items, &r.Items); err != nil {
		r.Items = nil
	}
	return &r, nil
}

var _ RoomRepository = (*PostgresStorage)(nil)
