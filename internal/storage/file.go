package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourname/habitroom/internal"
)

// FileStorage keeps all rooms in memory and persists them as a single JSON
// array in one file, the same format the local fallback copy uses. Saves are
// debounced onto a background worker and written atomically.
type FileStorage struct {
	rooms        map[string]*internal.Room // lower(id) -> Room
	mu           sync.RWMutex
	roomsFile    string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	maxSaveDelay time.Duration
	logger       internal.Logger
}

func NewFileStorage(roomsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		rooms:        make(map[string]*internal.Room),
		roomsFile:    roomsFile,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		maxSaveDelay: 5 * time.Second,
		logger:       logger,
	}

	if err := s.loadRooms(); err != nil {
		logger.Errorf("storage: failed to load rooms: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) loadRooms() error {
	file, err := os.Open(s.roomsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var rooms []*internal.Room
	if err := json.NewDecoder(file).Decode(&rooms); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rooms {
		if r == nil || r.ID == "" {
			continue
		}
		// One-time migration of the legacy check-in shape.
		for i := range r.Items {
			r.Items[i].Normalize()
		}
		s.rooms[strings.ToLower(r.ID)] = r
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveRooms() error {
	// Snapshot under the lock; marshaling happens outside it and must not
	// observe concurrent field updates.
	s.mu.RLock()
	rooms := make([]internal.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return atomicWriteFileJSON(s.roomsFile, rooms)
}

func (s *FileStorage) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	// Each write pushes the save out by saveDelay, but never past
	// maxSaveDelay after the first unsaved write, so a sustained burst
	// cannot starve persistence.
	var burstStart time.Time
	for {
		select {
		case <-s.saveChan:
			now := time.Now()
			if burstStart.IsZero() {
				burstStart = now
			}
			delay := s.saveDelay
			if limit := burstStart.Add(s.maxSaveDelay).Sub(now); limit < delay {
				delay = limit
				if delay < 0 {
					delay = 0
				}
			}
			timer.Reset(delay)
		case <-timer.C:
			burstStart = time.Time{}
			if err := s.saveRooms(); err != nil {
				s.logger.Errorf("storage: error saving rooms: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) scheduleSave() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)
	return s.saveRooms()
}

func (s *FileStorage) ListRooms(ctx context.Context) ([]internal.Room, error) {
	s.mu.RLock()
	rooms := make([]internal.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (s *FileStorage) GetRoom(ctx context.Context, id string) (*internal.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[strings.ToLower(id)]
	if !ok {
		return nil, ErrNotFound
	}
	// Deep copy: handlers mutate the returned room's ledger maps in place,
	// and that must never reach the canonical record without an update call.
	room := r.Clone()
	return &room, nil
}

func (s *FileStorage) InsertRoom(ctx context.Context, room *internal.Room) error {
	s.mu.Lock()
	r := room.Clone()
	s.rooms[strings.ToLower(room.ID)] = &r
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

func (s *FileStorage) UpdateRoomFields(ctx context.Context, id string, fields RoomFields) error {
	s.mu.Lock()
	r, ok := s.rooms[strings.ToLower(id)]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if fields.Name != nil {
		r.Name = *fields.Name
	}
	if fields.Members != nil {
		r.Members = append([]internal.Member(nil), (*fields.Members)...)
	}
	if fields.Items != nil {
		items := make([]internal.Item, len(*fields.Items))
		for i := range *fields.Items {
			items[i] = (*fields.Items)[i].Clone()
		}
		r.Items = items
	}
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

func (s *FileStorage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	key := strings.ToLower(id)
	if _, ok := s.rooms[key]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.rooms, key)
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// ReplaceAll swaps the whole local copy for a fresh snapshot from the remote
// store.
func (s *FileStorage) ReplaceAll(rooms []internal.Room) {
	next := make(map[string]*internal.Room, len(rooms))
	for i := range rooms {
		r := rooms[i].Clone()
		next[strings.ToLower(r.ID)] = &r
	}
	s.mu.Lock()
	s.rooms = next
	s.mu.Unlock()
	s.scheduleSave()
}

var _ RoomRepository = (*FileStorage)(nil)
