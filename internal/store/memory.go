package store

import (
	"context"
	"sync"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// MemoryStore is an in-process RoomStore with the same broadcast contract as
// the Mongo/Redis one. It backs tests and single-node development.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	room    *model.Room
	nextSub int
	subs    map[int]chan *model.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*roomEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = &roomEntry{
		room: room.Clone(),
		subs: make(map[int]chan *model.Room),
	}
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.room.Clone(), nil
}

func (s *MemoryStore) GetByCode(_ context.Context, code string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.rooms {
		if entry.room.Code == code {
			return entry.room.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[room.ID]
	if !ok {
		return ErrNotFound
	}
	entry.room = room.Clone()
	entry.broadcast()
	return nil
}

func (s *MemoryStore) SetReveal(_ context.Context, id string, reveal *model.Reveal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[id]
	if !ok {
		return false, ErrNotFound
	}
	// Same guard the Mongo filter expresses: commit only while no reveal for
	// this or a later question is stored.
	if entry.room.LastReveal != nil && entry.room.LastReveal.QuestionIndex >= reveal.QuestionIndex {
		return false, nil
	}
	entry.room.LastReveal = reveal.Clone()
	entry.broadcast()
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[id]
	if !ok {
		return ErrNotFound
	}
	for _, ch := range entry.subs {
		close(ch)
	}
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) Subscribe(_ context.Context, id string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	ch := make(chan *model.Room, 16)
	key := entry.nextSub
	entry.nextSub++
	entry.subs[key] = ch
	return &memorySubscription{store: s, roomID: id, key: key, ch: ch}, nil
}

// broadcast fans the current document out to every subscriber. Callers hold
// the store lock. Sends never block: a full buffer drops the snapshot, the
// consumer converges on the next one.
func (e *roomEntry) broadcast() {
	for _, ch := range e.subs {
		select {
		case ch <- e.room.Clone():
		default:
		}
	}
}

type memorySubscription struct {
	store  *MemoryStore
	roomID string
	key    int
	ch     chan *model.Room

	once sync.Once
}

func (s *memorySubscription) Updates() <-chan *model.Room {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		if entry, ok := s.store.rooms[s.roomID]; ok {
			if _, live := entry.subs[s.key]; live {
				delete(entry.subs, s.key)
				close(s.ch)
			}
		}
	})
	return nil
}
