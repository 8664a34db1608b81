package match

import (
	"context"
	"sync"

	"spellstreak/internal/models"
)

// Transactor is the atomic read-modify-write boundary over shared room
// state. Update must guarantee that no other write to the same room is
// interleaved between the read handed to fn and the committed write;
// everything ApplyAnswer relies on follows from that.
type Transactor interface {
	Create(ctx context.Context, room *models.Room) error
	Get(ctx context.Context, roomID string) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error)
	Delete(ctx context.Context, roomID string) error
}

// Subscriber delivers remote room changes. The returned cancel func must
// be called when leaving a room so a stale session stops receiving
// updates.
type Subscriber interface {
	Subscribe(roomID string, fn func(*models.Room)) (cancel func())
}

// Hub fans room updates out to subscribers. Stores publish into it after
// every committed write.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[int]func(*models.Room)
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]func(*models.Room))}
}

// Subscribe registers fn for changes to roomID.
func (h *Hub) Subscribe(roomID string, fn func(*models.Room)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[int]func(*models.Room))
	}
	id := h.next
	h.next++
	h.subs[roomID][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[roomID], id)
		if len(h.subs[roomID]) == 0 {
			delete(h.subs, roomID)
		}
	}
}

// Publish delivers a committed room state to every subscriber. Each
// subscriber gets its own clone; callbacks run outside the hub lock.
func (h *Hub) Publish(room *models.Room) {
	h.mu.Lock()
	fns := make([]func(*models.Room), 0, len(h.subs[room.ID]))
	for _, fn := range h.subs[room.ID] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(room.Clone())
	}
}

// MemStore is an in-memory Transactor. A single mutex serializes all
// room writes, which trivially satisfies the isolation contract; it is
// the store used in tests and single-node deployments.
type MemStore struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
	hub   *Hub
}

// NewMemStore creates an empty in-memory store publishing into hub.
// A nil hub disables publication.
func NewMemStore(hub *Hub) *MemStore {
	return &MemStore{rooms: make(map[string]*models.Room), hub: hub}
}

func (s *MemStore) Create(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	s.rooms[room.ID] = room.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemStore) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.RoomCode == code {
			return room.Clone(), nil
		}
	}
	return nil, ErrRoomNotFound
}

// Update runs fn against a clone of the current room state and commits
// the clone iff fn succeeds. Concurrent Updates for the same room are
// fully serialized.
func (s *MemStore) Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	next := room.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next.Version = room.Version + 1
	s.rooms[roomID] = next
	committed := next.Clone()
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Publish(committed)
	}
	return committed, nil
}

func (s *MemStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
	return nil
}
