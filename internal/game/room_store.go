// internal/game/room_store.go
package game

import "sync"

// RoomStore is the process-wide registry mapping room codes to live rooms.
// Rooms enter on creation and leave when their last player departs; a room
// with zero players never exists here.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
	}
}

// NewCode reserves nothing; it only returns a code unused by any live room,
// regenerating on collision.
func (s *RoomStore) NewCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		code := newCode()
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}

func (s *RoomStore) Add(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.rooms[id]
	return r, exists
}

func (s *RoomStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

func (s *RoomStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
