package registry

import (
	"sort"
	"sync"

	"github.com/example/room-session-demo/domain/session"
)

// Registry is the process-wide mapping from room slug to Room. It is an
// explicit instance injected into the dispatcher rather than a package
// singleton so tests can run isolated registries in parallel.
//
// Empty rooms are retained: the catalog defines which rooms exist and a
// join against a missing slug is a strict-lookup rejection, so members
// leaving must not delete the room. Remove exists for operational
// deletion and refuses to remove an occupied room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Find returns the room for slug, or ErrRoomNotFound. This is the
// strict lookup used by the join path.
func (g *Registry) Find(slug string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[slug]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// FindOrCreate returns the existing room for cfg.Slug or creates it.
func (g *Registry) FindOrCreate(cfg session.RoomConfig) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	if room, ok := g.rooms[cfg.Slug]; ok {
		return room
	}
	room := NewRoom(cfg)
	g.rooms[cfg.Slug] = room
	return room
}

// Create adds a new room, failing with ErrRoomExists if the slug is
// already taken.
func (g *Registry) Create(cfg session.RoomConfig) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[cfg.Slug]; ok {
		return nil, ErrRoomExists
	}
	room := NewRoom(cfg)
	g.rooms[cfg.Slug] = room
	return room, nil
}

// Remove deletes an empty room. It has no observable side effect on
// other rooms.
func (g *Registry) Remove(slug string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[slug]
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Empty() {
		return ErrRoomOccupied
	}
	delete(g.rooms, slug)
	return nil
}

// Rooms returns all rooms sorted by slug.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Slug() < rooms[j].Slug()
	})
	return rooms
}

// Len returns the number of rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
