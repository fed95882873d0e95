package registry

import (
	"context"
	"testing"

	"github.com/example/room-session-demo/domain/session"
)

func TestModule_StartSeedsCatalog(t *testing.T) {
	m := NewModule([]session.RoomConfig{
		{Slug: "general", Title: "General", MaxUsers: 10},
		{Slug: "gaming", Title: "Gaming", MaxUsers: 10},
	})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.Registry().Len() != 2 {
		t.Errorf("Len() = %d after seeding, want 2", m.Registry().Len())
	}

	if _, err := m.Registry().Find("general"); err != nil {
		t.Errorf("Find(general) error = %v, want seeded room", err)
	}
}

func TestModule_StartFailsOnDuplicateSeed(t *testing.T) {
	m := NewModule([]session.RoomConfig{
		{Slug: "general", Title: "General", MaxUsers: 10},
		{Slug: "general", Title: "General Again", MaxUsers: 10},
	})

	if err := m.Start(context.Background()); err == nil {
		t.Error("Start() = nil for a catalog with duplicate slugs, want error")
	}
}

func TestModule_AnnouncementsQueuedUntilBus(t *testing.T) {
	m := NewModule([]session.RoomConfig{
		{Slug: "general", Title: "General", MaxUsers: 10},
		{Slug: "gaming", Title: "Gaming", MaxUsers: 10},
	})

	// Seeding before the bus arrives queues one announcement per room.
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(m.pending) != 2 {
		t.Fatalf("pending announcements = %d after bus-less seeding, want 2", len(m.pending))
	}
	if m.pending[0].Room != "general" || m.pending[1].Room != "gaming" {
		t.Errorf("pending rooms = [%s %s], want seed order", m.pending[0].Room, m.pending[1].Room)
	}

	if _, err := m.CreateRoom(session.RoomConfig{Slug: "music", Title: "Music", MaxUsers: 10}); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if len(m.pending) != 3 {
		t.Errorf("pending announcements = %d after bus-less create, want 3", len(m.pending))
	}

	// A failed create queues nothing.
	if _, err := m.CreateRoom(session.RoomConfig{Slug: "music", Title: "Music", MaxUsers: 10}); err != ErrRoomExists {
		t.Fatalf("duplicate CreateRoom() error = %v, want ErrRoomExists", err)
	}
	if len(m.pending) != 3 {
		t.Errorf("pending announcements = %d after failed create, want 3", len(m.pending))
	}

	// A nil bus keeps the queue intact for the real one.
	m.SetEventBus(nil)
	if len(m.pending) != 3 {
		t.Errorf("pending announcements = %d after SetEventBus(nil), want 3", len(m.pending))
	}
}
