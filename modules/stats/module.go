package stats

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/example/room-session-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RoomStats are per-room counters accumulated from session events.
type RoomStats struct {
	Messages      uint64 `json:"messages"`
	Joins         uint64 `json:"joins"`
	Leaves        uint64 `json:"leaves"`
	TypingChanges uint64 `json:"typing_changes"`
	BytesRelayed  uint64 `json:"bytes_relayed"`
}

// Module consumes session events off the bus and keeps per-room
// counters. It is a pure observer: the wire fan-out never depends on it.
type Module struct {
	mu    sync.RWMutex
	rooms map[string]*RoomStats
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the stats module.
func NewModule() *Module {
	return &Module{
		rooms: make(map[string]*RoomStats),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[stats] Module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[stats] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	tracked := len(m.rooms)
	m.mu.RUnlock()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tracked_rooms": tracked,
		},
	}
}

// RegisterEventConsumers registers handlers for session events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageRelayedV1, m.handleMessageRelayed, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageRelayed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomJoinedV1, m.handleRoomJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomLeftV1, m.handleRoomLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TypingChangedV1, m.handleTypingChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TypingChanged consumer: %w", err)
	}

	log.Println("[stats] Registered event consumers: MessageRelayed, RoomJoined, RoomLeft, TypingChanged")
	return nil
}

func (m *Module) handleMessageRelayed(_ context.Context, event events.MessageRelayedEvent, _ *mono.Msg) error {
	s := m.room(event.Room)
	m.mu.Lock()
	s.Messages++
	s.BytesRelayed += uint64(event.Length)
	m.mu.Unlock()
	return nil
}

func (m *Module) handleRoomJoined(_ context.Context, event events.RoomJoinedEvent, _ *mono.Msg) error {
	s := m.room(event.Room)
	m.mu.Lock()
	s.Joins++
	m.mu.Unlock()
	return nil
}

func (m *Module) handleRoomLeft(_ context.Context, event events.RoomLeftEvent, _ *mono.Msg) error {
	s := m.room(event.Room)
	m.mu.Lock()
	s.Leaves++
	m.mu.Unlock()
	return nil
}

func (m *Module) handleTypingChanged(_ context.Context, event events.TypingChangedEvent, _ *mono.Msg) error {
	s := m.room(event.Room)
	m.mu.Lock()
	s.TypingChanges++
	m.mu.Unlock()
	return nil
}

// room returns the counter record for a room, creating it on first use.
func (m *Module) room(slug string) *RoomStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rooms[slug]
	if !ok {
		s = &RoomStats{}
		m.rooms[slug] = s
	}
	return s
}

// Snapshot returns a copy of all per-room counters.
func (m *Module) Snapshot() map[string]RoomStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]RoomStats, len(m.rooms))
	for slug, s := range m.rooms {
		out[slug] = *s
	}
	return out
}
