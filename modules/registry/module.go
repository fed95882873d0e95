package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/room-session-demo/domain/session"
	"github.com/example/room-session-demo/events"
	"github.com/go-monolith/mono"
)

// Module owns the room registry and seeds it from a fixed catalog on
// start. Room creation (seed or API) publishes RoomOpened events; rooms
// created before the framework installs the EventBus are announced as
// soon as it arrives, so catalog seeding is never silently unobserved.
type Module struct {
	registry *Registry
	catalog  []session.RoomConfig

	mu       sync.Mutex
	eventBus mono.EventBus
	pending  []events.RoomOpenedEvent
}

// Compile-time interface checks.
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
)

// NewModule creates the registry module with a seed catalog.
func NewModule(catalog []session.RoomConfig) *Module {
	return &Module{
		registry: NewRegistry(),
		catalog:  catalog,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// SetEventBus receives the EventBus from the framework and flushes any
// announcements queued before it was installed.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.mu.Lock()
	m.eventBus = bus
	var pending []events.RoomOpenedEvent
	if bus != nil {
		pending = m.pending
		m.pending = nil
	}
	m.mu.Unlock()

	for _, event := range pending {
		m.publishOpened(bus, event)
	}
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomOpenedV1.ToBase(),
	}
}

// Start seeds the registry from the catalog.
func (m *Module) Start(_ context.Context) error {
	for _, cfg := range m.catalog {
		if _, err := m.CreateRoom(cfg); err != nil {
			return fmt.Errorf("failed to seed room %q: %w", cfg.Slug, err)
		}
	}
	log.Printf("[registry] Module started with %d catalog rooms", m.registry.Len())
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[registry] Module stopped")
	return nil
}

// Registry returns the room registry for dependent modules.
func (m *Module) Registry() *Registry {
	return m.registry
}

// CreateRoom adds a room to the registry and announces it. Without a
// bus yet, the announcement is queued for SetEventBus.
func (m *Module) CreateRoom(cfg session.RoomConfig) (*Room, error) {
	room, err := m.registry.Create(cfg)
	if err != nil {
		return nil, err
	}

	event := events.RoomOpenedEvent{
		Room:      cfg.Slug,
		Title:     cfg.Title,
		Category:  cfg.Category,
		MaxUsers:  cfg.MaxUsers,
		Private:   cfg.Private,
		Timestamp: time.Now(),
	}

	m.mu.Lock()
	bus := m.eventBus
	if bus == nil {
		m.pending = append(m.pending, event)
	}
	m.mu.Unlock()

	if bus != nil {
		m.publishOpened(bus, event)
	}
	return room, nil
}

func (m *Module) publishOpened(bus mono.EventBus, event events.RoomOpenedEvent) {
	if err := events.RoomOpenedV1.Publish(bus, event, nil); err != nil {
		log.Printf("[registry] Failed to publish RoomOpened event: %v", err)
	}
}
