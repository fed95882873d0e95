package dispatch

import (
	"context"
	"log"

	"github.com/example/room-session-demo/events"
	"github.com/go-monolith/mono"
)

// Module wraps the dispatcher for the framework lifecycle and wires the
// EventBus into it.
type Module struct {
	dispatcher *Dispatcher
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the dispatch module.
func NewModule(dispatcher *Dispatcher) *Module {
	return &Module{dispatcher: dispatcher}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "dispatch"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.dispatcher.SetEventBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomJoinedV1.ToBase(),
		events.RoomLeftV1.ToBase(),
		events.MessageRelayedV1.ToBase(),
		events.TypingChangedV1.ToBase(),
	}
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[dispatch] Module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[dispatch] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": m.dispatcher.ConnCount(),
		},
	}
}

// Dispatcher returns the dispatcher for the API module.
func (m *Module) Dispatcher() *Dispatcher {
	return m.dispatcher
}
