package dispatch

import (
	"log"
	"sync"
	"time"

	"github.com/example/room-session-demo/domain/session"
	"github.com/example/room-session-demo/events"
	"github.com/example/room-session-demo/modules/registry"
	"github.com/go-monolith/mono"
)

// Sender delivers outbound envelopes to connections. Target sets are
// computed by the dispatcher from registry membership at mutation time,
// so what a client receives is always consistent with the membership
// snapshot delivered alongside it.
type Sender interface {
	Unicast(connID string, env Envelope)
	Multicast(connIDs []string, env Envelope)
}

// Dispatcher is the session protocol state machine: it validates each
// inbound intent against the connection's current state, applies the
// registry mutation, and fans the resulting deltas out to the affected
// member set. A malformed or out-of-state intent is answered with a
// unicast rejection and never tears down the connection.
type Dispatcher struct {
	registry *registry.Registry
	sender   Sender
	eventBus mono.EventBus
	clock    func() time.Time

	mu       sync.Mutex
	conns    map[string]*session.Connection
	colorIdx int
}

// NewDispatcher creates a dispatcher over the given registry and sender.
func NewDispatcher(reg *registry.Registry, sender Sender) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		sender:   sender,
		clock:    time.Now,
		conns:    make(map[string]*session.Connection),
	}
}

// SetEventBus installs the bus used for observer-grade domain events.
func (d *Dispatcher) SetEventBus(bus mono.EventBus) {
	d.eventBus = bus
}

// SetClock overrides the relay clock.
func (d *Dispatcher) SetClock(clock func() time.Time) {
	d.clock = clock
}

// Connect registers a new connection with its externally issued
// identity attributes and assigns it a display color.
func (d *Dispatcher) Connect(id, name, countryCode string) *session.Connection {
	d.mu.Lock()
	conn := &session.Connection{
		ID:          id,
		Name:        name,
		CountryCode: countryCode,
		ChatColor:   chatColors[d.colorIdx%len(chatColors)],
	}
	d.colorIdx++
	d.conns[id] = conn
	d.mu.Unlock()

	d.sender.Unicast(id, Envelope{Event: EventConnected, Data: ConnectedInfo{
		ID:        conn.ID,
		Name:      conn.Name,
		ChatColor: conn.ChatColor,
	}})
	return conn
}

// Disconnect evicts a connection, running the same room cleanup as an
// explicit leave but without an acknowledgement to the gone socket.
func (d *Dispatcher) Disconnect(id string) {
	d.mu.Lock()
	conn, ok := d.conns[id]
	delete(d.conns, id)
	d.mu.Unlock()
	if !ok {
		return
	}
	d.leaveRoom(conn, false)
}

// ConnCount returns the number of registered connections.
func (d *Dispatcher) ConnCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// Handle processes one inbound intent from a connection.
func (d *Dispatcher) Handle(id string, intent Intent) {
	d.mu.Lock()
	conn, ok := d.conns[id]
	d.mu.Unlock()
	if !ok {
		return
	}

	switch intent.Event {
	case IntentJoinRoom:
		d.joinRoom(conn, intent)
	case IntentSendMessage:
		d.sendMessage(conn, intent)
	case IntentStartTyping:
		d.setTyping(conn, true)
	case IntentStopTyping:
		d.setTyping(conn, false)
	case IntentLeaveRoom:
		d.leaveRoom(conn, true)
	default:
		d.sendError(conn, "unknown intent: "+intent.Event)
	}
}

func (d *Dispatcher) joinRoom(conn *session.Connection, intent Intent) {
	if conn.Room != "" {
		d.sendError(conn, "already in a room")
		return
	}

	room, err := d.registry.Find(intent.Room)
	if err != nil {
		d.sender.Unicast(conn.ID, Envelope{Event: EventRoomNotFound})
		return
	}

	snapshot, targets, err := room.Join(conn, intent.Password)
	switch err {
	case nil:
	case registry.ErrRoomFull:
		d.sender.Unicast(conn.ID, Envelope{Event: EventRoomFull})
		return
	case registry.ErrAuthRequired:
		d.sender.Unicast(conn.ID, Envelope{Event: EventAuthRequired})
		return
	default:
		d.sendError(conn, err.Error())
		return
	}

	// The joiner receives its snapshot as part of the room broadcast;
	// existing members see the updated user list the same way.
	d.sender.Multicast(targets, Envelope{Event: EventRoomData, Data: snapshot})
	d.sender.Multicast(targets, Envelope{Event: EventMessage, Data: ChatMessage{
		User:      conn.Name,
		Type:      MessageTypeJoined,
		ChatColor: conn.ChatColor,
		Timestamp: FormatClock(d.clock()),
	}})

	d.publishJoined(room.Slug(), conn.Name, len(targets))
}

func (d *Dispatcher) sendMessage(conn *session.Connection, intent Intent) {
	if conn.Room == "" {
		d.sendError(conn, "not in a room")
		return
	}
	if err := ValidateMessage(intent.Message); err != nil {
		d.sendError(conn, err.Error())
		return
	}

	room, err := d.registry.Find(conn.Room)
	if err != nil {
		d.sendError(conn, "not in a room")
		return
	}

	// Sending clears the sender's typing state; the typing delta goes
	// out before the message itself.
	if changed, typingNames, targets, _ := room.SetTyping(conn, false); changed {
		d.sender.Multicast(targets, Envelope{Event: EventChangedTyping, Data: typingNames})
	}

	now := d.clock()
	d.sender.Multicast(room.MemberIDs(), Envelope{Event: EventMessage, Data: ChatMessage{
		User:      conn.Name,
		Type:      MessageTypeChat,
		Message:   intent.Message,
		ChatColor: conn.ChatColor,
		Timestamp: FormatClock(now),
	}})

	d.publishRelayed(room.Slug(), conn.Name, len(intent.Message), now)
}

func (d *Dispatcher) setTyping(conn *session.Connection, typing bool) {
	if conn.Room == "" {
		d.sendError(conn, "not in a room")
		return
	}

	room, err := d.registry.Find(conn.Room)
	if err != nil {
		d.sendError(conn, "not in a room")
		return
	}

	changed, typingNames, targets, err := room.SetTyping(conn, typing)
	if err != nil {
		d.sendError(conn, err.Error())
		return
	}
	if !changed {
		return
	}

	d.sender.Multicast(targets, Envelope{Event: EventChangedTyping, Data: typingNames})
	d.publishTyping(room.Slug(), conn.Name, typing, len(typingNames))
}

// leaveRoom runs the leave path. An explicit leave is acknowledged to
// the leaver even when it was not a member (idempotent); membership
// broadcasts only go out when the member set actually changed. A leaver
// who was typing also clears the typing indicator at the remaining
// members, before the membership delta.
func (d *Dispatcher) leaveRoom(conn *session.Connection, explicit bool) {
	slug := conn.Room
	if slug != "" {
		if room, err := d.registry.Find(slug); err == nil {
			upd := room.Leave(conn)
			if upd.Left {
				if upd.TypingChanged {
					d.sender.Multicast(upd.MemberIDs, Envelope{Event: EventChangedTyping, Data: upd.Typing})
				}
				d.sender.Multicast(upd.MemberIDs, Envelope{Event: EventSomeoneLeft, Data: upd.Users})
				d.sender.Multicast(upd.MemberIDs, Envelope{Event: EventMessage, Data: ChatMessage{
					User:      conn.Name,
					Type:      MessageTypeLeft,
					ChatColor: conn.ChatColor,
					Timestamp: FormatClock(d.clock()),
				}})
				d.publishLeft(slug, conn.Name, len(upd.MemberIDs))
			}
		}
	}

	if explicit {
		d.sender.Unicast(conn.ID, Envelope{Event: EventLeavingRoom})
	}
}

func (d *Dispatcher) sendError(conn *session.Connection, msg string) {
	d.sender.Unicast(conn.ID, Envelope{Event: EventError, Data: msg})
}

func (d *Dispatcher) publishJoined(room, user string, occupancy int) {
	if d.eventBus == nil {
		return
	}
	event := events.RoomJoinedEvent{
		Room:      room,
		User:      user,
		Occupancy: occupancy,
		Timestamp: d.clock(),
	}
	if err := events.RoomJoinedV1.Publish(d.eventBus, event, nil); err != nil {
		log.Printf("[dispatch] Failed to publish RoomJoined event: %v", err)
	}
}

func (d *Dispatcher) publishLeft(room, user string, occupancy int) {
	if d.eventBus == nil {
		return
	}
	event := events.RoomLeftEvent{
		Room:      room,
		User:      user,
		Occupancy: occupancy,
		Timestamp: d.clock(),
	}
	if err := events.RoomLeftV1.Publish(d.eventBus, event, nil); err != nil {
		log.Printf("[dispatch] Failed to publish RoomLeft event: %v", err)
	}
}

func (d *Dispatcher) publishRelayed(room, user string, length int, now time.Time) {
	if d.eventBus == nil {
		return
	}
	event := events.MessageRelayedEvent{
		Room:      room,
		User:      user,
		Length:    length,
		Timestamp: now,
	}
	if err := events.MessageRelayedV1.Publish(d.eventBus, event, nil); err != nil {
		log.Printf("[dispatch] Failed to publish MessageRelayed event: %v", err)
	}
}

func (d *Dispatcher) publishTyping(room, user string, typing bool, count int) {
	if d.eventBus == nil {
		return
	}
	event := events.TypingChangedEvent{
		Room:        room,
		User:        user,
		Typing:      typing,
		TypingCount: count,
		Timestamp:   d.clock(),
	}
	if err := events.TypingChangedV1.Publish(d.eventBus, event, nil); err != nil {
		log.Printf("[dispatch] Failed to publish TypingChanged event: %v", err)
	}
}
