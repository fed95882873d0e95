package registry

import (
	"sync"

	"github.com/example/room-session-demo/domain/session"
)

// Room is a capacity-bounded container of member connections sharing a
// message/typing broadcast scope. The room owns the member set; a
// Connection only carries a back-reference (its current slug).
//
// Every mutation runs under the room mutex so membership and typing
// updates are linearizable: two concurrent joins cannot both pass the
// capacity check, and the snapshots/target sets returned by mutating
// methods are always consistent with the mutation they report.
type Room struct {
	mu       sync.Mutex
	slug     string
	title    string
	category string
	maxUsers int
	private  bool
	gate     Gate

	members []*session.Connection // join order
	typing  map[string]bool       // connection ID -> typing, subset of members
}

// NewRoom creates a room from a catalog entry. Private rooms with a
// stored password hash get a bcrypt gate; a private room without a hash
// admits nobody until a gate is installed.
func NewRoom(cfg session.RoomConfig) *Room {
	r := &Room{
		slug:     cfg.Slug,
		title:    cfg.Title,
		category: cfg.Category,
		maxUsers: cfg.MaxUsers,
		private:  cfg.Private,
		typing:   make(map[string]bool),
	}
	if cfg.Private && cfg.PasswordHash != "" {
		r.gate = BcryptGate(cfg.PasswordHash)
	}
	return r
}

// SetGate installs a custom password predicate, replacing any gate
// derived from the catalog entry.
func (r *Room) SetGate(gate Gate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = gate
}

// Slug returns the room's unique key.
func (r *Room) Slug() string { return r.slug }

// Config returns the room's catalog metadata.
func (r *Room) Config() session.RoomConfig {
	return session.RoomConfig{
		Slug:     r.slug,
		Title:    r.title,
		Category: r.category,
		MaxUsers: r.maxUsers,
		Private:  r.private,
	}
}

// Join adds a connection to the member set, preserving join order, and
// sets the connection's room back-reference. On success it returns the
// resulting snapshot and the member IDs to deliver it to, both computed
// under the same lock as the mutation.
func (r *Room) Join(conn *session.Connection, password string) (session.RoomSnapshot, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn.Room != "" {
		return session.RoomSnapshot{}, nil, ErrAlreadyInRoom
	}
	if len(r.members) >= r.maxUsers {
		return session.RoomSnapshot{}, nil, ErrRoomFull
	}
	if r.private {
		if r.gate == nil || !r.gate(password) {
			return session.RoomSnapshot{}, nil, ErrAuthRequired
		}
	}

	r.members = append(r.members, conn)
	conn.Room = r.slug
	return r.snapshotLocked(), r.memberIDsLocked(), nil
}

// LeaveUpdate reports the state changes caused by a departure, all
// computed under the same lock as the mutation. TypingChanged is set
// when the leaver was typing, so remaining members need a typing
// broadcast alongside the membership one.
type LeaveUpdate struct {
	Left          bool
	TypingChanged bool
	Typing        []string
	Users         []session.UserInfo
	MemberIDs     []string
}

// Leave removes a connection from the member and typing sets and clears
// its back-reference. Leaving a room one is not in is a no-op, which
// makes an explicit leave racing a disconnect produce exactly one
// membership change.
func (r *Room) Leave(conn *session.Connection) LeaveUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(conn.ID)
	if idx < 0 {
		return LeaveUpdate{}
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	wasTyping := r.typing[conn.ID]
	delete(r.typing, conn.ID)
	if conn.Room == r.slug {
		conn.Room = ""
	}

	upd := LeaveUpdate{
		Left:      true,
		Users:     r.usersLocked(),
		MemberIDs: r.memberIDsLocked(),
	}
	if wasTyping {
		upd.TypingChanged = true
		upd.Typing = r.typingNamesLocked()
	}
	return upd
}

// SetTyping flips a member's typing state. Requesting the state that
// already holds is a no-op so redundant start/stop intents do not cause
// redundant broadcasts. It returns whether the state changed, the
// resulting typing list in join order, and the member IDs.
func (r *Room) SetTyping(conn *session.Connection, typing bool) (bool, []string, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(conn.ID) < 0 {
		return false, nil, nil, ErrNotMember
	}
	if r.typing[conn.ID] == typing {
		return false, nil, nil, nil
	}
	if typing {
		r.typing[conn.ID] = true
	} else {
		delete(r.typing, conn.ID)
	}
	return true, r.typingNamesLocked(), r.memberIDsLocked(), nil
}

// Snapshot produces an immutable view of the room for transmission.
func (r *Room) Snapshot() session.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// MemberIDs returns the current member connection IDs in join order.
func (r *Room) MemberIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberIDsLocked()
}

// Occupancy returns the current member count.
func (r *Room) Occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// TypingCount returns the number of members currently typing.
func (r *Room) TypingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.typing)
}

// Empty reports whether the room has no members.
func (r *Room) Empty() bool {
	return r.Occupancy() == 0
}

func (r *Room) indexLocked(connID string) int {
	for i, m := range r.members {
		if m.ID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) snapshotLocked() session.RoomSnapshot {
	return session.RoomSnapshot{
		Title:    r.title,
		Private:  r.private,
		Category: r.category,
		MaxUsers: r.maxUsers,
		Users:    r.usersLocked(),
		IsTyping: r.typingNamesLocked(),
	}
}

func (r *Room) usersLocked() []session.UserInfo {
	users := make([]session.UserInfo, 0, len(r.members))
	for _, m := range r.members {
		users = append(users, session.UserInfo{
			Name:        m.Name,
			CountryCode: m.CountryCode,
		})
	}
	return users
}

// typingNamesLocked walks the member list so the typing list stays in
// join order and is always a subset of the members.
func (r *Room) typingNamesLocked() []string {
	names := make([]string, 0, len(r.typing))
	for _, m := range r.members {
		if r.typing[m.ID] {
			names = append(names, m.Name)
		}
	}
	return names
}

func (r *Room) memberIDsLocked() []string {
	ids := make([]string, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.ID)
	}
	return ids
}
