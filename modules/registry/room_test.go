package registry

import (
	"reflect"
	"testing"

	"github.com/example/room-session-demo/domain/session"
)

func testConn(id, name string) *session.Connection {
	return &session.Connection{
		ID:          id,
		Name:        name,
		CountryCode: "SE",
		ChatColor:   "#e6194b",
	}
}

func testRoom(maxUsers int) *Room {
	return NewRoom(session.RoomConfig{
		Slug:     "general",
		Title:    "General",
		Category: "general",
		MaxUsers: maxUsers,
	})
}

func TestRoom_JoinPreservesOrder(t *testing.T) {
	room := testRoom(5)

	names := []string{"Alice", "Bob", "Carol"}
	for i, name := range names {
		conn := testConn(name, name)
		snapshot, targets, err := room.Join(conn, "")
		if err != nil {
			t.Fatalf("Join(%s) unexpected error: %v", name, err)
		}
		if conn.Room != "general" {
			t.Errorf("Join(%s) conn.Room = %q, want %q", name, conn.Room, "general")
		}
		if len(snapshot.Users) != i+1 {
			t.Fatalf("Join(%s) snapshot has %d users, want %d", name, len(snapshot.Users), i+1)
		}
		if len(targets) != i+1 {
			t.Errorf("Join(%s) returned %d targets, want %d", name, len(targets), i+1)
		}
	}

	snapshot := room.Snapshot()
	got := make([]string, 0, len(snapshot.Users))
	for _, u := range snapshot.Users {
		got = append(got, u.Name)
	}
	if !reflect.DeepEqual(got, names) {
		t.Errorf("Snapshot() users = %v, want join order %v", got, names)
	}
}

func TestRoom_JoinCapacity(t *testing.T) {
	room := testRoom(2)

	a := testConn("a", "Alice")
	b := testConn("b", "Bob")
	c := testConn("c", "Carol")

	if _, _, err := room.Join(a, ""); err != nil {
		t.Fatalf("Join(a) unexpected error: %v", err)
	}
	if _, _, err := room.Join(b, ""); err != nil {
		t.Fatalf("Join(b) unexpected error: %v", err)
	}

	if _, _, err := room.Join(c, ""); err != ErrRoomFull {
		t.Errorf("Join(c) error = %v, want ErrRoomFull", err)
	}
	if c.Room != "" {
		t.Errorf("rejected joiner conn.Room = %q, want empty", c.Room)
	}
	if room.Occupancy() != 2 {
		t.Errorf("Occupancy() = %d after rejected join, want 2", room.Occupancy())
	}
}

func TestRoom_JoinWhileAlreadyInRoom(t *testing.T) {
	room := testRoom(5)
	other := testRoom(5)

	conn := testConn("a", "Alice")
	if _, _, err := room.Join(conn, ""); err != nil {
		t.Fatalf("Join() unexpected error: %v", err)
	}

	if _, _, err := other.Join(conn, ""); err != ErrAlreadyInRoom {
		t.Errorf("second Join() error = %v, want ErrAlreadyInRoom", err)
	}
}

func TestRoom_PrivateRoomGate(t *testing.T) {
	room := NewRoom(session.RoomConfig{
		Slug:     "vault",
		Title:    "Vault",
		MaxUsers: 5,
		Private:  true,
	})
	room.SetGate(func(password string) bool { return password == "hunter2" })

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "missing password", password: "", wantErr: ErrAuthRequired},
		{name: "wrong password", password: "swordfish", wantErr: ErrAuthRequired},
		{name: "correct password", password: "hunter2", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := testConn(tt.name, tt.name)
			_, _, err := room.Join(conn, tt.password)
			if err != tt.wantErr {
				t.Errorf("Join() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoom_PrivateRoomWithoutGateAdmitsNobody(t *testing.T) {
	room := NewRoom(session.RoomConfig{
		Slug:     "vault",
		Title:    "Vault",
		MaxUsers: 5,
		Private:  true,
	})

	if _, _, err := room.Join(testConn("a", "Alice"), "anything"); err != ErrAuthRequired {
		t.Errorf("Join() error = %v, want ErrAuthRequired", err)
	}
}

func TestRoom_TypingSubsetOfMembers(t *testing.T) {
	room := testRoom(5)

	a := testConn("a", "Alice")
	b := testConn("b", "Bob")
	stranger := testConn("x", "Mallory")

	_, _, _ = room.Join(a, "")
	_, _, _ = room.Join(b, "")

	if _, _, _, err := room.SetTyping(stranger, true); err != ErrNotMember {
		t.Errorf("SetTyping(non-member) error = %v, want ErrNotMember", err)
	}

	changed, names, targets, err := room.SetTyping(b, true)
	if err != nil {
		t.Fatalf("SetTyping(b) unexpected error: %v", err)
	}
	if !changed {
		t.Error("SetTyping(b, true) changed = false, want true")
	}
	if !reflect.DeepEqual(names, []string{"Bob"}) {
		t.Errorf("SetTyping(b) typing list = %v, want [Bob]", names)
	}
	if len(targets) != 2 {
		t.Errorf("SetTyping(b) targets = %d, want 2", len(targets))
	}

	// Leaving removes the member from the typing set too.
	room.Leave(b)
	snapshot := room.Snapshot()
	if len(snapshot.IsTyping) != 0 {
		t.Errorf("Snapshot() typing = %v after leave, want empty", snapshot.IsTyping)
	}
}

func TestRoom_LeaveReportsTypingChange(t *testing.T) {
	room := testRoom(5)
	a := testConn("a", "Alice")
	b := testConn("b", "Bob")
	_, _, _ = room.Join(a, "")
	_, _, _ = room.Join(b, "")
	_, _, _, _ = room.SetTyping(a, true)
	_, _, _, _ = room.SetTyping(b, true)

	upd := room.Leave(b)
	if !upd.TypingChanged {
		t.Fatal("Leave() of a typing member reported no typing change")
	}
	if !reflect.DeepEqual(upd.Typing, []string{"Alice"}) {
		t.Errorf("Leave() typing list = %v, want [Alice]", upd.Typing)
	}

	// A member who is not typing leaves the typing set untouched.
	c := testConn("c", "Carol")
	_, _, _ = room.Join(c, "")
	if upd := room.Leave(c); upd.TypingChanged {
		t.Errorf("Leave() of a non-typing member reported typing change %v", upd.Typing)
	}
}

func TestRoom_TypingDeduplicates(t *testing.T) {
	room := testRoom(5)
	a := testConn("a", "Alice")
	_, _, _ = room.Join(a, "")

	changed, _, _, err := room.SetTyping(a, true)
	if err != nil || !changed {
		t.Fatalf("first SetTyping(true) = (%v, %v), want (true, nil)", changed, err)
	}

	changed, _, _, err = room.SetTyping(a, true)
	if err != nil {
		t.Fatalf("second SetTyping(true) unexpected error: %v", err)
	}
	if changed {
		t.Error("second SetTyping(true) changed = true, want false (dedup)")
	}

	changed, _, _, _ = room.SetTyping(a, false)
	if !changed {
		t.Error("SetTyping(false) changed = false, want true")
	}
	changed, _, _, _ = room.SetTyping(a, false)
	if changed {
		t.Error("second SetTyping(false) changed = true, want false (dedup)")
	}
}

func TestRoom_JoinThenLeaveRestoresState(t *testing.T) {
	room := testRoom(5)
	a := testConn("a", "Alice")
	_, _, _ = room.Join(a, "")
	_, _, _, _ = room.SetTyping(a, true)
	before := room.Snapshot()

	b := testConn("b", "Bob")
	_, _, _ = room.Join(b, "")
	_, _, _, _ = room.SetTyping(b, true)
	room.Leave(b)

	after := room.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("snapshot after join+leave = %+v, want pre-join %+v", after, before)
	}
	if b.Room != "" {
		t.Errorf("left conn.Room = %q, want empty", b.Room)
	}
}

func TestRoom_LeaveIdempotent(t *testing.T) {
	room := testRoom(5)
	a := testConn("a", "Alice")
	b := testConn("b", "Bob")
	_, _, _ = room.Join(a, "")
	_, _, _ = room.Join(b, "")

	upd := room.Leave(a)
	if !upd.Left {
		t.Fatal("first Leave() reported no membership change")
	}
	if len(upd.Users) != 1 || upd.Users[0].Name != "Bob" {
		t.Errorf("Leave() remaining users = %v, want [Bob]", upd.Users)
	}
	if len(upd.MemberIDs) != 1 {
		t.Errorf("Leave() member IDs = %d, want 1", len(upd.MemberIDs))
	}

	if upd := room.Leave(a); upd.Left {
		t.Error("second Leave() reported a change, want idempotent no-op")
	}
}

func TestRoom_SnapshotFields(t *testing.T) {
	room := NewRoom(session.RoomConfig{
		Slug:     "vault",
		Title:    "The Vault",
		Category: "secret",
		MaxUsers: 7,
		Private:  true,
	})

	snapshot := room.Snapshot()
	if snapshot.Title != "The Vault" {
		t.Errorf("Snapshot().Title = %q, want %q", snapshot.Title, "The Vault")
	}
	if !snapshot.Private {
		t.Error("Snapshot().Private = false, want true")
	}
	if snapshot.Category != "secret" {
		t.Errorf("Snapshot().Category = %q, want %q", snapshot.Category, "secret")
	}
	if snapshot.MaxUsers != 7 {
		t.Errorf("Snapshot().MaxUsers = %d, want 7", snapshot.MaxUsers)
	}
	if len(snapshot.Users) != 0 || len(snapshot.IsTyping) != 0 {
		t.Errorf("Snapshot() of empty room = %+v, want no users/typing", snapshot)
	}
}
