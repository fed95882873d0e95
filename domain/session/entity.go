package session

// Connection is one live client session. Identity attributes are issued
// externally and treated as opaque; ChatColor is assigned by the server
// at connect time. Room holds the slug of the currently occupied room,
// or "" when the connection is room-less. Room is only written by the
// connection's own intent processing (one goroutine per connection),
// under the target room's lock.
type Connection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	ChatColor   string `json:"chatColor"`
	Room        string `json:"room,omitempty"`
}

// UserInfo is the public identity of a room member as sent to clients.
type UserInfo struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}

// RoomSnapshot is an immutable view of a room's state, transmitted to a
// joining client and rebroadcast to the room whenever membership changes.
type RoomSnapshot struct {
	Title    string     `json:"title"`
	Private  bool       `json:"privateroom"`
	Category string     `json:"category"`
	MaxUsers int        `json:"maxUsers"`
	Users    []UserInfo `json:"users"`
	IsTyping []string   `json:"isTyping"`
}

// RoomConfig describes a room in the catalog.
type RoomConfig struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	MaxUsers     int    `json:"max_users"`
	Private      bool   `json:"private"`
	PasswordHash string `json:"-"`
}
