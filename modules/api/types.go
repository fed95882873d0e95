package api

// CreateRoomRequest is the API request to add a catalog room.
type CreateRoomRequest struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
	MaxUsers int    `json:"max_users"`
	Password string `json:"password,omitempty"`
}

// RoomResponse is the API view of a catalog room.
type RoomResponse struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	MaxUsers  int    `json:"max_users"`
	Private   bool   `json:"private"`
	Occupancy int    `json:"occupancy"`
	Typing    int    `json:"typing"`
}

// RoomListResponse is the API response for the room catalog.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
