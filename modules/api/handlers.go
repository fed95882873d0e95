package api

import (
	"encoding/json"
	"log"

	"github.com/example/room-session-demo/domain/session"
	"github.com/example/room-session-demo/modules/dispatch"
	"github.com/example/room-session-demo/modules/registry"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := app.Group("/api/v1")

	api.Get("/rooms", m.listRooms)
	api.Post("/rooms", m.createRoom)
	api.Get("/rooms/:slug", m.getRoom)
	api.Get("/stats", m.getStats)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms := m.rooms.Registry().Rooms()

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, roomResponse(room))
	}

	return c.JSON(response)
}

// createRoom handles POST /api/v1/rooms.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if req.Slug == "" || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room slug and title are required",
		})
	}
	if req.MaxUsers <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "max_users must be positive",
		})
	}

	cfg := session.RoomConfig{
		Slug:     req.Slug,
		Title:    req.Title,
		Category: req.Category,
		MaxUsers: req.MaxUsers,
	}
	if req.Password != "" {
		hash, err := registry.NewPasswordHasher().Hash(req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "create_failed",
				Message: "Failed to protect room",
			})
		}
		cfg.Private = true
		cfg.PasswordHash = hash
	}

	room, err := m.rooms.CreateRoom(cfg)
	if err == registry.ErrRoomExists {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "room_exists",
			Message: "A room with this slug already exists",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create room",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(roomResponse(room))
}

// getRoom handles GET /api/v1/rooms/:slug.
func (m *APIModule) getRoom(c *fiber.Ctx) error {
	room, err := m.rooms.Registry().Find(c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Room not found",
		})
	}

	return c.JSON(roomResponse(room))
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	if m.stats == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Stats not enabled",
		})
	}
	return c.JSON(m.stats.Snapshot())
}

func roomResponse(room *registry.Room) RoomResponse {
	cfg := room.Config()
	return RoomResponse{
		Slug:      cfg.Slug,
		Title:     cfg.Title,
		Category:  cfg.Category,
		MaxUsers:  cfg.MaxUsers,
		Private:   cfg.Private,
		Occupancy: room.Occupancy(),
		Typing:    room.TypingCount(),
	}
}

// handleWebSocket handles WebSocket connections at /ws. Identity
// attributes arrive as query parameters; issuing them is external.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	name := c.Query("name", "anonymous")
	country := c.Query("country", "")

	if err := dispatch.ValidateName(name); err != nil {
		name = "anonymous"
	}

	m.hub.Attach(connID, c)
	m.dispatcher.Connect(connID, name, country)
	limiter := newRateLimiter(burstSize, messagesPerSecond)
	defer func() {
		m.dispatcher.Disconnect(connID)
		m.hub.Detach(connID)
		log.Printf("[api] WebSocket client disconnected: %s (%s)", connID, name)
	}()

	log.Printf("[api] WebSocket client connected: %s (%s)", connID, name)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", connID)
			} else {
				log.Printf("[api] Read error from %s: %v", connID, err)
			}
			break
		}

		var intent dispatch.Intent
		if err := json.Unmarshal(msgBytes, &intent); err != nil {
			m.hub.Unicast(connID, dispatch.Envelope{
				Event: dispatch.EventError,
				Data:  "invalid message format",
			})
			continue
		}

		if intent.Event == dispatch.IntentSendMessage && !limiter.allow() {
			m.hub.Unicast(connID, dispatch.Envelope{
				Event: dispatch.EventError,
				Data:  "rate limit exceeded, please slow down",
			})
			continue
		}

		m.dispatcher.Handle(connID, intent)
	}
}
