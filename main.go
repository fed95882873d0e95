package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/room-session-demo/domain/session"
	"github.com/example/room-session-demo/modules/api"
	"github.com/example/room-session-demo/modules/broadcast"
	"github.com/example/room-session-demo/modules/dispatch"
	"github.com/example/room-session-demo/modules/registry"
	"github.com/example/room-session-demo/modules/stats"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

// defaultCatalog seeds the registry with the fixed set of named rooms
// clients can join.
var defaultCatalog = []session.RoomConfig{
	{Slug: "general", Title: "General", Category: "general", MaxUsers: 20},
	{Slug: "gaming", Title: "Gaming", Category: "games", MaxUsers: 20},
	{Slug: "music", Title: "Music", Category: "culture", MaxUsers: 15},
	{Slug: "tech", Title: "Tech Talk", Category: "technology", MaxUsers: 15},
}

func main() {
	log.Println("=== Room Session Service - Fiber + EventBus Pubsub ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	registryModule := registry.NewModule(defaultCatalog)
	broadcastModule := broadcast.NewModule()
	dispatchModule := dispatch.NewModule(dispatch.NewDispatcher(
		registryModule.Registry(),
		broadcastModule.GetHub(),
	))
	statsModule := stats.NewModule()
	apiModule := api.NewModule()

	// Inject shared components into the API module
	// (done manually because they are not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetDispatcher(dispatchModule.Dispatcher())
	apiModule.SetRegistryModule(registryModule)
	apiModule.SetStatsModule(statsModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	app.Register(registryModule)  // Room catalog + membership state
	app.Register(broadcastModule) // WebSocket connection hub
	app.Register(dispatchModule)  // Session protocol + event emitter
	app.Register(statsModule)     // Event consumer (per-room counters)
	app.Register(apiModule)       // HTTP/WebSocket API

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health               - Health check")
	log.Println("  GET    /api/v1/rooms         - Room catalog with occupancy")
	log.Println("  POST   /api/v1/rooms         - Add a catalog room")
	log.Println("  GET    /api/v1/rooms/:slug   - Room details")
	log.Println("  GET    /api/v1/stats         - Per-room session counters")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Connect with: ws://localhost:3000/ws?name=yourname&country=US")
	log.Println("  Intents: joining_room, sending_message, started_typing,")
	log.Println("           stopped_typing, leaving_room")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
