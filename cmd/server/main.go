package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"

	"quantsim/internal/config"
	"quantsim/internal/dao/record"
	"quantsim/internal/database"
	"quantsim/internal/engines/generator"
	"quantsim/internal/engines/simulation"
	"quantsim/internal/handlers"
	ws "quantsim/internal/handlers/websocket"
	"quantsim/internal/services"
	"quantsim/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database when archival is configured; the engine
	// itself is in-memory either way.
	var recordDAO record.RecordDAOInterface
	if cfg.DatabaseURL != "" {
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.AutoMigrate(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		recordDAO = record.NewRecordDAO(database.GetDB())
	} else {
		log.Println("DATABASE_URL not set, simulation archival disabled")
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-User-Role")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Seed the generator; zero means non-reproducible timelines.
	seed := cfg.SimulationSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		log.Printf("Using fixed simulation seed %d", cfg.SimulationSeed)
	}
	gen := generator.New(rand.New(rand.NewSource(seed)))
	factory := simulation.NewFactory(gen)
	sessions := store.NewSessionStore()

	// Initialize WebSocket gateway and session service
	wsHandler := ws.NewWebSocketHandler()
	sessionService := services.NewSessionService(sessions, factory, wsHandler.GetHub(), recordDAO, cfg.Defaults)
	wsHandler.SetCommands(sessionService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	simulationHandler := handlers.NewSimulationHandler(sessionService)
	recordHandler := handlers.NewRecordHandler(sessionService)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	// WebSocket endpoint
	r.GET("/ws", wsHandler.HandleWebSocket)

	// API routes group
	api := r.Group("/api/v1")
	api.Use(handlers.RequireIdentity())
	{
		handlers.RegisterSimulationRoutes(api, simulationHandler)
		handlers.RegisterRecordRoutes(api, recordHandler)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
