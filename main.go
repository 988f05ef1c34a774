package main

import (
	"log"
	"net/http"
	"strings"

	"chart-studio/internal/api"
	"chart-studio/internal/config"
	"chart-studio/internal/database"
	"chart-studio/internal/services/polygon"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()

	if cfg.PolygonAPIKey == "" {
		log.Println("POLYGON_API_KEY not set, serving synthetic market data")
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize services
	stocks := polygon.NewService(cfg.PolygonAPIKey, cfg.CacheTTL, db)
	hub := api.NewHub()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Serve static files from the build directory
	r.Static("/static", "./web/build/static")
	r.StaticFile("/favicon.ico", "./web/build/favicon.ico")
	r.StaticFile("/manifest.json", "./web/build/manifest.json")
	r.GET("/", func(c *gin.Context) {
		c.File("./web/build/index.html")
	})
	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// SPA fallback for client-side routing
	r.NoRoute(func(c *gin.Context) {
		// Preserve API and WS 404s
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/ws" || strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Status(http.StatusNotFound)
			return
		}
		c.File("./web/build/index.html")
	})

	// API routes
	handler := api.NewAPIHandler(db, stocks, hub, cfg.MaxUploadBytes)
	handler.SetupRoutes(r)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
