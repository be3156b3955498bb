package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/routes"
	"github.com/sistemas-fafin-lab/labpoints-be/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.InitLogger()
	defer config.Logger.Sync()

	// Connect to database
	config.ConnectDatabase()

	// Run seed migrations (default admin, reward catalog)
	sqlDB, err := config.GetSQLDB()
	if err != nil {
		log.Fatal("Failed to get database handle:", err)
	}
	if err := config.RunMigrations(sqlDB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Start the websocket hub for change notifications
	hub := websocket.NewHub()
	go hub.Run()

	// Setup routes
	r := routes.SetupRoutes(hub)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
