package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/queryvault/queryvault/internal/config"
	"github.com/queryvault/queryvault/internal/database"
	"github.com/queryvault/queryvault/internal/services"
	"github.com/queryvault/queryvault/internal/utils"
)

// Standalone health probe, intended for container HEALTHCHECK. Exits 0 when
// the database is reachable and the API port accepts connections.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Perform health check
	result := services.HealthCheck(cfg, db)

	// Probe the API port when the server is expected to be up locally
	if err := utils.PingHost("127.0.0.1", cfg.Port, 1500*time.Millisecond); err != nil {
		result.Status = "unhealthy"
		result.Details["api_port_error"] = err.Error()
	} else {
		result.Details["api_port"] = "ok"
	}

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
}
