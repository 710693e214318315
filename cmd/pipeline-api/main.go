package main

import (
	"bike-data-pipeline/internal/api"
	"bike-data-pipeline/internal/store"
	"bike-data-pipeline/pkg/utils"

	"github.com/joho/godotenv"
)

// @title Bike Trip Data Pipeline API
// @version 1.0
// @description REST API for cleaning city bike trip logs: filtering, derived durations, geocoding and temporal partitioning.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// .env is optional; env defaults cover everything it can set
	_ = godotenv.Load()

	// Init DB
	if err := store.InitDB(utils.GetEnv("PIPELINE_DB", "pipeline.db")); err != nil {
		panic(err)
	}

	// Start server
	api.NewRouter().Start(utils.GetEnv("PIPELINE_ADDR", ":8080"))
}
