package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/yeremiapane/commerce-admin/config"
	"github.com/yeremiapane/commerce-admin/database"
	"github.com/yeremiapane/commerce-admin/router"
	"github.com/yeremiapane/commerce-admin/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	if config.SeedData() {
		if err := database.Seed(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
		}
	}

	r := router.SetupRouter(db)

	port := config.AppPort()
	utils.InfoLogger.Printf("Server listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
}
