package main

import (
	"log"
	"os"

	"ai-chat-be/internal/model"
	"ai-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = database.DriverPostgres
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" && driver == database.DriverPostgres {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(driver, dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration (%s)...", driver)

	// 3. Pre-Migration: Extensions (postgres only)
	if driver == database.DriverPostgres {
		color.Yellow("Step 1: Setting up extensions...")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			color.Yellow("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	models := model.All()
	color.Yellow("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 5. Post-Migration: composite index for thread reads
	color.Yellow("Step 3: Creating indexes...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_messages_chat_thread ON messages (chat_id, created_at, sequence);`
	if err := db.Exec(indexSQL).Error; err != nil {
		color.Yellow("Warn: Failed to create thread index: %v", err)
	}

	color.Green("✅ Migration completed")
}
