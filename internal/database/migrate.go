package database

import (
	"log"

	"quantsim/internal/models"
)

func AutoMigrate() error {
	err := DB.AutoMigrate(
		&models.SimulationRecord{},
		&models.TradeRecord{},
	)

	if err != nil {
		log.Printf("Failed to auto-migrate: %v", err)
		return err
	}

	log.Println("Database migration completed successfully")
	return nil
}
