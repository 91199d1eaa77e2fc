package db

import (
	"log"

	"gorm.io/gorm"
)

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Website{}, &Scan{}, &Finding{}); err != nil {
		return err
	}

	return recoverInterruptedScans(db)
}

// recoverInterruptedScans marks scans that were mid-flight when the previous
// process died as FAILED, so they don't sit in IN_PROGRESS forever.
func recoverInterruptedScans(db *gorm.DB) error {
	result := db.Model(&Scan{}).
		Where("status = ?", StatusInProgress).
		Updates(map[string]interface{}{
			"status":        StatusFailed,
			"error_message": "scan interrupted by service restart",
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Marked %d interrupted scans as failed", result.RowsAffected)
	}

	return nil
}
