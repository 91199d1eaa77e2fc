package service

import (
	"fmt"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"gorm.io/gorm"
)

// CreateWebsite registers a website for scheduled scanning. The URL is
// unique, so re-registering an existing URL fails at the database layer.
func CreateWebsite(dbConn *gorm.DB, website *db.Website) (*db.Website, error) {
	if website.URL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if website.Status == "" {
		website.Status = db.WebsiteActive
	}

	if err := dbConn.Create(website).Error; err != nil {
		return nil, err
	}
	return website, nil
}

// GetWebsiteByID retrieves a website by ID
func GetWebsiteByID(dbConn *gorm.DB, id uint) (*db.Website, error) {
	var website db.Website
	err := dbConn.First(&website, id).Error
	if err != nil {
		return nil, err
	}
	return &website, nil
}

// GetWebsiteByURL retrieves a website by its URL
func GetWebsiteByURL(dbConn *gorm.DB, url string) (*db.Website, error) {
	var website db.Website
	err := dbConn.Where("url = ?", url).First(&website).Error
	if err != nil {
		return nil, err
	}
	return &website, nil
}

// ListWebsites retrieves all registered websites
func ListWebsites(dbConn *gorm.DB) ([]db.Website, error) {
	var websites []db.Website
	err := dbConn.Order("id").Find(&websites).Error
	return websites, err
}

// ActiveWebsites retrieves websites eligible for scheduled scanning
func ActiveWebsites(dbConn *gorm.DB) ([]db.Website, error) {
	var websites []db.Website
	err := dbConn.Where("status = ?", db.WebsiteActive).Order("id").Find(&websites).Error
	return websites, err
}

// UpdateWebsiteStatus flips a website between ACTIVE and INACTIVE
func UpdateWebsiteStatus(dbConn *gorm.DB, id uint, status db.WebsiteStatus) error {
	return dbConn.Model(&db.Website{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteWebsite removes a registered website
func DeleteWebsite(dbConn *gorm.DB, id uint) error {
	return dbConn.Delete(&db.Website{}, id).Error
}
