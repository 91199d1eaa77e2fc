package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/service"
)

// PostWebsiteRequest represents the website registration request
type PostWebsiteRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Name string `json:"name" binding:"omitempty,max=255"`
}

// UpdateWebsiteStatusRequest flips a website's monitoring status
type UpdateWebsiteStatusRequest struct {
	Status db.WebsiteStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// PostWebsiteHandler registers a website for scheduled scanning
func PostWebsiteHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostWebsiteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("Website registration validation error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid website request",
				"details": err.Error(),
			})
			return
		}

		req.URL = strings.TrimSpace(req.URL)

		if existing, err := service.GetWebsiteByURL(dbConn, req.URL); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Website already registered", "id": existing.ID})
			return
		} else if err != gorm.ErrRecordNotFound {
			log.Printf("Database error checking existing website: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		website, err := service.CreateWebsite(dbConn, &db.Website{
			URL:    req.URL,
			Name:   req.Name,
			Status: db.WebsiteActive,
		})
		if err != nil {
			log.Printf("Failed to register website: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save website"})
			return
		}

		log.Printf("Registered website %s (ID: %d)", req.URL, website.ID)
		c.JSON(http.StatusCreated, website)
	}
}

// ListWebsitesHandler returns all registered websites
func ListWebsitesHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		websites, err := service.ListWebsites(dbConn)
		if err != nil {
			log.Printf("Failed to list websites: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":    len(websites),
			"websites": websites,
		})
	}
}

// UpdateWebsiteStatusHandler activates or deactivates scheduled scanning
func UpdateWebsiteStatusHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid website ID"})
			return
		}

		var req UpdateWebsiteStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid status request",
				"details": err.Error(),
			})
			return
		}

		if _, err := service.GetWebsiteByID(dbConn, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Website not found"})
				return
			}
			log.Printf("Failed to fetch website %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := service.UpdateWebsiteStatus(dbConn, id, req.Status); err != nil {
			log.Printf("Failed to update website %d status: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update website"})
			return
		}

		log.Printf("Website %d status set to %s", id, req.Status)
		c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status})
	}
}

// DeleteWebsiteHandler removes a website from scheduled scanning
func DeleteWebsiteHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid website ID"})
			return
		}

		if err := service.DeleteWebsite(dbConn, id); err != nil {
			log.Printf("Failed to delete website %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete website"})
			return
		}

		log.Printf("Deleted website %d", id)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
