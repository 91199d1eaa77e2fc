package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/service"
	"github.com/drishyascan/a11y-scanner/internal/wcag"
)

// IssueResponse represents a finding with its WCAG reference
type IssueResponse struct {
	ID              uint             `json:"id"`
	ScanID          uint             `json:"scan_id"`
	Category        db.IssueCategory `json:"category"`
	Description     string           `json:"description"`
	ElementSelector string           `json:"element_selector"`
	Severity        db.Severity      `json:"severity"`
	WCAGCriterion   string           `json:"wcag_criterion"`
	HelpURL         string           `json:"help_url"`
}

// issueResponses enriches findings with their WCAG references
func issueResponses(findings []db.Finding) []IssueResponse {
	responses := make([]IssueResponse, 0, len(findings))
	for _, f := range findings {
		responses = append(responses, IssueResponse{
			ID:              f.ID,
			ScanID:          f.ScanID,
			Category:        f.Category,
			Description:     f.Description,
			ElementSelector: f.ElementSelector,
			Severity:        f.Severity,
			WCAGCriterion:   wcag.Criterion(f.Category),
			HelpURL:         wcag.HelpURL(f.Category),
		})
	}
	return responses
}

// requireScan loads the scan or writes the error response and returns false
func requireScan(c *gin.Context, dbConn *gorm.DB, id uint) bool {
	if _, err := service.GetScanByID(dbConn, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
			return false
		}
		log.Printf("Failed to fetch scan %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}
	return true
}

// ListIssuesHandler returns a scan's findings. When the route carries a
// severity or category parameter the result is filtered by it.
func ListIssuesHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}
		if !requireScan(c, dbConn, id) {
			return
		}

		severity := c.Param("severity")
		category := c.Param("category")

		var findings []db.Finding
		switch {
		case severity != "":
			findings, err = service.FindingsForScanBySeverity(dbConn, id, db.Severity(severity))
		case category != "":
			findings, err = service.FindingsForScanByCategory(dbConn, id, db.IssueCategory(category))
		default:
			findings, err = service.FindingsForScan(dbConn, id)
		}
		if err != nil {
			log.Printf("Failed to fetch findings for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"scan_id": id,
			"total":   len(findings),
			"issues":  issueResponses(findings),
		})
	}
}

// SeverityCountsHandler returns finding counts per severity, zero-filled
func SeverityCountsHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}
		if !requireScan(c, dbConn, id) {
			return
		}

		counts, err := service.SeverityCounts(dbConn, id)
		if err != nil {
			log.Printf("Failed to count severities for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"scan_id": id, "severity_counts": counts})
	}
}

// CategoryCountsHandler returns finding counts per issue category
func CategoryCountsHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}
		if !requireScan(c, dbConn, id) {
			return
		}

		counts, err := service.CategoryCounts(dbConn, id)
		if err != nil {
			log.Printf("Failed to count categories for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"scan_id": id, "category_counts": counts})
	}
}
