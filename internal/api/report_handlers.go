package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/reports"
)

// ScanSummaryHandler returns the aggregate report for one scan
func ScanSummaryHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		summary, err := reports.ScanSummary(dbConn, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			log.Printf("Failed to build summary for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

// ScoreTrendHandler returns the compliance score history for a URL
func ScoreTrendHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 10
		}

		trend, err := reports.ScoreTrend(dbConn, url, limit)
		if err != nil {
			log.Printf("Failed to build trend for %s: %v", url, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"url":    url,
			"points": trend,
		})
	}
}

// CompareScansHandler diffs two completed scans; deltas are scan2 minus
// scan1.
func CompareScansHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		baseID, err := strconv.ParseUint(c.Query("scan1"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scan1 query parameter must be a scan ID"})
			return
		}
		targetID, err := strconv.ParseUint(c.Query("scan2"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scan2 query parameter must be a scan ID"})
			return
		}

		comparison, err := reports.CompareScans(dbConn, uint(baseID), uint(targetID))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			if strings.Contains(err.Error(), "must be completed") {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			log.Printf("Failed to compare scans %d and %d: %v", baseID, targetID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, comparison)
	}
}

// DashboardHandler returns system-wide scan and finding totals. The
// created-scan window defaults to the last 24 hours; start and end accept
// RFC 3339 timestamps.
func DashboardHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		end := time.Now()
		if raw := c.Query("end"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "end must be an RFC 3339 timestamp"})
				return
			}
			end = parsed
		}

		start := end.Add(-24 * time.Hour)
		if raw := c.Query("start"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an RFC 3339 timestamp"})
				return
			}
			start = parsed
		}

		if !start.Before(end) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
			return
		}

		dashboard, err := reports.BuildDashboard(dbConn, start, end)
		if err != nil {
			log.Printf("Failed to build dashboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, dashboard)
	}
}

// IssueDetailsHandler returns a scan's findings with WCAG references
func IssueDetailsHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		details, err := reports.IssueDetails(dbConn, id)
		if err != nil {
			log.Printf("Failed to build issue report for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"scan_id": id,
			"issues":  details,
		})
	}
}
