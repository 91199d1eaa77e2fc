package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/scanner"
	"github.com/drishyascan/a11y-scanner/internal/service"
)

// PostScanRequest represents the scan creation request
type PostScanRequest struct {
	URL                string `json:"url" binding:"required,url"`
	ScanName           string `json:"scan_name" binding:"omitempty,max=255"`
	DeepScan           bool   `json:"deep_scan"`
	MaxPages           int    `json:"max_pages" binding:"omitempty,min=1"`
	IncludeScreenshots bool   `json:"include_screenshots"`
	CallbackURL        string `json:"callback_url" binding:"omitempty,url"`
	Notes              string `json:"notes" binding:"omitempty,max=1000"`
}

// ScanResponse represents a scan in API responses
type ScanResponse struct {
	ID                   uint          `json:"id"`
	URL                  string        `json:"url"`
	ScanName             string        `json:"scan_name,omitempty"`
	Status               db.ScanStatus `json:"status"`
	Progress             int           `json:"progress"`
	CurrentActivity      string        `json:"current_activity"`
	PagesScanned         int           `json:"pages_scanned"`
	TotalElementsChecked int           `json:"total_elements_checked"`
	ComplianceScore      *float64      `json:"compliance_score"`
	DeepScan             bool          `json:"deep_scan"`
	MaxPages             int           `json:"max_pages"`
	ErrorMessage         string        `json:"error_message,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	StartedAt            *time.Time    `json:"started_at"`
	CompletedAt          *time.Time    `json:"completed_at"`
	CreatedAt            time.Time     `json:"created_at"`
}

// ScanDetailResponse adds per-severity and per-category finding counts
type ScanDetailResponse struct {
	ScanResponse
	TotalFindings  int64                      `json:"total_findings"`
	SeverityCounts map[db.Severity]int64      `json:"severity_counts"`
	CategoryCounts map[db.IssueCategory]int64 `json:"category_counts"`
}

// PaginatedResponse represents a paginated response
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Total int64       `json:"total"`
	Pages int         `json:"pages"`
}

// scanResponse builds the common scan DTO
func scanResponse(scan *db.Scan, now time.Time) ScanResponse {
	return ScanResponse{
		ID:                   scan.ID,
		URL:                  scan.URL,
		ScanName:             scan.ScanName,
		Status:               scan.Status,
		Progress:             scanner.Progress(scan, now),
		CurrentActivity:      scanner.CurrentActivity(scan, now),
		PagesScanned:         scan.PagesScanned,
		TotalElementsChecked: scan.TotalElementsChecked,
		ComplianceScore:      scan.ComplianceScore,
		DeepScan:             scan.DeepScan,
		MaxPages:             scan.MaxPages,
		ErrorMessage:         scan.ErrorMessage,
		Notes:                scan.Notes,
		StartedAt:            scan.StartedAt,
		CompletedAt:          scan.CompletedAt,
		CreatedAt:            scan.CreatedAt,
	}
}

// effectiveMaxPages applies the page limits: shallow scans default to 1 page
// and cap at 5, deep scans default to 5 and cap at 10.
func effectiveMaxPages(requested int, deep bool) int {
	if deep {
		if requested <= 0 {
			return 5
		}
		if requested > 10 {
			return 10
		}
		return requested
	}

	if requested <= 0 {
		return 1
	}
	if requested > 5 {
		return 5
	}
	return requested
}

// PostScanHandler handles scan creation
func PostScanHandler(dbConn *gorm.DB, scannerService *scanner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("Scan creation validation error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid scan request",
				"details": err.Error(),
			})
			return
		}

		req.URL = strings.TrimSpace(req.URL)
		if req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL cannot be empty"})
			return
		}

		scan, err := service.CreateScan(dbConn, &db.Scan{
			URL:                req.URL,
			ScanName:           req.ScanName,
			Status:             db.StatusPending,
			DeepScan:           req.DeepScan,
			MaxPages:           effectiveMaxPages(req.MaxPages, req.DeepScan),
			IncludeScreenshots: req.IncludeScreenshots,
			CallbackURL:        req.CallbackURL,
			Notes:              req.Notes,
		})
		if err != nil {
			log.Printf("Failed to create scan: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scan"})
			return
		}

		if err := scannerService.Enqueue(scan.ID); err != nil {
			log.Printf("Failed to enqueue scan %d: %v", scan.ID, err)
			// Don't fail the request, just log the error
		}

		log.Printf("Created scan %d for %s", scan.ID, req.URL)
		c.JSON(http.StatusCreated, scanResponse(scan, time.Now()))
	}
}

// GetScanHandler handles retrieving a single scan with finding counts
func GetScanHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		scan, err := service.GetScanByID(dbConn, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			log.Printf("Failed to fetch scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		total, err := service.CountFindingsForScan(dbConn, id)
		if err != nil {
			log.Printf("Failed to count findings for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		severityCounts, err := service.SeverityCounts(dbConn, id)
		if err != nil {
			log.Printf("Failed to count severities for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		categoryCounts, err := service.CategoryCounts(dbConn, id)
		if err != nil {
			log.Printf("Failed to count categories for scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, ScanDetailResponse{
			ScanResponse:   scanResponse(scan, time.Now()),
			TotalFindings:  total,
			SeverityCounts: severityCounts,
			CategoryCounts: categoryCounts,
		})
	}
}

// ListScansHandler handles scan listing with pagination, search and filters
func ListScansHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		pageSize, err := strconv.Atoi(c.DefaultQuery("size", "10"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		sort := c.DefaultQuery("sort", "created_at desc")
		allowedSorts := map[string]bool{
			"created_at desc":       true,
			"created_at asc":        true,
			"completed_at desc":     true,
			"completed_at asc":      true,
			"compliance_score desc": true,
			"compliance_score asc":  true,
			"status asc":            true,
			"status desc":           true,
		}
		if !allowedSorts[sort] {
			sort = "created_at desc"
		}

		search := strings.TrimSpace(c.Query("q"))
		status := strings.TrimSpace(c.Query("status"))

		query := dbConn.Model(&db.Scan{})

		if search != "" {
			query = query.Where("url LIKE ? OR scan_name LIKE ?", "%"+search+"%", "%"+search+"%")
		}

		if status != "" {
			query = query.Where("status = ?", status)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Printf("Failed to count scans: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		offset := (page - 1) * pageSize
		pages := int((total + int64(pageSize) - 1) / int64(pageSize))

		var scans []db.Scan
		if err := query.Order(sort).Limit(pageSize).Offset(offset).Find(&scans).Error; err != nil {
			log.Printf("Failed to fetch scans: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		now := time.Now()
		responses := make([]ScanResponse, 0, len(scans))
		for i := range scans {
			responses = append(responses, scanResponse(&scans[i], now))
		}

		c.JSON(http.StatusOK, PaginatedResponse{
			Data:  responses,
			Page:  page,
			Size:  pageSize,
			Total: total,
			Pages: pages,
		})
	}
}

// LatestScanHandler returns the most recent scan for a URL
func LatestScanHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
			return
		}

		scan, err := service.LatestScanForURL(dbConn, url)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "No scans found for URL"})
				return
			}
			log.Printf("Failed to fetch latest scan for %s: %v", url, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, scanResponse(scan, time.Now()))
	}
}

// RescanHandler creates a fresh scan with the same settings as an old one
func RescanHandler(dbConn *gorm.DB, scannerService *scanner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		original, err := service.GetScanByID(dbConn, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			log.Printf("Failed to fetch scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		scan, err := service.CreateScan(dbConn, &db.Scan{
			URL:                original.URL,
			ScanName:           original.ScanName,
			Status:             db.StatusPending,
			DeepScan:           original.DeepScan,
			MaxPages:           original.MaxPages,
			IncludeScreenshots: original.IncludeScreenshots,
			CallbackURL:        original.CallbackURL,
			Notes:              original.Notes,
		})
		if err != nil {
			log.Printf("Failed to create rescan of %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scan"})
			return
		}

		if err := scannerService.Enqueue(scan.ID); err != nil {
			log.Printf("Failed to enqueue rescan %d: %v", scan.ID, err)
		}

		log.Printf("Created rescan %d of scan %d", scan.ID, id)
		c.JSON(http.StatusCreated, scanResponse(scan, time.Now()))
	}
}

// CancelScanHandler cancels a pending or running scan
func CancelScanHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		cancelled, err := service.CancelScan(dbConn, id)
		if err != nil {
			log.Printf("Failed to cancel scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !cancelled {
			scan, err := service.GetScanByID(dbConn, id)
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			if err != nil {
				log.Printf("Failed to fetch scan %d: %v", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"error":  "Scan is already finished",
				"status": scan.Status,
			})
			return
		}

		log.Printf("Cancelled scan %d", id)
		scan, err := service.GetScanByID(dbConn, id)
		if err != nil {
			log.Printf("Failed to reload scan %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, scanResponse(scan, time.Now()))
	}
}

// DeleteScanHandler removes a scan and its findings
func DeleteScanHandler(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan ID"})
			return
		}

		result := dbConn.Select("Findings").Delete(&db.Scan{ID: id})
		if result.Error != nil {
			log.Printf("Failed to delete scan %d: %v", id, result.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete scan"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
			return
		}

		log.Printf("Deleted scan %d", id)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
