package service

import (
	"fmt"
	"time"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"gorm.io/gorm"
)

// CreateScan persists a new scan record in PENDING state. A scan without a
// name gets a generated label so listings never show blank entries.
func CreateScan(dbConn *gorm.DB, scan *db.Scan) (*db.Scan, error) {
	if scan.URL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if scan.Status == "" {
		scan.Status = db.StatusPending
	}
	if scan.ScanName == "" {
		scan.ScanName = fmt.Sprintf("Scan of %s on %s", scan.URL, time.Now().Format("2006-01-02 15:04"))
	}

	if err := dbConn.Create(scan).Error; err != nil {
		return nil, err
	}
	return scan, nil
}

// GetScanByID retrieves a scan by ID
func GetScanByID(dbConn *gorm.DB, id uint) (*db.Scan, error) {
	var scan db.Scan
	err := dbConn.First(&scan, id).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// UpdateScanFields applies a partial update to a scan record
func UpdateScanFields(dbConn *gorm.DB, id uint, updates map[string]interface{}) error {
	return dbConn.Model(&db.Scan{}).Where("id = ?", id).Updates(updates).Error
}

// TransitionScan applies updates only when the scan is currently in one of
// the allowed states. It returns false when the scan was in another state,
// which keeps state-machine transitions race-free under a single UPDATE.
func TransitionScan(dbConn *gorm.DB, id uint, allowed []db.ScanStatus, updates map[string]interface{}) (bool, error) {
	result := dbConn.Model(&db.Scan{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CancelScan cancels a scan that is still PENDING or IN_PROGRESS. Returns
// false when the scan is already terminal or does not exist.
func CancelScan(dbConn *gorm.DB, id uint) (bool, error) {
	now := time.Now()
	return TransitionScan(dbConn, id,
		[]db.ScanStatus{db.StatusPending, db.StatusInProgress},
		map[string]interface{}{
			"status":       db.StatusCancelled,
			"completed_at": &now,
		})
}

// SaveFindings links findings to a scan and writes them as one batch, so a
// reader never sees the page counted without its findings.
func SaveFindings(dbConn *gorm.DB, scanID uint, findings []db.Finding) ([]db.Finding, error) {
	if len(findings) == 0 {
		return findings, nil
	}

	for i := range findings {
		findings[i].ScanID = scanID
	}

	if err := dbConn.Create(&findings).Error; err != nil {
		return nil, err
	}
	return findings, nil
}

// FindingsForScan retrieves all findings for a scan in insertion order
func FindingsForScan(dbConn *gorm.DB, scanID uint) ([]db.Finding, error) {
	var findings []db.Finding
	err := dbConn.Where("scan_id = ?", scanID).Order("id").Find(&findings).Error
	return findings, err
}

// FindingsForScanBySeverity retrieves findings filtered by severity
func FindingsForScanBySeverity(dbConn *gorm.DB, scanID uint, severity db.Severity) ([]db.Finding, error) {
	var findings []db.Finding
	err := dbConn.Where("scan_id = ? AND severity = ?", scanID, severity).Order("id").Find(&findings).Error
	return findings, err
}

// FindingsForScanByCategory retrieves findings filtered by category
func FindingsForScanByCategory(dbConn *gorm.DB, scanID uint, category db.IssueCategory) ([]db.Finding, error) {
	var findings []db.Finding
	err := dbConn.Where("scan_id = ? AND category = ?", scanID, category).Order("id").Find(&findings).Error
	return findings, err
}

// CountFindingsForScan returns the total finding count for a scan
func CountFindingsForScan(dbConn *gorm.DB, scanID uint) (int64, error) {
	var count int64
	err := dbConn.Model(&db.Finding{}).Where("scan_id = ?", scanID).Count(&count).Error
	return count, err
}

type severityCountRow struct {
	Severity db.Severity
	Count    int64
}

// SeverityCounts returns finding counts grouped by severity, with every
// severity present even when zero.
func SeverityCounts(dbConn *gorm.DB, scanID uint) (map[db.Severity]int64, error) {
	var rows []severityCountRow
	err := dbConn.Model(&db.Finding{}).
		Select("severity, COUNT(*) as count").
		Where("scan_id = ?", scanID).
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[db.Severity]int64, len(db.AllSeverities))
	for _, severity := range db.AllSeverities {
		counts[severity] = 0
	}
	for _, row := range rows {
		counts[row.Severity] = row.Count
	}
	return counts, nil
}

type categoryCountRow struct {
	Category db.IssueCategory
	Count    int64
}

// CategoryCounts returns finding counts grouped by issue category. Only
// categories that actually occur are present.
func CategoryCounts(dbConn *gorm.DB, scanID uint) (map[db.IssueCategory]int64, error) {
	var rows []categoryCountRow
	err := dbConn.Model(&db.Finding{}).
		Select("category, COUNT(*) as count").
		Where("scan_id = ?", scanID).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[db.IssueCategory]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// LatestScanForURL retrieves the most recent scan for a URL
func LatestScanForURL(dbConn *gorm.DB, url string) (*db.Scan, error) {
	var scan db.Scan
	err := dbConn.Where("url = ?", url).Order("created_at DESC").First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// CompletedScansForURL retrieves the last limit COMPLETED scans for a URL,
// newest completion first.
func CompletedScansForURL(dbConn *gorm.DB, url string, limit int) ([]db.Scan, error) {
	var scans []db.Scan
	query := dbConn.Where("url = ? AND status = ?", url, db.StatusCompleted).
		Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&scans).Error
	return scans, err
}

// ScansByStatus retrieves all scans with a given status
func ScansByStatus(dbConn *gorm.DB, status db.ScanStatus) ([]db.Scan, error) {
	var scans []db.Scan
	err := dbConn.Where("status = ?", status).Find(&scans).Error
	return scans, err
}

// CountScansByStatus returns the number of scans in a given status
func CountScansByStatus(dbConn *gorm.DB, status db.ScanStatus) (int64, error) {
	var count int64
	err := dbConn.Model(&db.Scan{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountScansCreatedBetween returns the number of scans created in a range
func CountScansCreatedBetween(dbConn *gorm.DB, start, end time.Time) (int64, error) {
	var count int64
	err := dbConn.Model(&db.Scan{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}
