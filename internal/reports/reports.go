package reports

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/service"
	"github.com/drishyascan/a11y-scanner/internal/wcag"
)

// Summary aggregates one completed scan
type Summary struct {
	ScanID               uint                      `json:"scan_id"`
	URL                  string                    `json:"url"`
	ScanName             string                    `json:"scan_name,omitempty"`
	Status               db.ScanStatus             `json:"status"`
	ComplianceScore      *float64                  `json:"compliance_score"`
	PagesScanned         int                       `json:"pages_scanned"`
	TotalElementsChecked int                       `json:"total_elements_checked"`
	TotalFindings        int64                     `json:"total_findings"`
	SeverityCounts       map[db.Severity]int64     `json:"severity_counts"`
	CategoryCounts       map[db.IssueCategory]int64 `json:"category_counts"`
	StartedAt            *time.Time                `json:"started_at"`
	CompletedAt          *time.Time                `json:"completed_at"`
}

// TrendPoint is one completed scan on a URL's score history
type TrendPoint struct {
	ScanID          uint       `json:"scan_id"`
	ComplianceScore *float64   `json:"compliance_score"`
	TotalFindings   int64      `json:"total_findings"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// Differences holds the deltas between two compared scans, second minus
// first.
type Differences struct {
	ScoreDelta        float64               `json:"score_delta"`
	FindingCountDelta int64                 `json:"finding_count_delta"`
	SeverityDeltas    map[db.Severity]int64 `json:"severity_deltas"`
}

// Comparison carries both scans' full summaries plus their differences
type Comparison struct {
	Scan1       *Summary    `json:"scan1"`
	Scan2       *Summary    `json:"scan2"`
	Differences Differences `json:"differences"`
}

// Dashboard summarizes the whole system for the landing view
type Dashboard struct {
	ScanCounts             map[db.ScanStatus]int64 `json:"scan_counts"`
	AverageComplianceScore float64                 `json:"average_compliance_score"`
	TotalFindings          int64                   `json:"total_findings"`
	ScansInWindow          int64                   `json:"scans_in_window"`
	WindowStart            time.Time               `json:"window_start"`
	WindowEnd              time.Time               `json:"window_end"`
}

// IssueDetail is a finding enriched with its WCAG reference
type IssueDetail struct {
	ID              uint             `json:"id"`
	Category        db.IssueCategory `json:"category"`
	Description     string           `json:"description"`
	ElementSelector string           `json:"element_selector"`
	Severity        db.Severity      `json:"severity"`
	WCAGCriterion   string           `json:"wcag_criterion"`
	HelpURL         string           `json:"help_url"`
}

// ScanSummary builds the aggregate report for a single scan
func ScanSummary(dbConn *gorm.DB, scanID uint) (*Summary, error) {
	scan, err := service.GetScanByID(dbConn, scanID)
	if err != nil {
		return nil, err
	}

	total, err := service.CountFindingsForScan(dbConn, scanID)
	if err != nil {
		return nil, err
	}

	severityCounts, err := service.SeverityCounts(dbConn, scanID)
	if err != nil {
		return nil, err
	}

	categoryCounts, err := service.CategoryCounts(dbConn, scanID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		ScanID:               scan.ID,
		URL:                  scan.URL,
		ScanName:             scan.ScanName,
		Status:               scan.Status,
		ComplianceScore:      scan.ComplianceScore,
		PagesScanned:         scan.PagesScanned,
		TotalElementsChecked: scan.TotalElementsChecked,
		TotalFindings:        total,
		SeverityCounts:       severityCounts,
		CategoryCounts:       categoryCounts,
		StartedAt:            scan.StartedAt,
		CompletedAt:          scan.CompletedAt,
	}, nil
}

// ScoreTrend returns the score history for a URL, newest first, over its
// last limit completed scans.
func ScoreTrend(dbConn *gorm.DB, url string, limit int) ([]TrendPoint, error) {
	scans, err := service.CompletedScansForURL(dbConn, url, limit)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(scans))
	for _, scan := range scans {
		total, err := service.CountFindingsForScan(dbConn, scan.ID)
		if err != nil {
			return nil, err
		}
		points = append(points, TrendPoint{
			ScanID:          scan.ID,
			ComplianceScore: scan.ComplianceScore,
			TotalFindings:   total,
			CompletedAt:     scan.CompletedAt,
		})
	}
	return points, nil
}

// CompareScans reports both scans' full summaries side by side with their
// deltas. Deltas are the second scan minus the first, so a positive score
// delta means the second scan improved.
func CompareScans(dbConn *gorm.DB, firstID, secondID uint) (*Comparison, error) {
	first, err := service.GetScanByID(dbConn, firstID)
	if err != nil {
		return nil, err
	}
	second, err := service.GetScanByID(dbConn, secondID)
	if err != nil {
		return nil, err
	}
	if first.Status != db.StatusCompleted || second.Status != db.StatusCompleted {
		return nil, fmt.Errorf("both scans must be completed to compare")
	}

	firstSummary, err := ScanSummary(dbConn, firstID)
	if err != nil {
		return nil, err
	}
	secondSummary, err := ScanSummary(dbConn, secondID)
	if err != nil {
		return nil, err
	}

	severityDeltas := make(map[db.Severity]int64, len(db.AllSeverities))
	for _, severity := range db.AllSeverities {
		severityDeltas[severity] = secondSummary.SeverityCounts[severity] - firstSummary.SeverityCounts[severity]
	}

	var scoreDelta float64
	if firstSummary.ComplianceScore != nil && secondSummary.ComplianceScore != nil {
		scoreDelta = *secondSummary.ComplianceScore - *firstSummary.ComplianceScore
	}

	return &Comparison{
		Scan1: firstSummary,
		Scan2: secondSummary,
		Differences: Differences{
			ScoreDelta:        scoreDelta,
			FindingCountDelta: secondSummary.TotalFindings - firstSummary.TotalFindings,
			SeverityDeltas:    severityDeltas,
		},
	}, nil
}

// BuildDashboard computes system-wide totals plus created-scan volume over
// the [start, end] window. Every status appears in the counts even when
// zero; the average score covers completed scans only and is 0.0 when none
// exist.
func BuildDashboard(dbConn *gorm.DB, start, end time.Time) (*Dashboard, error) {
	scanCounts := make(map[db.ScanStatus]int64, len(db.AllScanStatuses))
	for _, status := range db.AllScanStatuses {
		count, err := service.CountScansByStatus(dbConn, status)
		if err != nil {
			return nil, err
		}
		scanCounts[status] = count
	}

	var avgScore float64
	row := dbConn.Model(&db.Scan{}).
		Where("status = ? AND compliance_score IS NOT NULL", db.StatusCompleted).
		Select("COALESCE(AVG(compliance_score), 0)").
		Row()
	if err := row.Scan(&avgScore); err != nil {
		return nil, err
	}

	var totalFindings int64
	err := dbConn.Model(&db.Finding{}).
		Joins("JOIN scans ON scans.id = findings.scan_id").
		Where("scans.status = ?", db.StatusCompleted).
		Count(&totalFindings).Error
	if err != nil {
		return nil, err
	}

	inWindow, err := service.CountScansCreatedBetween(dbConn, start, end)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		ScanCounts:             scanCounts,
		AverageComplianceScore: avgScore,
		TotalFindings:          totalFindings,
		ScansInWindow:          inWindow,
		WindowStart:            start,
		WindowEnd:              end,
	}, nil
}

// IssueDetails returns a scan's findings with their WCAG references attached
func IssueDetails(dbConn *gorm.DB, scanID uint) ([]IssueDetail, error) {
	findings, err := service.FindingsForScan(dbConn, scanID)
	if err != nil {
		return nil, err
	}

	details := make([]IssueDetail, 0, len(findings))
	for _, f := range findings {
		details = append(details, IssueDetail{
			ID:              f.ID,
			Category:        f.Category,
			Description:     f.Description,
			ElementSelector: f.ElementSelector,
			Severity:        f.Severity,
			WCAGCriterion:   wcag.Criterion(f.Category),
			HelpURL:         wcag.HelpURL(f.Category),
		})
	}
	return details, nil
}
