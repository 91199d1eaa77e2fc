package reports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/service"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reports_%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&db.User{}, &db.Website{}, &db.Scan{}, &db.Finding{}))
	return conn
}

func completedScan(t *testing.T, conn *gorm.DB, url string, score float64, completedAgo time.Duration) *db.Scan {
	t.Helper()

	completed := time.Now().Add(-completedAgo)
	scan, err := service.CreateScan(conn, &db.Scan{
		URL:             url,
		Status:          db.StatusCompleted,
		ComplianceScore: &score,
		CompletedAt:     &completed,
		PagesScanned:    1,
	})
	require.NoError(t, err)
	return scan
}

func addFindings(t *testing.T, conn *gorm.DB, scanID uint, severities ...db.Severity) {
	t.Helper()

	findings := make([]db.Finding, 0, len(severities))
	for _, severity := range severities {
		findings = append(findings, db.Finding{
			Category:        db.CategoryAltText,
			Description:     "Image is missing alt text",
			ElementSelector: "img",
			Severity:        severity,
		})
	}
	_, err := service.SaveFindings(conn, scanID, findings)
	require.NoError(t, err)
}

func TestScanSummary(t *testing.T) {
	conn := openTestDB(t)
	scan := completedScan(t, conn, "https://acme.test", 88.0, time.Hour)
	addFindings(t, conn, scan.ID, db.SeverityHigh, db.SeverityHigh, db.SeverityLow)

	summary, err := ScanSummary(conn, scan.ID)
	require.NoError(t, err)

	assert.Equal(t, scan.ID, summary.ScanID)
	assert.Equal(t, "https://acme.test", summary.URL)
	assert.Equal(t, int64(3), summary.TotalFindings)
	assert.Equal(t, int64(2), summary.SeverityCounts[db.SeverityHigh])
	assert.Equal(t, int64(0), summary.SeverityCounts[db.SeverityMedium])
	assert.Equal(t, int64(3), summary.CategoryCounts[db.CategoryAltText])
	require.NotNil(t, summary.ComplianceScore)
	assert.Equal(t, 88.0, *summary.ComplianceScore)
}

func TestScanSummaryNotFound(t *testing.T) {
	conn := openTestDB(t)

	_, err := ScanSummary(conn, 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestScoreTrendNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	oldest := completedScan(t, conn, "https://acme.test", 70.0, 3*time.Hour)
	middle := completedScan(t, conn, "https://acme.test", 80.0, 2*time.Hour)
	newest := completedScan(t, conn, "https://acme.test", 90.0, time.Hour)
	completedScan(t, conn, "https://other.test", 50.0, time.Hour)

	trend, err := ScoreTrend(conn, "https://acme.test", 2)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, newest.ID, trend[0].ScanID)
	assert.Equal(t, middle.ID, trend[1].ScanID)

	full, err := ScoreTrend(conn, "https://acme.test", 10)
	require.NoError(t, err)
	require.Len(t, full, 3)
	assert.Equal(t, oldest.ID, full[2].ScanID)
}

func TestCompareScans(t *testing.T) {
	conn := openTestDB(t)
	base := completedScan(t, conn, "https://acme.test", 70.0, 2*time.Hour)
	target := completedScan(t, conn, "https://acme.test", 85.0, time.Hour)
	addFindings(t, conn, base.ID, db.SeverityHigh, db.SeverityHigh, db.SeverityMedium)
	addFindings(t, conn, target.ID, db.SeverityHigh)

	comparison, err := CompareScans(conn, base.ID, target.ID)
	require.NoError(t, err)

	require.NotNil(t, comparison.Scan1)
	require.NotNil(t, comparison.Scan2)
	assert.Equal(t, base.ID, comparison.Scan1.ScanID)
	assert.Equal(t, target.ID, comparison.Scan2.ScanID)
	assert.Equal(t, int64(3), comparison.Scan1.TotalFindings)
	assert.Equal(t, int64(1), comparison.Scan2.TotalFindings)

	assert.Equal(t, 15.0, comparison.Differences.ScoreDelta)
	assert.Equal(t, int64(-2), comparison.Differences.FindingCountDelta)
	assert.Equal(t, int64(-1), comparison.Differences.SeverityDeltas[db.SeverityHigh])
	assert.Equal(t, int64(-1), comparison.Differences.SeverityDeltas[db.SeverityMedium])
	assert.Equal(t, int64(0), comparison.Differences.SeverityDeltas[db.SeverityLow])
}

func TestCompareScansRequiresCompletion(t *testing.T) {
	conn := openTestDB(t)
	base := completedScan(t, conn, "https://acme.test", 70.0, time.Hour)
	pending, err := service.CreateScan(conn, &db.Scan{URL: "https://acme.test"})
	require.NoError(t, err)

	_, err = CompareScans(conn, base.ID, pending.ID)
	assert.ErrorContains(t, err, "must be completed")
}

func TestBuildDashboard(t *testing.T) {
	conn := openTestDB(t)

	first := completedScan(t, conn, "https://acme.test", 80.0, time.Hour)
	completedScan(t, conn, "https://acme.test", 100.0, time.Hour)
	_, err := service.CreateScan(conn, &db.Scan{URL: "https://acme.test"})
	require.NoError(t, err)
	addFindings(t, conn, first.ID, db.SeverityHigh, db.SeverityLow)

	now := time.Now()
	dashboard, err := BuildDashboard(conn, now.Add(-24*time.Hour), now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), dashboard.ScanCounts[db.StatusCompleted])
	assert.Equal(t, int64(1), dashboard.ScanCounts[db.StatusPending])
	assert.Equal(t, int64(0), dashboard.ScanCounts[db.StatusFailed], "every status is present even at zero")
	assert.Len(t, dashboard.ScanCounts, len(db.AllScanStatuses))
	assert.InDelta(t, 90.0, dashboard.AverageComplianceScore, 0.001)
	assert.Equal(t, int64(2), dashboard.TotalFindings)
	assert.Equal(t, int64(3), dashboard.ScansInWindow)
}

func TestBuildDashboardWindowExcludesOldScans(t *testing.T) {
	conn := openTestDB(t)
	scan := completedScan(t, conn, "https://acme.test", 80.0, time.Hour)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, conn.Model(scan).Update("created_at", old).Error)

	now := time.Now()
	dashboard, err := BuildDashboard(conn, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dashboard.ScansInWindow)
	assert.Equal(t, int64(1), dashboard.ScanCounts[db.StatusCompleted], "status counts are not windowed")
}

func TestBuildDashboardEmpty(t *testing.T) {
	conn := openTestDB(t)

	now := time.Now()
	dashboard, err := BuildDashboard(conn, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dashboard.AverageComplianceScore)
	assert.Equal(t, int64(0), dashboard.TotalFindings)
}

func TestIssueDetailsCarryWCAGReferences(t *testing.T) {
	conn := openTestDB(t)
	scan := completedScan(t, conn, "https://acme.test", 95.0, time.Hour)
	addFindings(t, conn, scan.ID, db.SeverityHigh)

	details, err := IssueDetails(conn, scan.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, db.CategoryAltText, details[0].Category)
	assert.NotEmpty(t, details[0].WCAGCriterion)
	assert.Contains(t, details[0].HelpURL, "w3.org")
}
