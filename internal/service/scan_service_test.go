package service

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
)

// openTestDB gives each test its own named in-memory database so parallel
// tests never share state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&db.User{}, &db.Website{}, &db.Scan{}, &db.Finding{}))
	return conn
}

func createTestScan(t *testing.T, conn *gorm.DB, status db.ScanStatus) *db.Scan {
	t.Helper()
	scan, err := CreateScan(conn, &db.Scan{
		URL:      "https://example.com",
		Status:   status,
		MaxPages: 1,
	})
	require.NoError(t, err)
	return scan
}

func TestCreateScanDefaults(t *testing.T) {
	conn := openTestDB(t)

	scan, err := CreateScan(conn, &db.Scan{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, scan.Status)
	assert.NotZero(t, scan.ID)
	assert.Nil(t, scan.ComplianceScore)
	assert.Nil(t, scan.StartedAt)
}

func TestCreateScanGeneratesName(t *testing.T) {
	conn := openTestDB(t)

	unnamed, err := CreateScan(conn, &db.Scan{URL: "https://example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, unnamed.ScanName)
	assert.Contains(t, unnamed.ScanName, "Scan of https://example.com on ")

	named, err := CreateScan(conn, &db.Scan{URL: "https://example.com", ScanName: "Release audit"})
	require.NoError(t, err)
	assert.Equal(t, "Release audit", named.ScanName)
}

func TestCreateScanRejectsEmptyURL(t *testing.T) {
	conn := openTestDB(t)

	_, err := CreateScan(conn, &db.Scan{})
	assert.Error(t, err)
}

func TestTransitionScan(t *testing.T) {
	conn := openTestDB(t)
	scan := createTestScan(t, conn, db.StatusPending)

	now := time.Now()
	claimed, err := TransitionScan(conn, scan.ID,
		[]db.ScanStatus{db.StatusPending},
		map[string]interface{}{"status": db.StatusInProgress, "started_at": &now})
	require.NoError(t, err)
	assert.True(t, claimed)

	// second claim loses the race
	claimed, err = TransitionScan(conn, scan.ID,
		[]db.ScanStatus{db.StatusPending},
		map[string]interface{}{"status": db.StatusInProgress})
	require.NoError(t, err)
	assert.False(t, claimed)

	reloaded, err := GetScanByID(conn, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusInProgress, reloaded.Status)
	require.NotNil(t, reloaded.StartedAt)
}

func TestCancelScan(t *testing.T) {
	t.Run("pending scan cancels", func(t *testing.T) {
		conn := openTestDB(t)
		scan := createTestScan(t, conn, db.StatusPending)

		cancelled, err := CancelScan(conn, scan.ID)
		require.NoError(t, err)
		assert.True(t, cancelled)

		reloaded, err := GetScanByID(conn, scan.ID)
		require.NoError(t, err)
		assert.Equal(t, db.StatusCancelled, reloaded.Status)
		assert.NotNil(t, reloaded.CompletedAt)
	})

	t.Run("running scan cancels", func(t *testing.T) {
		conn := openTestDB(t)
		scan := createTestScan(t, conn, db.StatusInProgress)

		cancelled, err := CancelScan(conn, scan.ID)
		require.NoError(t, err)
		assert.True(t, cancelled)
	})

	t.Run("completed scan stays completed", func(t *testing.T) {
		conn := openTestDB(t)
		scan := createTestScan(t, conn, db.StatusCompleted)

		cancelled, err := CancelScan(conn, scan.ID)
		require.NoError(t, err)
		assert.False(t, cancelled)

		reloaded, err := GetScanByID(conn, scan.ID)
		require.NoError(t, err)
		assert.Equal(t, db.StatusCompleted, reloaded.Status)
	})
}

func TestSaveFindingsAssignsScanID(t *testing.T) {
	conn := openTestDB(t)
	scan := createTestScan(t, conn, db.StatusInProgress)

	saved, err := SaveFindings(conn, scan.ID, []db.Finding{
		{Category: db.CategoryAltText, Description: "Image is missing alt text", ElementSelector: "img", Severity: db.SeverityHigh},
		{Category: db.CategoryContrast, Description: "Low contrast", ElementSelector: "p", Severity: db.SeverityLow},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	for _, f := range saved {
		assert.Equal(t, scan.ID, f.ScanID)
		assert.NotZero(t, f.ID)
	}

	count, err := CountFindingsForScan(conn, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSaveFindingsEmptyBatch(t *testing.T) {
	conn := openTestDB(t)
	scan := createTestScan(t, conn, db.StatusInProgress)

	_, err := SaveFindings(conn, scan.ID, nil)
	assert.NoError(t, err)
}

func TestSeverityCountsZeroFilled(t *testing.T) {
	conn := openTestDB(t)
	scan := createTestScan(t, conn, db.StatusCompleted)

	_, err := SaveFindings(conn, scan.ID, []db.Finding{
		{Category: db.CategoryAltText, Description: "d", ElementSelector: "img", Severity: db.SeverityHigh},
		{Category: db.CategoryAltText, Description: "d", ElementSelector: "img", Severity: db.SeverityHigh},
		{Category: db.CategoryContrast, Description: "d", ElementSelector: "p", Severity: db.SeverityLow},
	})
	require.NoError(t, err)

	counts, err := SeverityCounts(conn, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[db.SeverityHigh])
	assert.Equal(t, int64(0), counts[db.SeverityMedium], "absent severity must still be present as zero")
	assert.Equal(t, int64(1), counts[db.SeverityLow])
	assert.Len(t, counts, len(db.AllSeverities))
}

func TestCategoryCountsOnlyOccurring(t *testing.T) {
	conn := openTestDB(t)
	scan := createTestScan(t, conn, db.StatusCompleted)

	_, err := SaveFindings(conn, scan.ID, []db.Finding{
		{Category: db.CategoryFormLabels, Description: "d", ElementSelector: "input", Severity: db.SeverityHigh},
	})
	require.NoError(t, err)

	counts, err := CategoryCounts(conn, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, map[db.IssueCategory]int64{db.CategoryFormLabels: 1}, counts)
}

func TestLatestScanForURL(t *testing.T) {
	conn := openTestDB(t)

	first := createTestScan(t, conn, db.StatusCompleted)
	require.NoError(t, conn.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)
	second := createTestScan(t, conn, db.StatusPending)

	latest, err := LatestScanForURL(conn, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = LatestScanForURL(conn, "https://other.example")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCompletedScansForURL(t *testing.T) {
	conn := openTestDB(t)

	for i := 0; i < 3; i++ {
		scan := createTestScan(t, conn, db.StatusCompleted)
		completed := time.Now().Add(time.Duration(-i) * time.Hour)
		require.NoError(t, conn.Model(scan).Update("completed_at", &completed).Error)
	}
	createTestScan(t, conn, db.StatusFailed)

	scans, err := CompletedScansForURL(conn, "https://example.com", 2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.True(t, scans[0].CompletedAt.After(*scans[1].CompletedAt))
}

func TestCountScansByStatus(t *testing.T) {
	conn := openTestDB(t)
	createTestScan(t, conn, db.StatusPending)
	createTestScan(t, conn, db.StatusPending)
	createTestScan(t, conn, db.StatusFailed)

	pending, err := CountScansByStatus(conn, db.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	completed, err := CountScansByStatus(conn, db.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(0), completed)
}
