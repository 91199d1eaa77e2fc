package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

func runningScan(deep bool, startedAgo time.Duration, now time.Time) *db.Scan {
	started := now.Add(-startedAgo)
	return &db.Scan{
		Status:    db.StatusInProgress,
		DeepScan:  deep,
		StartedAt: &started,
	}
}

func TestProgressTerminalStates(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0, Progress(&db.Scan{Status: db.StatusPending}, now))
	assert.Equal(t, 100, Progress(&db.Scan{Status: db.StatusCompleted}, now))
	assert.Equal(t, 100, Progress(&db.Scan{Status: db.StatusFailed}, now))
	assert.Equal(t, 100, Progress(&db.Scan{Status: db.StatusCancelled}, now))
}

func TestProgressRunningScan(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 50, Progress(runningScan(false, 7500*time.Millisecond, now), now))
	assert.Equal(t, 25, Progress(runningScan(true, 15*time.Second, now), now))

	// never reports done while still running
	assert.Equal(t, 99, Progress(runningScan(false, 10*time.Minute, now), now))
	// never reports zero once started
	assert.Equal(t, 1, Progress(runningScan(false, 0, now), now))
}

func TestProgressRunningWithoutStartTime(t *testing.T) {
	assert.Equal(t, 0, Progress(&db.Scan{Status: db.StatusInProgress}, time.Now()))
}

func TestCurrentActivity(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "Waiting in queue", CurrentActivity(&db.Scan{Status: db.StatusPending}, now))
	assert.Equal(t, "Scan completed", CurrentActivity(&db.Scan{Status: db.StatusCompleted}, now))
	assert.Equal(t, "Scan failed", CurrentActivity(&db.Scan{Status: db.StatusFailed}, now))
	assert.Equal(t, "Scan cancelled", CurrentActivity(&db.Scan{Status: db.StatusCancelled}, now))

	assert.Equal(t, "Loading page content",
		CurrentActivity(runningScan(false, time.Second, now), now))
	assert.Equal(t, "Checking images, headings and forms",
		CurrentActivity(runningScan(false, 5*time.Second, now), now))
	assert.Equal(t, "Analyzing links, tables and ARIA usage",
		CurrentActivity(runningScan(false, 10*time.Second, now), now))
	assert.Equal(t, "Calculating compliance score",
		CurrentActivity(runningScan(false, 14*time.Second, now), now))
}
