package scanner

import (
	"time"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

const (
	shallowScanEstimate = 15 * time.Second
	deepScanEstimate    = 60 * time.Second
)

// Progress estimates how far along a scan is, as a percentage. Terminal
// scans report 100 and pending ones 0; running scans are estimated from
// elapsed time against a fixed budget and never report done early.
func Progress(scan *db.Scan, now time.Time) int {
	switch scan.Status {
	case db.StatusPending:
		return 0
	case db.StatusCompleted, db.StatusFailed, db.StatusCancelled:
		return 100
	}

	if scan.StartedAt == nil {
		return 0
	}

	estimate := shallowScanEstimate
	if scan.DeepScan {
		estimate = deepScanEstimate
	}

	elapsed := now.Sub(*scan.StartedAt)
	percent := int(elapsed * 100 / estimate)
	if percent < 1 {
		percent = 1
	}
	if percent > 99 {
		percent = 99
	}
	return percent
}

// CurrentActivity describes what a scan is doing right now, for status
// polling clients.
func CurrentActivity(scan *db.Scan, now time.Time) string {
	switch scan.Status {
	case db.StatusPending:
		return "Waiting in queue"
	case db.StatusCompleted:
		return "Scan completed"
	case db.StatusFailed:
		return "Scan failed"
	case db.StatusCancelled:
		return "Scan cancelled"
	}

	percent := Progress(scan, now)
	switch {
	case percent < 20:
		return "Loading page content"
	case percent < 50:
		return "Checking images, headings and forms"
	case percent < 80:
		return "Analyzing links, tables and ARIA usage"
	default:
		return "Calculating compliance score"
	}
}
