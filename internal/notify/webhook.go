package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/drishyascan/a11y-scanner/internal/db"
)

// payload is the body posted to a scan's callback URL
type payload struct {
	ScanID          uint          `json:"scan_id"`
	URL             string        `json:"url"`
	Status          db.ScanStatus `json:"status"`
	ComplianceScore *float64      `json:"compliance_score,omitempty"`
	PagesScanned    int           `json:"pages_scanned"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at"`
}

// Webhook posts finished-scan notifications to the callback URL a scan was
// created with. Failures are logged and swallowed; notification delivery
// never changes scan state.
type Webhook struct {
	client *http.Client
}

// NewWebhook creates a webhook notifier
func NewWebhook(timeout time.Duration) *Webhook {
	return &Webhook{
		client: &http.Client{Timeout: timeout},
	}
}

// NotifyScanFinished posts the scan outcome to its callback URL, if set
func (w *Webhook) NotifyScanFinished(scan *db.Scan) {
	if scan.CallbackURL == "" {
		return
	}

	body, err := json.Marshal(payload{
		ScanID:          scan.ID,
		URL:             scan.URL,
		Status:          scan.Status,
		ComplianceScore: scan.ComplianceScore,
		PagesScanned:    scan.PagesScanned,
		ErrorMessage:    scan.ErrorMessage,
		CompletedAt:     scan.CompletedAt,
	})
	if err != nil {
		log.Printf("Failed to marshal webhook payload for scan %d: %v", scan.ID, err)
		return
	}

	resp, err := w.client.Post(scan.CallbackURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Webhook delivery failed for scan %d: %v", scan.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Webhook for scan %d returned HTTP %d", scan.ID, resp.StatusCode)
		return
	}

	log.Printf("Webhook delivered for scan %d", scan.ID)
}
