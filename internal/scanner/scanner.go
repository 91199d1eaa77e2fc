package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/detector"
	"github.com/drishyascan/a11y-scanner/internal/scorer"
	"github.com/drishyascan/a11y-scanner/internal/service"
)

// hardPageCeiling bounds any single scan regardless of requested max_pages
const hardPageCeiling = 10

// Notifier delivers a notification when a scan completes. Delivery is
// best-effort and never affects scan state.
type Notifier interface {
	NotifyScanFinished(scan *db.Scan)
}

// Service represents the scan worker pool
type Service struct {
	db        *gorm.DB
	source    ContentSource
	notifier  Notifier
	queue     chan uint
	workers   int
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// Config holds scanner configuration
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// DefaultConfig returns default scanner configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:   5,
		QueueSize: 100,
		Timeout:   30 * time.Second,
	}
}

// NewService creates a new scanner service
func NewService(dbConn *gorm.DB, source ContentSource, notifier Notifier, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if source == nil {
		source = NewHTTPContentSource(config.Timeout)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		db:       dbConn,
		source:   source,
		notifier: notifier,
		queue:    make(chan uint, config.QueueSize),
		workers:  config.Workers,
		timeout:  config.Timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the scanner service
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scanner service is already running")
	}

	s.isRunning = true

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	log.Printf("Scanner service started with %d workers", s.workers)
	return nil
}

// Stop stops the scanner service gracefully
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	s.cancel()
	close(s.queue)

	s.wg.Wait()

	log.Println("Scanner service stopped")
	return nil
}

// Enqueue adds a scan to the processing queue
func (s *Service) Enqueue(id uint) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("scanner service is not running")
	}

	select {
	case s.queue <- id:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// worker processes scans from the queue
func (s *Service) worker(id int) {
	defer s.wg.Done()

	log.Printf("Worker %d started", id)

	for {
		select {
		case scanID, ok := <-s.queue:
			if !ok {
				log.Printf("Worker %d shutting down", id)
				return
			}
			s.ProcessScan(scanID)
		case <-s.ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// ProcessScan runs a single scan through its full lifecycle
func (s *Service) ProcessScan(id uint) {
	ctx, cancelCtx := context.WithTimeout(s.ctx, s.timeout*hardPageCeiling)
	defer cancelCtx()

	scan, err := service.GetScanByID(s.db, id)
	if err != nil {
		log.Printf("Failed to get scan %d: %v", id, err)
		return
	}

	// Claim the scan. Losing the race means another worker took it or the
	// client cancelled it while queued.
	now := time.Now()
	claimed, err := service.TransitionScan(s.db, id,
		[]db.ScanStatus{db.StatusPending},
		map[string]interface{}{
			"status":     db.StatusInProgress,
			"started_at": &now,
		})
	if err != nil {
		log.Printf("Failed to claim scan %d: %v", id, err)
		return
	}
	if !claimed {
		log.Printf("Scan %d is no longer pending, skipping", id)
		return
	}

	var findings []db.Finding
	pagesScanned := 0
	elementsChecked := 0

	doc, html, err := s.source.Fetch(ctx, scan.URL)
	if err != nil {
		s.failScan(id, fmt.Sprintf("failed to fetch %s: %v", scan.URL, err))
		return
	}

	pageFindings := detector.Run(doc, scan.DeepScan)
	if _, err := service.SaveFindings(s.db, id, pageFindings); err != nil {
		s.failScan(id, fmt.Sprintf("failed to save findings: %v", err))
		return
	}
	findings = append(findings, pageFindings...)
	pagesScanned++
	elementsChecked += strings.Count(html, "<")

	if scan.DeepScan {
		var cancelled bool
		findings, cancelled = s.scanDiscoveredPages(ctx, scan, doc, findings, &pagesScanned, &elementsChecked)
		if cancelled {
			return
		}
	}

	score := scorer.Score(findings)
	completedAt := time.Now()
	completed, err := service.TransitionScan(s.db, id,
		[]db.ScanStatus{db.StatusInProgress},
		map[string]interface{}{
			"status":                 db.StatusCompleted,
			"compliance_score":       &score,
			"pages_scanned":          pagesScanned,
			"total_elements_checked": elementsChecked,
			"completed_at":           &completedAt,
		})
	if err != nil {
		log.Printf("Failed to complete scan %d: %v", id, err)
		return
	}
	if !completed {
		log.Printf("Scan %d was cancelled before completion", id)
		return
	}

	log.Printf("Scan %d completed: %d pages, %d findings, score %.1f", id, pagesScanned, len(findings), score)
	s.sendNotification(id)
}

// scanDiscoveredPages walks same-host links from the first page up to the
// scan's page limit. A page that fails to load is logged and skipped; the
// scan only fails outright when the first page is unreachable.
func (s *Service) scanDiscoveredPages(ctx context.Context, scan *db.Scan, firstPage *goquery.Document, findings []db.Finding, pagesScanned, elementsChecked *int) ([]db.Finding, bool) {
	maxPages := scan.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	if maxPages > hardPageCeiling {
		maxPages = hardPageCeiling
	}

	for _, pageURL := range discoverPages(firstPage, scan.URL) {
		if *pagesScanned >= maxPages {
			break
		}

		// Cooperative cancellation between pages
		current, err := service.GetScanByID(s.db, scan.ID)
		if err == nil && current.Status == db.StatusCancelled {
			log.Printf("Scan %d cancelled after %d pages", scan.ID, *pagesScanned)
			return findings, true
		}

		doc, html, err := s.source.Fetch(ctx, pageURL)
		if err != nil {
			log.Printf("Scan %d: skipping page %s: %v", scan.ID, pageURL, err)
			continue
		}

		pageFindings := detector.Run(doc, true)
		if _, err := service.SaveFindings(s.db, scan.ID, pageFindings); err != nil {
			log.Printf("Scan %d: failed to save findings for %s: %v", scan.ID, pageURL, err)
			continue
		}
		findings = append(findings, pageFindings...)
		*pagesScanned++
		*elementsChecked += strings.Count(html, "<")

		if err := service.UpdateScanFields(s.db, scan.ID, map[string]interface{}{
			"pages_scanned":          *pagesScanned,
			"total_elements_checked": *elementsChecked,
		}); err != nil {
			log.Printf("Scan %d: failed to update page counters: %v", scan.ID, err)
		}
	}

	return findings, false
}

// failScan marks a running scan as FAILED with an error message. A scan that
// fails never gets a compliance score.
func (s *Service) failScan(id uint, message string) {
	log.Printf("Scan %d failed: %s", id, message)

	now := time.Now()
	failed, err := service.TransitionScan(s.db, id,
		[]db.ScanStatus{db.StatusInProgress},
		map[string]interface{}{
			"status":        db.StatusFailed,
			"error_message": message,
			"completed_at":  &now,
		})
	if err != nil {
		log.Printf("Failed to mark scan %d as failed: %v", id, err)
		return
	}
	if !failed {
		log.Printf("Scan %d was cancelled before failure could be recorded", id)
	}
}

// sendNotification reloads a completed scan and posts the callback if one
// is set. Failed scans do not notify.
func (s *Service) sendNotification(id uint) {
	if s.notifier == nil {
		return
	}

	scan, err := service.GetScanByID(s.db, id)
	if err != nil {
		log.Printf("Failed to reload scan %d for notification: %v", id, err)
		return
	}
	s.notifier.NotifyScanFinished(scan)
}
