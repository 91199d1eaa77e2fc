package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/service"
)

// Enqueuer hands a persisted scan to the worker pool
type Enqueuer interface {
	Enqueue(id uint) error
}

// Service triggers recurring scans of registered websites: a shallow pass
// every hour and a deep pass at midnight.
type Service struct {
	db        *gorm.DB
	enqueuer  Enqueuer
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewService creates a scheduler with the default hourly cadence
func NewService(dbConn *gorm.DB, enqueuer Enqueuer) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		db:       dbConn,
		enqueuer: enqueuer,
		interval: time.Hour,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the hourly and midnight loops
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	s.isRunning = true

	s.wg.Add(2)
	go s.hourlyLoop()
	go s.midnightLoop()

	log.Println("Scheduler started")
	return nil
}

// Stop stops the scheduler gracefully
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.wg.Wait()

	log.Println("Scheduler stopped")
	return nil
}

func (s *Service) hourlyLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ScanAllActiveWebsites(false)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) midnightLoop() {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(untilNextMidnight(time.Now()))
		select {
		case <-timer.C:
			s.ScanAllActiveWebsites(true)
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// untilNextMidnight returns the duration until the next local midnight
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	return next.Sub(now)
}

// ScanAllActiveWebsites creates and enqueues a scan for every active
// website. A failure on one website is logged and does not stop the rest.
func (s *Service) ScanAllActiveWebsites(deep bool) {
	websites, err := service.ActiveWebsites(s.db)
	if err != nil {
		log.Printf("Scheduler failed to list active websites: %v", err)
		return
	}

	kind := "shallow"
	if deep {
		kind = "deep"
	}
	log.Printf("Scheduler starting %s scans for %d websites", kind, len(websites))

	for _, website := range websites {
		if err := s.scanWebsite(website, deep); err != nil {
			log.Printf("Scheduler failed to scan %s: %v", website.URL, err)
		}
	}
}

func (s *Service) scanWebsite(website db.Website, deep bool) error {
	maxPages := 1
	if deep {
		maxPages = 10
	}

	scan, err := service.CreateScan(s.db, &db.Scan{
		URL:      website.URL,
		ScanName: fmt.Sprintf("Scheduled scan of %s", website.Name),
		Status:   db.StatusPending,
		DeepScan: deep,
		MaxPages: maxPages,
	})
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	if err := s.enqueuer.Enqueue(scan.ID); err != nil {
		return fmt.Errorf("failed to enqueue scan %d: %w", scan.ID, err)
	}
	return nil
}
