package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MusHusKat/investment-tracker/internal/config"
)

// Materializer derives yearly snapshots from the event streams.
type Materializer interface {
	MaterializeYear(ctx context.Context, year int) (int, error)
}

// Scheduler runs the nightly snapshot materialization job
type Scheduler struct {
	cron      *cron.Cron
	snapshots Materializer
	config    *config.Config
	isRunning bool

	// now is swappable for tests
	now func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(snapshots Materializer, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		snapshots: snapshots,
		config:    cfg,
		now:       time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.Enabled {
		log.Println("Scheduler: disabled in configuration")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Scheduler.MaterializeSpec, s.runMaterialization)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started, materializing snapshots on %q", s.config.Scheduler.MaterializeSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}

// runMaterialization refreshes the snapshots of the previous calendar year.
// The job runs nightly so a year's row keeps converging while events for it
// are still being recorded.
func (s *Scheduler) runMaterialization() {
	year := s.now().UTC().Year() - 1

	log.Printf("Scheduler: materializing snapshots for %d...", year)
	count, err := s.snapshots.MaterializeYear(context.Background(), year)
	if err != nil {
		log.Printf("Scheduler: materialization for %d failed: %v", year, err)
		return
	}
	log.Printf("Scheduler: materialized %d snapshots for %d", count, year)
}
