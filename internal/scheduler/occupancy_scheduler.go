package scheduler

import (
	"context"
	"log"
	"time"
)

// Reconciler closes out reservations still checked in past their checkout
// date.
type Reconciler interface {
	ReconcileOverdueCheckouts(ctx context.Context, asOf time.Time) (int, error)
}

// OccupancyScheduler runs the overdue-checkout sweep shortly after midnight
// every day, so rooms whose guests left without an explicit check-out do not
// stay occupied forever.
type OccupancyScheduler struct {
	reconciler Reconciler
	ticker     *time.Ticker
}

// NewOccupancyScheduler creates a new instance of the occupancy scheduler
func NewOccupancyScheduler(reconciler Reconciler) *OccupancyScheduler {
	return &OccupancyScheduler{reconciler: reconciler}
}

// Start launches the scheduler: one immediate sweep, then one every 24 hours
// starting at 00:01.
func (s *OccupancyScheduler) Start() {
	log.Println("🕐 Occupancy scheduler started - runs every 24 hours")

	s.RunNow()

	now := time.Now()
	nextRun := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 1, 0, 0, now.Location())
	log.Printf("⏰ Next sweep scheduled: %s", nextRun.Format("2006-01-02 15:04:05"))

	time.AfterFunc(time.Until(nextRun), func() {
		s.RunNow()

		s.ticker = time.NewTicker(24 * time.Hour)
		go func() {
			for range s.ticker.C {
				s.RunNow()
			}
		}()
	})
}

// Stop halts the scheduler.
func (s *OccupancyScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		log.Println("🛑 Occupancy scheduler stopped")
	}
}

// RunNow performs a single sweep.
func (s *OccupancyScheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	closed, err := s.reconciler.ReconcileOverdueCheckouts(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("❌ Overdue checkout sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("✅ Overdue checkout sweep closed %d reservations", closed)
	}
}
