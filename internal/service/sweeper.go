package service

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

// HoldSweeper periodically deletes expired seat holds. Mutating flows
// already reap lazily inside their transactions; the sweeper keeps the
// table small when a showtime sees no traffic after holds lapse.
type HoldSweeper struct {
	holds     *repository.HoldRepo
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewHoldSweeper builds a sweeper running every interval.
func NewHoldSweeper(holds *repository.HoldRepo, interval time.Duration) *HoldSweeper {
	return &HoldSweeper{holds: holds, interval: interval}
}

// Start schedules the sweep job and begins running it. Call Stop to
// shut the scheduler down.
func (s *HoldSweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}
	s.scheduler = sched
	sched.Start()
	log.Printf("hold sweeper started, interval %s", s.interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *HoldSweeper) Stop() {
	if s.scheduler != nil {
		_ = s.scheduler.Shutdown()
	}
}

func (s *HoldSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := s.holds.ExpireAll(ctx)
	if err != nil {
		log.Printf("hold sweeper: expire failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("hold sweeper: reaped %d expired holds", n)
	}
}
