package worker

import (
	"context"
	"log"
	"time"
)

// Job is one unit of scheduled work.
type Job func()

// RefreshScheduler runs registered jobs on a fixed interval. It backs the
// snapshot reload loop so long-running processes pick up replaced source
// files without a restart.
type RefreshScheduler struct {
	Name   string
	Ticker *time.Ticker
	Jobs   []Job
}

func NewRefreshScheduler(name string, interval time.Duration) *RefreshScheduler {
	return &RefreshScheduler{
		Name:   name,
		Ticker: time.NewTicker(interval),
		Jobs:   make([]Job, 0),
	}
}

func (s *RefreshScheduler) AddJob(job Job) {
	s.Jobs = append(s.Jobs, job)
}

func (s *RefreshScheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler %s] Running with %d jobs\n", s.Name, len(s.Jobs))
	defer s.Ticker.Stop()

	for {
		select {
		case <-s.Ticker.C:
			for _, job := range s.Jobs {
				job()
			}
		case <-ctx.Done():
			log.Printf("[Scheduler %s] Shutting down.\n", s.Name)
			return
		}
	}
}
