package services

import (
	"context"
	"log"
	"time"
)

const retentionPollInterval = 1 * time.Hour

type sessionPruner interface {
	DeleteIdleAnonymous(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionScheduler periodically deletes anonymous sessions nobody has
// touched within the retention window.
type RetentionScheduler struct {
	sessions  sessionPruner
	retention time.Duration
	interval  time.Duration
	stopChan  chan struct{}
}

func NewRetentionScheduler(sessions sessionPruner, retentionDays int) *RetentionScheduler {
	return &RetentionScheduler{
		sessions:  sessions,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  retentionPollInterval,
		stopChan:  make(chan struct{}),
	}
}

func (s *RetentionScheduler) Start() {
	if s.sessions == nil || s.retention <= 0 {
		return
	}

	go s.loop()

	log.Printf("[retention] scheduler started (anonymous sessions kept %s)", s.retention)
}

func (s *RetentionScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *RetentionScheduler) loop() {
	// Run on startup as well as by interval.
	s.prune(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.prune(context.Background(), time.Now().UTC())
		}
	}
}

func (s *RetentionScheduler) prune(ctx context.Context, now time.Time) {
	removed, err := s.sessions.DeleteIdleAnonymous(ctx, retentionCutoff(now, s.retention))
	if err != nil {
		log.Printf("[retention] failed to delete idle sessions: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[retention] deleted %d idle anonymous sessions", removed)
	}
}

func retentionCutoff(now time.Time, retention time.Duration) time.Time {
	return now.UTC().Add(-retention)
}
