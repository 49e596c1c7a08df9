package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/config"
)

// InvitationExpirer is the slice of the invitations repository the sweep
// needs. Expiry is a conditional bulk update, so sweeps that race with
// redemptions never clobber a just-used invitation.
type InvitationExpirer interface {
	ExpireOlderThan(ttl time.Duration) (int64, error)
}

// InvitationSweepScheduler periodically expires stale pending invitations.
type InvitationSweepScheduler struct {
	store InvitationExpirer
	cfg   config.Invitations

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewInvitationSweepScheduler creates a new scheduler instance
func NewInvitationSweepScheduler(store InvitationExpirer, cfg config.Invitations) *InvitationSweepScheduler {
	return &InvitationSweepScheduler{
		store: store,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if sweeping is enabled
func (s *InvitationSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.SweepEnabled {
		log.Printf("Invitation sweep scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.cfg.SweepSchedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Invitation sweep scheduler: started with schedule '%s' (TTL %v)",
		s.cfg.SweepSchedule, s.cfg.TTL)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *InvitationSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Invitation sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep
func (s *InvitationSweepScheduler) RunNow() error {
	go s.runSweep()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *InvitationSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur
func (s *InvitationSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep performs the actual expiry pass
func (s *InvitationSweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Invitation sweep: skipped (already running)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	startTime := time.Now()

	expired, err := s.store.ExpireOlderThan(s.cfg.TTL)
	if err != nil {
		log.Printf("Invitation sweep: failed: %v", err)
		return
	}

	if expired == 0 {
		log.Printf("Invitation sweep: no pending invitations past TTL")
		return
	}

	log.Printf("Invitation sweep: expired %d invitations in %v",
		expired, time.Since(startTime).Round(time.Millisecond))
}
