// Package scheduler runs the background refresh jobs that keep the roster
// index and market reference lines current.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/metrics"
	"github.com/yourusername/longshot/internal/oddsfeed"
	"github.com/yourusername/longshot/internal/roster"
)

// Scheduler manages the background refresh jobs
type Scheduler struct {
	cron   *cron.Cron
	roster *roster.Index
	odds   *oddsfeed.Feed
	logger logrus.FieldLogger

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler over the roster index and odds feed.
// Either collaborator may be nil; its job is simply not scheduled.
func NewScheduler(ix *roster.Index, odds *oddsfeed.Feed, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		roster: ix,
		odds:   odds,
		logger: logger.WithField("component", "scheduler"),
		jobIDs: make([]cron.EntryID, 0),
	}
}

// ScheduleRosterRefresh schedules periodic roster index refreshes
func (s *Scheduler) ScheduleRosterRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.roster == nil {
		return fmt.Errorf("no roster index to refresh")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.roster.Refresh(ctx); err != nil {
			metrics.RecordProviderRefresh("roster", "error")
			s.logger.WithError(err).Warn("Scheduled roster refresh failed")
			return
		}
		metrics.RecordProviderRefresh("roster", "ok")
		metrics.RosterLastRefresh.Set(float64(time.Now().Unix()))
		s.logger.WithField("digest", s.roster.Digest()).Debug("Roster refreshed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add roster job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled roster refresh")
	return nil
}

// ScheduleOddsRefresh schedules periodic reference-line refreshes
func (s *Scheduler) ScheduleOddsRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.odds == nil {
		return fmt.Errorf("no odds feed to refresh")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.odds.Refresh(ctx); err != nil {
			metrics.RecordProviderRefresh("odds", "error")
			s.logger.WithError(err).Warn("Scheduled odds refresh failed")
			return
		}
		metrics.RecordProviderRefresh("odds", "ok")
		metrics.OddsLastRefresh.Set(float64(time.Now().Unix()))
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add odds job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled odds refresh")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
