/*
scheduler.go - Periodic audit reconciliation

PURPOSE:
  While the legacy dataset is being compared, re-runs the audit for every
  employee on an interval so weeks corrected after an import get their
  annotations refreshed without a manual call.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Each pass walks all employees and calls Service.ReconcileAll
  - Errors for one employee are logged and do not stop the pass
  - The audit is idempotent, so overlapping manual runs are harmless

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAuditScheduler(store, service, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ReconcileAll endpoint (manual reconciliation)
  - timekeeping/audit.go: the comparison itself
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/hours-engine/timekeeping"
)

// AuditScheduler re-runs the audit reconciliation on an interval.
type AuditScheduler struct {
	Store         Store
	Service       *timekeeping.Service
	Log           logrus.FieldLogger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// PassSummary counts the outcome of one pass.
type PassSummary struct {
	Employees   int
	Checked     int
	Differences int
	Failed      int
}

// NewAuditScheduler creates a new scheduler.
func NewAuditScheduler(store Store, svc *timekeeping.Service, log logrus.FieldLogger) *AuditScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditScheduler{
		Store:         store,
		Service:       svc,
		Log:           log.WithField("component", "audit-scheduler"),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *AuditScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled || s.CheckInterval <= 0 {
		s.Log.Info("disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Log.WithField("interval", s.CheckInterval.String()).Info("started")
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *AuditScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info("stopped")
	}
}

func (s *AuditScheduler) run() {
	defer s.wg.Done()

	s.RunNow(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunNow performs one pass over all employees.
func (s *AuditScheduler) RunNow(ctx context.Context) PassSummary {
	var sum PassSummary

	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		s.Log.WithError(err).Error("listing employees")
		return sum
	}
	sum.Employees = len(employees)

	for _, emp := range employees {
		results, err := s.Service.ReconcileAll(ctx, emp.ID)
		if err != nil {
			sum.Failed++
			s.Log.WithError(err).WithField("employee_id", emp.ID).Error("reconciling employee")
			continue
		}
		for _, res := range results {
			if res.Skipped {
				continue
			}
			sum.Checked++
			if res.HasDifference {
				sum.Differences++
			}
		}
	}

	if sum.Checked > 0 || sum.Failed > 0 {
		s.Log.WithFields(logrus.Fields{
			"employees":   sum.Employees,
			"checked":     sum.Checked,
			"differences": sum.Differences,
			"failed":      sum.Failed,
		}).Info("audit pass completed")
	}
	return sum
}
