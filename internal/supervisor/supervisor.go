// Package supervisor owns the forwarding worker: its configuration, its
// run/stop lifecycle and the poll loop.
package supervisor

import (
	"context"
	"sync"
	"time"

	"imap-telegram-forwarder/internal/config"
	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/models"
	"imap-telegram-forwarder/internal/scanner"

	"github.com/cockroachdb/errors"
)

// DefaultStopGrace is how long Stop waits for the loop to exit before cancelling the cycle in flight
const DefaultStopGrace = 10 * time.Second

// Scanner runs one poll cycle
type Scanner interface {
	Scan(ctx context.Context) (models.ScanReport, error)
}

// ScannerFactory builds the Scanner for one worker run
type ScannerFactory func(cfg models.ForwarderConfig) Scanner

// DefaultScannerFactory uses the real IMAP client and Telegram notifier
func DefaultScannerFactory(cfg models.ForwarderConfig) Scanner {
	return scanner.NewForConfig(cfg)
}

type run struct {
	stop   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *run) running() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

type Supervisor struct {
	// ctl serializes Configure, Start and Stop; mu guards the fields below
	// and is never held while waiting for a run to exit
	ctl        sync.Mutex
	mu         sync.Mutex
	cfg        *models.ForwarderConfig
	current    *run
	newScanner ScannerFactory
	stopGrace  time.Duration
}

// New creates a stopped, unconfigured Supervisor
func New(newScanner ScannerFactory) *Supervisor {
	if newScanner == nil {
		newScanner = DefaultScannerFactory
	}
	return &Supervisor{
		newScanner: newScanner,
		stopGrace:  DefaultStopGrace,
	}
}

// SetStopGrace overrides DefaultStopGrace
func (s *Supervisor) SetStopGrace(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopGrace = d
}

// Configure replaces the configuration and (re)starts the worker with it
func (s *Supervisor) Configure(cfg models.ForwarderConfig) models.ControlResult {
	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return models.ControlResult{Status: models.StatusError, Message: err.Error()}
	}

	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = &cfg
	s.startLocked()
	return models.ControlResult{Status: models.StatusOK, Message: "Configured and worker started."}
}

// Start starts the worker with the last configuration
func (s *Supervisor) Start() models.ControlResult {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return models.ControlResult{Status: models.StatusError, Message: "Not configured yet. POST /configure first."}
	}
	if s.current != nil && s.current.running() {
		return models.ControlResult{Status: models.StatusOK, Message: "Worker already running."}
	}
	s.startLocked()
	return models.ControlResult{Status: models.StatusOK, Message: "Worker started."}
}

// Stop signals the worker and waits for it to exit. Stopping a stopped worker is a no-op.
func (s *Supervisor) Stop() models.ControlResult {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if !s.halt() {
		return models.ControlResult{Status: models.StatusOK, Message: "Worker not running."}
	}
	return models.ControlResult{Status: models.StatusOK, Message: "Worker stop requested."}
}

// Status reports whether a configuration is set and the worker is running
func (s *Supervisor) Status() models.WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.WorkerStatus{
		Configured:    s.cfg != nil,
		WorkerRunning: s.current != nil && s.current.running(),
	}
}

func (s *Supervisor) startLocked() {
	cfg := *s.cfg
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		stop:   make(chan struct{}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.current = r

	go s.loop(ctx, r, s.newScanner(cfg), cfg.Interval())
	logging.Log.Infof("Worker started (poll interval %s)", cfg.Interval())
}

// halt detaches the current run and waits for it to exit, cancelling it after the grace period.
// It reports false when there was no run. Callers hold ctl, not mu.
func (s *Supervisor) halt() bool {
	s.mu.Lock()
	r := s.current
	s.current = nil
	grace := s.stopGrace
	s.mu.Unlock()

	if r == nil {
		return false
	}

	logging.Log.Info("Stopping worker")
	close(r.stop)

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-r.done:
	case <-timer.C:
		logging.Log.Warnf("%v after %s, cancelling the cycle in flight", models.ErrStopTimeout, grace)
	}
	r.cancel()
	return true
}

// loop runs cycles until stop is closed or ctx is cancelled. No cycle error ends it.
func (s *Supervisor) loop(ctx context.Context, r *run, sc Scanner, interval time.Duration) {
	defer close(r.done)

	logging.Log.Infof("Starting IMAP worker (poll interval %s)", interval)
	defer logging.Log.Info("IMAP worker stopped")

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		s.cycle(ctx, sc)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(interval)

		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (s *Supervisor) cycle(ctx context.Context, sc Scanner) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.Errorf("Panic in IMAP processing loop: %v", r)
		}
	}()

	if _, err := sc.Scan(ctx); err != nil {
		switch {
		case errors.Is(err, models.ErrLoginFailed):
			logging.Log.Errorf("IMAP login failed: %v", err)
		case errors.Is(err, models.ErrSearchFailed):
			logging.Log.Warnf("IMAP search failed: %v", err)
		case ctx.Err() != nil:
			logging.Log.Warnf("Scan cycle cancelled: %v", err)
		default:
			logging.Log.Errorf("Error in IMAP processing loop: %v", err)
		}
	}
}
