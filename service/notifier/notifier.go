package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PollFunc checks the remote notification source once.
type PollFunc func(ctx context.Context) error

// Config holds poller configuration.
type Config struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// DefaultConfig returns the default polling cadence.
func DefaultConfig() Config {
	return Config{
		PollInterval: 15 * time.Minute,
		PollTimeout:  time.Minute,
	}
}

// Notifier is the notification collaborator's polling lifecycle. It stays
// dormant until it receives the fire-once signal from the edit-state
// tracker (or is resumed at startup when the persisted flag is already set),
// then polls the source on a fixed interval.
type Notifier struct {
	poll     PollFunc
	cfg      Config
	logger   *slog.Logger
	ticker   *time.Ticker
	stopChan chan struct{}

	mu        sync.Mutex
	isRunning bool
}

// New creates a dormant notifier.
func New(poll PollFunc, cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		poll:     poll,
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop. Idempotent: the signal may arrive more than
// once across the process lifetime but only the first call starts the loop.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isRunning {
		return
	}

	n.logger.Info("Starting notification polling", "interval", n.cfg.PollInterval)
	n.ticker = time.NewTicker(n.cfg.PollInterval)
	n.stopChan = make(chan struct{})
	n.isRunning = true

	go n.runLoop(n.ticker, n.stopChan)
}

// Stop stops the polling loop.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.isRunning {
		return
	}

	n.logger.Info("Stopping notification polling")
	close(n.stopChan)
	n.ticker.Stop()
	n.isRunning = false
}

// IsRunning reports whether the polling loop is active.
func (n *Notifier) IsRunning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isRunning
}

func (n *Notifier) runLoop(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.pollOnce()
		}
	}
}

func (n *Notifier) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.PollTimeout)
	defer cancel()

	if err := n.poll(ctx); err != nil {
		n.logger.Error("Notification poll failed", "error", err)
		return
	}

	n.logger.Debug("Notification poll completed")
}
