package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/engine"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/marketplace"
	"github.com/jinjernot/wg-sub000/internal/metrics"
	"github.com/jinjernot/wg-sub000/internal/poller"
	"github.com/jinjernot/wg-sub000/internal/store"
)

// AccountWorkerConfig holds configuration for an account worker
type AccountWorkerConfig struct {
	WorkerPoolSize int           // Trades processed concurrently, 1 keeps processing sequential
	QueueSize      int           // Pending trades per cycle, 0 is unbounded
	TradeTimeout   time.Duration // Upper bound for one trade's processing
}

// AccountStatus is a snapshot of an account worker for the ops server
type AccountStatus struct {
	Account      string          `json:"account"`
	Username     string          `json:"username"`
	Platform     domain.Platform `json:"platform"`
	Running      bool            `json:"running"`
	Cycles       uint64          `json:"cycles"`
	LastPoll     *time.Time      `json:"last_poll,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	TradesSeen   int             `json:"trades_seen"`
	NextInterval time.Duration   `json:"next_interval"`
	Poller       poller.Stats    `json:"poller"`
}

// AccountWorker polls one marketplace account
//
//go:generate mockgen -source=account.go -destination=../mocks/account_worker.go -package=mocks -mock_names=AccountWorker=MockAccountWorker
type AccountWorker interface {
	Worker

	// RunCycle runs one polling cycle without sleeping
	RunCycle(ctx context.Context) error

	// Status returns a snapshot of the worker
	Status() AccountStatus
}

type accountWorker struct {
	config    *AccountWorkerConfig
	account   domain.Account
	client    marketplace.Client
	processor engine.Processor
	store     store.TradeStateStore
	poller    poller.AdaptivePoller
	clock     adapter.Clock
	metrics   *metrics.Metrics

	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}

	mu     sync.RWMutex
	status AccountStatus
}

// NewAccountWorker creates a worker for one account
func NewAccountWorker(
	config *AccountWorkerConfig,
	account domain.Account,
	client marketplace.Client,
	processor engine.Processor,
	st store.TradeStateStore,
	poll poller.AdaptivePoller,
	clock adapter.Clock,
	m *metrics.Metrics,
) AccountWorker {
	if config.WorkerPoolSize < 1 {
		config.WorkerPoolSize = 1
	}
	return &accountWorker{
		config:    config,
		account:   account,
		client:    client,
		processor: processor,
		store:     st,
		poller:    poll,
		clock:     clock,
		metrics:   m,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
		status: AccountStatus{
			Account:  account.Name,
			Username: account.Username,
			Platform: account.Platform,
		},
	}
}

// Name returns the worker's name
func (w *accountWorker) Name() string {
	return "account-worker:" + w.account.Name
}

// Start polls the account until the context is canceled or Stop is called
func (w *accountWorker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("worker %s already running", w.account.Name)
	}
	defer func() {
		w.running.Store(false)
		w.setRunning(false)
		close(w.stoppedCh)
	}()

	ctx = logger.WithFields(ctx, zap.String("account", w.account.Name), zap.String("platform", string(w.account.Platform)))
	logger.InfoCtx(ctx, "Starting account worker",
		zap.String("username", w.account.Username),
		zap.Int("worker_pool_size", w.config.WorkerPoolSize),
		zap.Duration("trade_timeout", w.config.TradeTimeout),
	)
	w.setRunning(true)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Account worker stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-w.stopChan:
			logger.InfoCtx(ctx, "Account worker stop requested")
			return nil
		default:
		}

		if err := w.RunCycle(ctx); err != nil {
			switch {
			case errors.Is(err, context.Canceled):
			case errors.Is(err, domain.ErrUnauthorized):
				logger.WarnCtx(ctx, "Authentication failed after token refresh, skipping cycle", zap.Error(err))
			default:
				logger.ErrorCtx(ctx, err)
			}
		}

		interval := w.poller.NextInterval()
		w.metrics.SetPollInterval(w.account.Name, interval)
		w.mu.Lock()
		w.status.NextInterval = interval
		w.mu.Unlock()

		logger.DebugCtx(ctx, "Sleeping until next poll", zap.Duration("interval", interval))
		if !w.sleep(ctx, interval) {
			return nil
		}
	}
}

// Stop gracefully stops the worker with timeout support
func (w *accountWorker) Stop(ctx context.Context) error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping account worker", zap.String("account", w.account.Name))
	close(w.stopChan)

	select {
	case <-w.stoppedCh:
		logger.InfoCtx(ctx, "Account worker stopped gracefully", zap.String("account", w.account.Name))
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Account worker stop interrupted by context timeout", zap.String("account", w.account.Name))
		return ctx.Err()
	}
}

// Status returns a snapshot of the worker
func (w *accountWorker) Status() AccountStatus {
	w.mu.RLock()
	status := w.status
	w.mu.RUnlock()
	status.Poller = w.poller.Stats()
	return status
}

// RunCycle fetches the account's trades and runs each through the processor
func (w *accountWorker) RunCycle(ctx context.Context) error {
	start := w.clock.Now()

	trades, active, err := w.fetchTrades(ctx)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrUnauthorized) {
			result = "unauthorized"
		}
		w.metrics.ObservePoll(w.account.Name, result, 0, w.clock.Since(start))
		w.finishCycle(start, 0, err)
		return fmt.Errorf("failed to fetch trades: %w", err)
	}

	states, err := w.store.Load(ctx, w.account.Username, w.account.Platform)
	if err != nil {
		w.metrics.ObservePoll(w.account.Name, "error", len(trades), w.clock.Since(start))
		w.finishCycle(start, len(trades), err)
		return fmt.Errorf("failed to load trade states: %w", err)
	}

	pool := pond.NewPool(
		w.config.WorkerPoolSize,
		pond.WithQueueSize(w.config.QueueSize),
		pond.WithContext(ctx),
	)
	for _, snapshot := range trades {
		var prior *domain.TradeState
		if state, ok := states[snapshot.TradeHash]; ok {
			prior = &state
		}
		pool.Submit(func() {
			w.processTrade(ctx, snapshot, prior)
		})
	}
	pool.StopAndWait()

	w.poller.RecordActivity(active > 0)

	duration := w.clock.Since(start)
	w.metrics.ObservePoll(w.account.Name, "ok", len(trades), duration)
	w.finishCycle(start, len(trades), nil)

	logger.InfoCtx(ctx, "Polling cycle completed",
		zap.Int("trades", len(trades)),
		zap.Int("active", active),
		zap.Duration("duration", duration),
	)
	return nil
}

// fetchTrades returns the open trades followed by recently completed ones not
// already listed. active is the number of open trades.
func (w *accountWorker) fetchTrades(ctx context.Context) ([]domain.TradeSnapshot, int, error) {
	trades, err := w.client.ListTrades(ctx, w.account, 1)
	if err != nil {
		return nil, 0, err
	}
	active := len(trades)

	completed, err := w.client.ListRecentlyCompleted(ctx, w.account)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, 0, err
		}
		logger.WarnCtx(ctx, "Failed to fetch recently completed trades", zap.Error(err))
		return trades, active, nil
	}

	seen := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		seen[t.TradeHash] = struct{}{}
	}
	for _, t := range completed {
		if _, ok := seen[t.TradeHash]; ok {
			continue
		}
		seen[t.TradeHash] = struct{}{}
		trades = append(trades, t)
	}
	return trades, active, nil
}

// processTrade runs one trade through the processor and persists the result.
// A failing or panicking trade is logged and retried on the next cycle.
func (w *accountWorker) processTrade(ctx context.Context, snapshot domain.TradeSnapshot, prior *domain.TradeState) {
	ctx = logger.WithFields(ctx, logger.TradeFields(snapshot.TradeHash, snapshot.OwnerUsername, string(snapshot.Platform))...)

	defer func() {
		if r := recover(); r != nil {
			w.metrics.ObserveTrade(w.account.Name, "panic")
			logger.ErrorCtx(ctx, fmt.Errorf("panic while processing trade: %v", r), zap.Stack("stack"))
		}
	}()

	tradeCtx := ctx
	if w.config.TradeTimeout > 0 {
		var cancel context.CancelFunc
		tradeCtx, cancel = context.WithTimeout(ctx, w.config.TradeTimeout)
		defer cancel()
	}

	result, err := w.processor.Process(tradeCtx, w.account, snapshot, prior)
	if err != nil {
		w.metrics.ObserveTrade(w.account.Name, "error")
		logger.ErrorCtx(ctx, fmt.Errorf("failed to process trade: %w", err))
		return
	}

	// acknowledged effects are persisted even when the trade ran out of time
	if err := w.store.Put(context.WithoutCancel(ctx), w.account.Username, w.account.Platform, result.State); err != nil {
		w.metrics.ObserveTrade(w.account.Name, "error")
		logger.ErrorCtx(ctx, fmt.Errorf("failed to save trade state: %w", err))
		return
	}

	for _, e := range result.Effects {
		w.metrics.ObserveSideEffect(w.account.Name, string(e.Kind), e.Name)
	}
	w.metrics.ObserveTrade(w.account.Name, "ok")
}

func (w *accountWorker) finishCycle(start time.Time, trades int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Cycles++
	w.status.LastPoll = &start
	w.status.TradesSeen = trades
	w.status.LastError = ""
	if err != nil {
		w.status.LastError = err.Error()
	}
}

func (w *accountWorker) setRunning(running bool) {
	w.mu.Lock()
	w.status.Running = running
	w.mu.Unlock()
}

// sleep waits for the duration unless the context is canceled or Stop is called.
// Returns true if the sleep completed.
func (w *accountWorker) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-w.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}
