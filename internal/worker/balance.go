package worker

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/marketplace"
	"github.com/jinjernot/wg-sub000/internal/metrics"
)

// BalanceWorkerConfig holds configuration for the low-balance checker
type BalanceWorkerConfig struct {
	Interval     time.Duration
	Currency     string          // Fiat currency whose balance is checked
	RateToUSD    decimal.Decimal // Units of Currency per USD
	ThresholdUSD decimal.Decimal
}

type balanceWorker struct {
	config    *BalanceWorkerConfig
	accounts  []domain.Account
	client    marketplace.Client
	alerts    alert.Dispatcher
	clock     adapter.Clock
	metrics   *metrics.Metrics
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewBalanceWorker creates a worker that warns when a wallet balance drops below the threshold
func NewBalanceWorker(
	config *BalanceWorkerConfig,
	accounts []domain.Account,
	client marketplace.Client,
	alerts alert.Dispatcher,
	clock adapter.Clock,
	m *metrics.Metrics,
) Worker {
	return &balanceWorker{
		config:    config,
		accounts:  accounts,
		client:    client,
		alerts:    alerts,
		clock:     clock,
		metrics:   m,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the worker's name
func (w *balanceWorker) Name() string {
	return "balance-worker"
}

// Start checks every account's wallet once per interval
func (w *balanceWorker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("balance worker already running")
	}
	defer func() {
		w.running.Store(false)
		close(w.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting balance worker",
		zap.Duration("interval", w.config.Interval),
		zap.String("currency", w.config.Currency),
		zap.String("threshold_usd", w.config.ThresholdUSD.String()),
	)

	for {
		w.checkBalances(ctx)

		select {
		case <-w.clock.After(w.config.Interval):
		case <-ctx.Done():
			return nil
		case <-w.stopChan:
			return nil
		}
	}
}

// Stop gracefully stops the worker with timeout support
func (w *balanceWorker) Stop(ctx context.Context) error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	close(w.stopChan)

	select {
	case <-w.stoppedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *balanceWorker) checkBalances(ctx context.Context) {
	for _, account := range w.accounts {
		balances, err := w.client.GetWalletBalances(ctx, account)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("could not check balance for %s: %w", account.Name, err))
			continue
		}

		for _, b := range balances {
			f, _ := b.Balance.Float64()
			w.metrics.SetWalletBalance(account.Name, strings.ToUpper(b.Currency), f)

			if !strings.EqualFold(b.Currency, w.config.Currency) || w.config.RateToUSD.IsZero() {
				continue
			}
			usd := b.Balance.Div(w.config.RateToUSD)
			if !usd.LessThan(w.config.ThresholdUSD) {
				continue
			}

			logger.WarnCtx(ctx, "Low balance detected",
				zap.String("account", account.Name),
				zap.String("balance", b.Balance.StringFixed(2)),
				zap.String("currency", b.Currency),
				zap.String("usd", usd.StringFixed(2)),
			)

			a := alert.Alert{
				Kind:     alert.KindLowBalance,
				Level:    alert.LevelWarning,
				Title:    "Low balance",
				Owner:    account.Username,
				Platform: account.Platform,
				Message: fmt.Sprintf("%s has %s %s (%s USD), below the %s USD threshold",
					account.Name, b.Balance.StringFixed(2), strings.ToUpper(b.Currency), usd.StringFixed(2), w.config.ThresholdUSD.StringFixed(2)),
			}
			a = a.WithField("Balance", b.Balance.StringFixed(2)+" "+strings.ToUpper(b.Currency)).
				WithField("USD", usd.StringFixed(2))
			if err := w.alerts.Dispatch(ctx, a); err != nil {
				logger.WarnCtx(ctx, "Failed to dispatch low balance alert", zap.Error(err))
			}
		}
	}
}
