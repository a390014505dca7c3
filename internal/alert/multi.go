package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

type multi struct {
	sinks   []Sink
	clock   adapter.Clock
	timeout time.Duration
}

// NewMulti creates a Dispatcher fanning out to sinks in order.
// Each sink call is bounded by timeout.
func NewMulti(clock adapter.Clock, timeout time.Duration, sinks []Sink) Dispatcher {
	return &multi{
		sinks:   sinks,
		clock:   clock,
		timeout: timeout,
	}
}

func (m *multi) Dispatch(ctx context.Context, a Alert) error {
	a = m.stamp(a)
	if len(m.sinks) == 0 {
		logger.DebugCtx(ctx, "No alert sinks configured", zap.String("kind", string(a.Kind)))
		return nil
	}

	var errs []error
	for _, sink := range m.sinks {
		if err := m.send(ctx, sink, a); err != nil {
			logger.WarnCtx(ctx, "Alert sink failed",
				zap.String("sink", sink.Name()),
				zap.String("kind", string(a.Kind)),
				zap.String("alert_id", a.ID),
				zap.String("trade_hash", a.TradeHash),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}

	if len(errs) == len(m.sinks) {
		return fmt.Errorf("%w: %w", domain.ErrNoSinks, errors.Join(errs...))
	}
	return nil
}

func (m *multi) OpenThread(ctx context.Context, a Alert) (string, error) {
	a = m.stamp(a)

	var errs []error
	for _, sink := range m.sinks {
		opener, ok := sink.(ThreadOpener)
		if !ok {
			continue
		}

		sctx, cancel := m.withTimeout(ctx)
		id, err := opener.OpenThread(sctx, a)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("failed to open thread: %w", errors.Join(errs...))
	}
	return "", nil
}

func (m *multi) send(ctx context.Context, sink Sink, a Alert) error {
	sctx, cancel := m.withTimeout(ctx)
	defer cancel()
	return sink.Send(sctx, a)
}

func (m *multi) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// stamp assigns a time-sortable id and timestamp when missing
func (m *multi) stamp(a Alert) Alert {
	now := m.clock.Now()
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.ID == "" {
		a.ID = ulid.MustNewDefault(now).String()
	}
	return a
}
