package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the trade monitor collectors:
//   - trade_monitor_polls_total{account,result}        polling cycles by result (ok|error|unauthorized)
//   - trade_monitor_trades_processed_total{account,result} trades processed by result (ok|error|panic)
//   - trade_monitor_side_effects_total{account,kind,name}  acknowledged messages, alerts and threads
//   - trade_monitor_poll_interval_seconds{account}     next sleep chosen by the adaptive poller
//   - trade_monitor_active_trades{account}             trades seen in the last cycle
//   - trade_monitor_cycle_duration_seconds{account}    wall time of one polling cycle
//   - trade_monitor_wallet_balance{account,currency}   last wallet balance read
type Metrics struct {
	registry *prometheus.Registry

	polls          *prometheus.CounterVec
	tradesProc     *prometheus.CounterVec
	sideEffects    *prometheus.CounterVec
	pollInterval   *prometheus.GaugeVec
	activeTrades   *prometheus.GaugeVec
	cycleDuration  *prometheus.HistogramVec
	walletBalances *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_monitor_polls_total",
				Help: "Polling cycles by result",
			},
			[]string{"account", "result"},
		),
		tradesProc: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_monitor_trades_processed_total",
				Help: "Trades run through the state machine by result",
			},
			[]string{"account", "result"},
		),
		sideEffects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_monitor_side_effects_total",
				Help: "Acknowledged side effects",
			},
			[]string{"account", "kind", "name"},
		),
		pollInterval: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trade_monitor_poll_interval_seconds",
				Help: "Sleep before the next polling cycle",
			},
			[]string{"account"},
		),
		activeTrades: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trade_monitor_active_trades",
				Help: "Trades returned by the last polling cycle",
			},
			[]string{"account"},
		),
		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trade_monitor_cycle_duration_seconds",
				Help:    "Duration of one polling cycle",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"account"},
		),
		walletBalances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trade_monitor_wallet_balance",
				Help: "Last wallet balance read per currency",
			},
			[]string{"account", "currency"},
		),
	}

	m.registry.MustRegister(
		m.polls,
		m.tradesProc,
		m.sideEffects,
		m.pollInterval,
		m.activeTrades,
		m.cycleDuration,
		m.walletBalances,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePoll records the outcome of one polling cycle
func (m *Metrics) ObservePoll(account, result string, trades int, took time.Duration) {
	m.polls.WithLabelValues(account, result).Inc()
	m.activeTrades.WithLabelValues(account).Set(float64(trades))
	m.cycleDuration.WithLabelValues(account).Observe(took.Seconds())
}

// ObserveTrade records the outcome of processing one trade
func (m *Metrics) ObserveTrade(account, result string) {
	m.tradesProc.WithLabelValues(account, result).Inc()
}

// ObserveSideEffect counts one acknowledged side effect
func (m *Metrics) ObserveSideEffect(account, kind, name string) {
	m.sideEffects.WithLabelValues(account, kind, name).Inc()
}

// SetPollInterval records the next sleep of an account worker
func (m *Metrics) SetPollInterval(account string, d time.Duration) {
	m.pollInterval.WithLabelValues(account).Set(d.Seconds())
}

// SetWalletBalance records a wallet balance
func (m *Metrics) SetWalletBalance(account, currency string, balance float64) {
	m.walletBalances.WithLabelValues(account, currency).Set(balance)
}
