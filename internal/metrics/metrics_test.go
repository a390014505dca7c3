package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/metrics"
)

func TestMetrics_ObservePoll(t *testing.T) {
	m := metrics.New()

	m.ObservePoll("seller1_noones", "ok", 3, 2*time.Second)
	m.ObservePoll("seller1_noones", "ok", 1, time.Second)
	m.ObservePoll("seller1_noones", "error", 0, time.Second)

	expected := `
# HELP trade_monitor_polls_total Polling cycles by result
# TYPE trade_monitor_polls_total counter
trade_monitor_polls_total{account="seller1_noones",result="error"} 1
trade_monitor_polls_total{account="seller1_noones",result="ok"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "trade_monitor_polls_total")
	require.NoError(t, err)

	active := `
# HELP trade_monitor_active_trades Trades returned by the last polling cycle
# TYPE trade_monitor_active_trades gauge
trade_monitor_active_trades{account="seller1_noones"} 0
`
	err = testutil.GatherAndCompare(m.Registry(), strings.NewReader(active), "trade_monitor_active_trades")
	require.NoError(t, err)
}

func TestMetrics_SideEffectsAndGauges(t *testing.T) {
	m := metrics.New()

	m.ObserveSideEffect("acct", "message", "welcome")
	m.ObserveSideEffect("acct", "message", "welcome")
	m.ObserveTrade("acct", "panic")
	m.SetPollInterval("acct", 2*time.Minute)
	m.SetWalletBalance("acct", "MXN", 12000.5)

	count, err := testutil.GatherAndCount(m.Registry(), "trade_monitor_side_effects_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP trade_monitor_poll_interval_seconds Sleep before the next polling cycle
# TYPE trade_monitor_poll_interval_seconds gauge
trade_monitor_poll_interval_seconds{account="acct"} 120
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "trade_monitor_poll_interval_seconds"))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.ObserveTrade("acct", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trade_monitor_trades_processed_total{account="acct",result="ok"} 1`)
}
