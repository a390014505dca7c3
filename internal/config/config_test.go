package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

const validAccounts = `
accounts:
  - name: davidvs_noones
    username: davidvs
    platform: noones
    client_id: id-1
    client_secret: secret-1
    api_url: "https://api.noones.com/noones/v1/"
    token_url: "https://auth.noones.com/oauth2/token"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadTradeMonitorConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *TradeMonitorConfig)
	}{
		{
			name: "defaults",
			configFile: validAccounts,
			validate: func(t *testing.T, cfg *TradeMonitorConfig) {
				assert.Equal(t, "file", cfg.State.Backend)
				assert.Equal(t, "data/trades", cfg.State.Dir)
				assert.Equal(t, 1, cfg.Worker.WorkerPoolSize)
				assert.Equal(t, 2*time.Minute, cfg.Worker.TradeTimeout)
				assert.Equal(t, domain.DEFAULT_TRADE_PAGE_SIZE, cfg.Worker.PageSize)
				assert.Equal(t, 60*time.Second, cfg.Polling.BaseInterval)
				assert.Equal(t, 120*time.Second, cfg.Polling.QuietInterval)
				assert.Equal(t, 300*time.Second, cfg.Polling.OffHoursInterval)
				assert.Equal(t, 5, cfg.Polling.QuietThreshold)
				assert.Equal(t, 2, cfg.Polling.OffHoursStart)
				assert.Equal(t, 7, cfg.Polling.OffHoursEnd)
				assert.Equal(t, 55*time.Minute, cfg.Token.TTL)
				assert.Equal(t, 3, cfg.HTTP.MaxRetries)
				assert.Equal(t, 3*time.Hour, cfg.Engine.EmailCheckWindow)
				assert.Equal(t, 3, cfg.Engine.AfkMessageThreshold)
				assert.Equal(t, 120*time.Second, cfg.Engine.NoAttachmentDelay)
				assert.Contains(t, cfg.Engine.OxxoKeywords, "oxxo")
				assert.Equal(t, "MXN", cfg.Balance.Currency)
				assert.InDelta(t, 18.48, cfg.Balance.RateToUSD, 0.0001)
				assert.Equal(t, 8080, cfg.Server.Port)
			},
		},
		{
			name: "full config",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
state:
  backend: postgres
database:
  host: localhost
  dbname: trades
worker:
  pool_size: 4
  trade_timeout: 45s
engine:
  payment_reminder_delay: 10m
  email_check_window: 1h
messages:
  welcome:
    davidvs:
      oxxo: "Hola {buyer}, paga en OXXO"
      default: "Hola {buyer}"
email:
  mailboxes:
    scotia-main:
      address: "imap.gmail.com:993"
      username: ops@example.com
      password: pw
  rules:
    - methods: [oxxo]
      from: noreply@spinbyoxxo.com.mx
      subject: "Recibiste un deposito"
ocr:
  banks:
    scotiabank: [scotiabank, scotia]
alerts:
  telegram:
    bot_token: tg
    chat_id: -100123
` + validAccounts,
			validate: func(t *testing.T, cfg *TradeMonitorConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "postgres", cfg.State.Backend)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "host=localhost port=5432 user= password= dbname=trades sslmode=disable", cfg.Database.DSN())
				assert.Equal(t, 4, cfg.Worker.WorkerPoolSize)
				assert.Equal(t, 45*time.Second, cfg.Worker.TradeTimeout)
				assert.Equal(t, 10*time.Minute, cfg.Engine.PaymentReminderDelay)
				assert.Equal(t, time.Hour, cfg.Engine.EmailCheckWindow)
				assert.Equal(t, "Hola {buyer}, paga en OXXO", cfg.Messages.Welcome["davidvs"]["oxxo"])
				require.Contains(t, cfg.Email.Mailboxes, "scotia-main")
				assert.Equal(t, "imap.gmail.com:993", cfg.Email.Mailboxes["scotia-main"].Address)
				require.Len(t, cfg.Email.Rules, 1)
				assert.Equal(t, []string{"oxxo"}, cfg.Email.Rules[0].Methods)
				assert.Equal(t, []string{"scotiabank", "scotia"}, cfg.OCR.Banks["scotiabank"])
				assert.Equal(t, int64(-100123), cfg.Alerts.Telegram.ChatID)

				accounts := cfg.DomainAccounts()
				require.Len(t, accounts, 1)
				assert.Equal(t, domain.PlatformNoones, accounts[0].Platform)
				assert.Equal(t, "https://api.noones.com/noones/v1", accounts[0].APIURL)
			},
		},
		{
			name:        "no accounts",
			configFile:  "debug: true\n",
			expectError: true,
		},
		{
			name: "unsupported platform",
			configFile: `
accounts:
  - name: a
    username: a
    platform: binance
    client_id: x
    client_secret: y
    api_url: u
    token_url: t
`,
			expectError: true,
		},
		{
			name: "postgres backend without host",
			configFile: `
state:
  backend: postgres
` + validAccounts,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				accounts:
				  - name: [
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadTradeMonitorConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadTradeMonitorConfig_EnvOverride(t *testing.T) {
	t.Setenv("TRADE_MONITOR_WORKER_POOL_SIZE", "3")
	t.Setenv("TRADE_MONITOR_POLLING_BASE_INTERVAL", "30s")

	cfg, err := LoadTradeMonitorConfig(writeConfig(t, validAccounts), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Worker.WorkerPoolSize)
	assert.Equal(t, 30*time.Second, cfg.Polling.BaseInterval)
}

func TestLoadTradeMonitorConfig_DotEnv(t *testing.T) {
	envDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte("TRADE_MONITOR_STATE_DIR=/tmp/from-env\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("TRADE_MONITOR_STATE_DIR") })

	cfg, err := LoadTradeMonitorConfig(writeConfig(t, validAccounts), envDir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env", cfg.State.Dir)
}
