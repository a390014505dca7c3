package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

const serviceName = "trade-monitor"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// StateConfig selects the trade state backend
type StateConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "postgres"
	Dir     string `mapstructure:"dir"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AccountConfig holds one marketplace account
type AccountConfig struct {
	Name         string `mapstructure:"name"`
	Username     string `mapstructure:"username"`
	Platform     string `mapstructure:"platform"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	APIURL       string `mapstructure:"api_url"`
	TokenURL     string `mapstructure:"token_url"`
}

// WorkerConfig holds account worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int           `mapstructure:"pool_size"`
	WorkerQueueSize int           `mapstructure:"queue_size"`
	TradeTimeout    time.Duration `mapstructure:"trade_timeout"`
	PageSize        int           `mapstructure:"page_size"`
}

// PollingConfig holds adaptive polling configuration
type PollingConfig struct {
	BaseInterval     time.Duration `mapstructure:"base_interval"`
	QuietInterval    time.Duration `mapstructure:"quiet_interval"`
	OffHoursInterval time.Duration `mapstructure:"off_hours_interval"`
	QuietThreshold   int           `mapstructure:"quiet_threshold"`
	OffHoursStart    int           `mapstructure:"off_hours_start"`
	OffHoursEnd      int           `mapstructure:"off_hours_end"`
	Timezone         string        `mapstructure:"timezone"`
}

// TokenConfig holds bearer token caching configuration
type TokenConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	SafetyMargin time.Duration `mapstructure:"safety_margin"`
}

// HTTPConfig holds outbound HTTP configuration
type HTTPConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	// Per-host request rate shared by every account on a marketplace
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// EngineConfig holds the trade state machine timing and keyword configuration
type EngineConfig struct {
	PaymentReminderDelay time.Duration `mapstructure:"payment_reminder_delay"`
	EmailCheckWindow     time.Duration `mapstructure:"email_check_window"`
	AfkMessageThreshold  int           `mapstructure:"afk_message_threshold"`
	AfkTimeThreshold     time.Duration `mapstructure:"afk_time_threshold"`
	ExtendedAfkDelay     time.Duration `mapstructure:"extended_afk_delay"`
	NoAttachmentDelay    time.Duration `mapstructure:"no_attachment_delay"`
	OnlineKeywords       []string      `mapstructure:"online_keywords"`
	ThirdPartyKeywords   []string      `mapstructure:"third_party_keywords"`
	ReleaseKeywords      []string      `mapstructure:"release_keywords"`
	OxxoKeywords         []string      `mapstructure:"oxxo_keywords"`
}

// MessagesConfig holds chat message templates.
// Welcome maps owner -> payment method slug (or "default") -> text.
type MessagesConfig struct {
	Timezone        string                       `mapstructure:"timezone"`
	NightStart      int                          `mapstructure:"night_start"`
	NightEnd        int                          `mapstructure:"night_end"`
	Welcome         map[string]map[string]string `mapstructure:"welcome"`
	WelcomeNight    map[string]map[string]string `mapstructure:"welcome_night"`
	DefaultWelcome  string                       `mapstructure:"default_welcome"`
	PaymentDetails  string                       `mapstructure:"payment_details"`
	Completion      string                       `mapstructure:"completion"`
	PaymentReceived string                       `mapstructure:"payment_received"`
	Reminder        string                       `mapstructure:"reminder"`
	Attachment      string                       `mapstructure:"attachment"`
	Afk             string                       `mapstructure:"afk"`
	ExtendedAfk     string                       `mapstructure:"extended_afk"`
	NoAttachment    string                       `mapstructure:"no_attachment"`
	OnlineReply     string                       `mapstructure:"online_reply"`
	ThirdPartyReply string                       `mapstructure:"third_party_reply"`
	ReleaseReply    string                       `mapstructure:"release_reply"`
	OxxoRedirect    string                       `mapstructure:"oxxo_redirect"`
}

// MailboxConfig holds IMAP credentials for one credential identifier
type MailboxConfig struct {
	Address  string `mapstructure:"address"` // host:port, TLS
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Folder   string `mapstructure:"folder"`
}

// EmailRuleConfig describes the bank notification expected for a set of payment methods
type EmailRuleConfig struct {
	Methods []string `mapstructure:"methods"`
	From    string   `mapstructure:"from"`
	Subject string   `mapstructure:"subject"`
}

// EmailConfig holds payment email validation configuration
type EmailConfig struct {
	Timeout   time.Duration            `mapstructure:"timeout"`
	Mailboxes map[string]MailboxConfig `mapstructure:"mailboxes"`
	Rules     []EmailRuleConfig        `mapstructure:"rules"`
	LogDir    string                   `mapstructure:"log_dir"`
}

// OCRConfig holds receipt OCR configuration
type OCRConfig struct {
	TesseractPath string              `mapstructure:"tesseract_path"`
	Language      string              `mapstructure:"language"`
	Timeout       time.Duration       `mapstructure:"timeout"`
	AttachmentDir string              `mapstructure:"attachment_dir"`
	AuditDir      string              `mapstructure:"audit_dir"`
	Banks         map[string][]string `mapstructure:"banks"`
}

// DiscordConfig holds Discord webhook and bot configuration
type DiscordConfig struct {
	APIURL             string `mapstructure:"api_url"`
	TradesWebhook      string `mapstructure:"trades_webhook"`
	ChatWebhook        string `mapstructure:"chat_webhook"`
	AttachmentsWebhook string `mapstructure:"attachments_webhook"`
	AlertsWebhook      string `mapstructure:"alerts_webhook"`
	BotToken           string `mapstructure:"bot_token"`
	ThreadChannelID    string `mapstructure:"thread_channel_id"`
}

// TelegramConfig holds Telegram alert configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// NATSConfig holds NATS alert sink configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
}

// AlertsConfig holds alert sink configuration
type AlertsConfig struct {
	Timeout  time.Duration  `mapstructure:"timeout"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

// BalanceConfig holds low-balance warning configuration
type BalanceConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	Currency     string        `mapstructure:"currency"`
	RateToUSD    float64       `mapstructure:"rate_to_usd"`
	ThresholdUSD float64       `mapstructure:"threshold_usd"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// TradeMonitorConfig holds configuration for the trade monitor program
type TradeMonitorConfig struct {
	BaseConfig          `mapstructure:",squash"`
	State               StateConfig     `mapstructure:"state"`
	Database            DatabaseConfig  `mapstructure:"database"`
	Accounts            []AccountConfig `mapstructure:"accounts"`
	Worker              WorkerConfig    `mapstructure:"worker"`
	Polling             PollingConfig   `mapstructure:"polling"`
	Token               TokenConfig     `mapstructure:"token"`
	HTTP                HTTPConfig      `mapstructure:"http"`
	Engine              EngineConfig    `mapstructure:"engine"`
	Messages            MessagesConfig  `mapstructure:"messages"`
	PaymentAccountsPath string          `mapstructure:"payment_accounts_path"`
	Email               EmailConfig     `mapstructure:"email"`
	OCR                 OCRConfig       `mapstructure:"ocr"`
	Alerts              AlertsConfig    `mapstructure:"alerts"`
	Balance             BalanceConfig   `mapstructure:"balance"`
	Server              ServerConfig    `mapstructure:"server"`
	Auth                AuthConfig      `mapstructure:"auth"`
}

// LoadTradeMonitorConfig loads configuration for the trade monitor
func LoadTradeMonitorConfig(configFile string, envPath string) (*TradeMonitorConfig, error) {
	v := configureViper(serviceName, configFile, envPath)

	// Set defaults
	v.SetDefault("state.backend", "file")
	v.SetDefault("state.dir", "data/trades")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("worker.pool_size", 1)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.trade_timeout", "2m")
	v.SetDefault("worker.page_size", domain.DEFAULT_TRADE_PAGE_SIZE)
	v.SetDefault("polling.base_interval", "60s")
	v.SetDefault("polling.quiet_interval", "120s")
	v.SetDefault("polling.off_hours_interval", "300s")
	v.SetDefault("polling.quiet_threshold", 5)
	v.SetDefault("polling.off_hours_start", 2)
	v.SetDefault("polling.off_hours_end", 7)
	v.SetDefault("polling.timezone", "America/Mexico_City")
	v.SetDefault("token.ttl", domain.DEFAULT_TOKEN_TTL.String())
	v.SetDefault("token.safety_margin", "5m")
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.initial_interval", "1s")
	v.SetDefault("http.max_interval", "8s")
	v.SetDefault("http.requests_per_second", 5)
	v.SetDefault("http.burst", 5)
	v.SetDefault("http.max_queue_time", "30s")
	v.SetDefault("engine.payment_reminder_delay", "15m")
	v.SetDefault("engine.email_check_window", "3h")
	v.SetDefault("engine.afk_message_threshold", 3)
	v.SetDefault("engine.afk_time_threshold", "5m")
	v.SetDefault("engine.extended_afk_delay", "15m")
	v.SetDefault("engine.no_attachment_delay", "120s")
	v.SetDefault("engine.online_keywords", []string{"online", "en linea", "en línea"})
	v.SetDefault("engine.third_party_keywords", []string{"tercero", "third party", "otra persona"})
	v.SetDefault("engine.release_keywords", []string{"libera", "release", "liberar"})
	v.SetDefault("engine.oxxo_keywords", []string{"oxxo"})
	v.SetDefault("messages.timezone", "America/Mexico_City")
	v.SetDefault("messages.night_start", 0)
	v.SetDefault("messages.night_end", 8)
	v.SetDefault("messages.default_welcome", "Hi {buyer}, thanks for opening trade {trade_hash}. Please follow the payment instructions.")
	v.SetDefault("messages.completion", "Trade completed. Thank you, {buyer}! Please leave feedback.")
	v.SetDefault("messages.payment_received", "We received your payment notice. We are verifying it now.")
	v.SetDefault("messages.reminder", "Hi {buyer}, are you still there? Please complete the payment of {amount} {currency}.")
	v.SetDefault("messages.attachment", "Thanks! We are checking your receipt.")
	v.SetDefault("messages.payment_details", "Payment details:\nBank: {bank}\nHolder: {holder}\nAccount: {account}\nAmount: {amount} {currency}")
	v.SetDefault("payment_accounts_path", "data/payment_accounts.json")
	v.SetDefault("email.timeout", "30s")
	v.SetDefault("email.log_dir", "data/logs/email")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "spa+eng")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("ocr.attachment_dir", "data/attachments")
	v.SetDefault("ocr.audit_dir", "data/ocr")
	v.SetDefault("alerts.timeout", "10s")
	v.SetDefault("alerts.discord.api_url", "https://discord.com/api/v10")
	v.SetDefault("alerts.nats.subject_prefix", "trades.alerts")
	v.SetDefault("alerts.nats.connection_name", serviceName)
	v.SetDefault("alerts.nats.max_reconnects", 10)
	v.SetDefault("alerts.nats.reconnect_wait", "2s")
	v.SetDefault("balance.interval", "30m")
	v.SetDefault("balance.currency", "MXN")
	v.SetDefault("balance.rate_to_usd", 18.48)
	v.SetDefault("balance.threshold_usd", 1000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg TradeMonitorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields
func (c *TradeMonitorConfig) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("at least one account is required")
	}
	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.Name == "" || a.Username == "" {
			return fmt.Errorf("accounts[%d]: name and username are required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("accounts[%d]: duplicate account name %q", i, a.Name)
		}
		seen[a.Name] = true
		if !domain.IsValidPlatform(domain.Platform(a.Platform)) {
			return fmt.Errorf("accounts[%d]: unsupported platform %q", i, a.Platform)
		}
		if a.ClientID == "" || a.ClientSecret == "" {
			return fmt.Errorf("accounts[%d]: client_id and client_secret are required", i)
		}
		if a.APIURL == "" || a.TokenURL == "" {
			return fmt.Errorf("accounts[%d]: api_url and token_url are required", i)
		}
	}

	switch c.State.Backend {
	case "file":
		if c.State.Dir == "" {
			return errors.New("state.dir is required for the file backend")
		}
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("database.host is required for the postgres backend")
		}
		if c.Database.DBName == "" {
			return errors.New("database.dbname is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unsupported state.backend %q", c.State.Backend)
	}

	if c.Worker.WorkerPoolSize < 1 {
		return errors.New("worker.pool_size must be at least 1")
	}
	return nil
}

// DomainAccounts converts configured accounts to domain accounts
func (c *TradeMonitorConfig) DomainAccounts() []domain.Account {
	accounts := make([]domain.Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		accounts = append(accounts, domain.Account{
			Name:         a.Name,
			Username:     a.Username,
			Platform:     domain.Platform(a.Platform),
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			APIURL:       strings.TrimRight(a.APIURL, "/"),
			TokenURL:     a.TokenURL,
		})
	}
	return accounts
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("TRADE_MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds scalar keys so env-only deployments unmarshal
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// State
		"state.backend",
		"state.dir",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		"worker.trade_timeout",
		"worker.page_size",
		// Polling
		"polling.base_interval",
		"polling.quiet_interval",
		"polling.off_hours_interval",
		"polling.quiet_threshold",
		"polling.off_hours_start",
		"polling.off_hours_end",
		"polling.timezone",
		// Token and HTTP
		"token.ttl",
		"token.safety_margin",
		"http.timeout",
		"http.max_retries",
		"http.initial_interval",
		"http.max_interval",
		"http.requests_per_second",
		"http.burst",
		"http.max_queue_time",
		// Engine
		"engine.payment_reminder_delay",
		"engine.email_check_window",
		"engine.afk_message_threshold",
		"engine.afk_time_threshold",
		"engine.extended_afk_delay",
		"engine.no_attachment_delay",
		// Paths
		"payment_accounts_path",
		"email.timeout",
		"email.log_dir",
		"ocr.tesseract_path",
		"ocr.language",
		"ocr.timeout",
		"ocr.attachment_dir",
		"ocr.audit_dir",
		// Alerts
		"alerts.timeout",
		"alerts.discord.api_url",
		"alerts.discord.trades_webhook",
		"alerts.discord.chat_webhook",
		"alerts.discord.attachments_webhook",
		"alerts.discord.alerts_webhook",
		"alerts.discord.bot_token",
		"alerts.discord.thread_channel_id",
		"alerts.telegram.bot_token",
		"alerts.telegram.chat_id",
		"alerts.nats.url",
		"alerts.nats.subject_prefix",
		"alerts.nats.connection_name",
		"alerts.nats.max_reconnects",
		"alerts.nats.reconnect_wait",
		// Balance
		"balance.enabled",
		"balance.interval",
		"balance.currency",
		"balance.rate_to_usd",
		"balance.threshold_usd",
		// Server
		"server.enabled",
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
