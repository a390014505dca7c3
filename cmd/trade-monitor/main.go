package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/api/middleware"
	"github.com/jinjernot/wg-sub000/internal/api/rest"
	"github.com/jinjernot/wg-sub000/internal/api/server"
	"github.com/jinjernot/wg-sub000/internal/config"
	"github.com/jinjernot/wg-sub000/internal/email"
	"github.com/jinjernot/wg-sub000/internal/engine"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/marketplace"
	"github.com/jinjernot/wg-sub000/internal/messages"
	"github.com/jinjernot/wg-sub000/internal/metrics"
	"github.com/jinjernot/wg-sub000/internal/ocr"
	"github.com/jinjernot/wg-sub000/internal/payment"
	"github.com/jinjernot/wg-sub000/internal/poller"
	"github.com/jinjernot/wg-sub000/internal/ratelimit"
	"github.com/jinjernot/wg-sub000/internal/retry"
	"github.com/jinjernot/wg-sub000/internal/store"
	"github.com/jinjernot/wg-sub000/internal/tokencache"
	"github.com/jinjernot/wg-sub000/internal/worker"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadTradeMonitorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "trade-monitor",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting trade monitor", zap.Int("accounts", len(cfg.Accounts)))

	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.HTTP.Timeout, adapter.HTTPRetryConfig{
		MaxRetries:      uint64(cfg.HTTP.MaxRetries),
		InitialInterval: cfg.HTTP.InitialInterval,
		MaxInterval:     cfg.HTTP.MaxInterval,
	})
	marketHTTP := ratelimit.NewHTTPClient(httpClient, ratelimit.Config{
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		MaxQueueTime:      cfg.HTTP.MaxQueueTime,
	})
	m := metrics.New()

	stateStore := openStore(cfg, fs, jsonAdapter, clock)

	// Marketplace client with a shared token cache
	tokens := tokencache.New(clock, cfg.Token.TTL)
	client := marketplace.NewClient(marketHTTP, jsonAdapter, clock, tokens, marketplace.Config{
		TokenTTL:     cfg.Token.TTL,
		SafetyMargin: cfg.Token.SafetyMargin,
		PageSize:     cfg.Worker.PageSize,
	})

	dispatcher, closeSinks := buildAlerts(cfg, httpClient, fs, jsonAdapter, clock)
	defer closeSinks()

	processor := engine.NewProcessor(engine.Dependencies{
		Marketplace: client,
		Alerts:      dispatcher,
		OCR:         buildOCR(cfg),
		Archive:     ocr.NewArchive(fs, jsonAdapter, clock, cfg.OCR.AttachmentDir, cfg.OCR.AuditDir),
		Email:       buildEmailValidator(cfg, fs),
		Payments:    payment.NewDirectory(fs, jsonAdapter, cfg.PaymentAccountsPath),
		Composer:    buildComposer(cfg),
		Clock:       clock,
	}, buildEngineConfig(cfg))

	// One worker per account, each with its own poller
	accounts := cfg.DomainAccounts()
	pollLocation := loadLocation(cfg.Polling.Timezone)
	var workers []worker.Worker
	accountWorkers := make([]worker.AccountWorker, 0, len(accounts))
	for _, account := range accounts {
		poll := poller.New(poller.Config{
			BaseInterval:     cfg.Polling.BaseInterval,
			QuietInterval:    cfg.Polling.QuietInterval,
			OffHoursInterval: cfg.Polling.OffHoursInterval,
			QuietThreshold:   cfg.Polling.QuietThreshold,
			OffHoursStart:    cfg.Polling.OffHoursStart,
			OffHoursEnd:      cfg.Polling.OffHoursEnd,
			Location:         pollLocation,
		}, clock)
		w := worker.NewAccountWorker(&worker.AccountWorkerConfig{
			WorkerPoolSize: cfg.Worker.WorkerPoolSize,
			QueueSize:      cfg.Worker.WorkerQueueSize,
			TradeTimeout:   cfg.Worker.TradeTimeout,
		}, account, client, processor, stateStore, poll, clock, m)
		accountWorkers = append(accountWorkers, w)
		workers = append(workers, w)
	}

	if cfg.Balance.Enabled {
		workers = append(workers, worker.NewBalanceWorker(&worker.BalanceWorkerConfig{
			Interval:     cfg.Balance.Interval,
			Currency:     cfg.Balance.Currency,
			RateToUSD:    decimal.NewFromFloat(cfg.Balance.RateToUSD),
			ThresholdUSD: decimal.NewFromFloat(cfg.Balance.ThresholdUSD),
		}, accounts, client, dispatcher, clock, m))
	}

	errChan := make(chan error, len(workers)+1)
	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w worker.Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", w.Name(), err)
			}
		}(w)
	}

	var apiServer *server.Server
	if cfg.Server.Enabled {
		handler := rest.NewHandler(accountWorkers, accounts, tokens, client, clock)
		apiServer = server.New(server.Config{
			Debug:        cfg.Debug,
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			Auth: middleware.AuthConfig{
				JWTPublicKey: cfg.Auth.JWTPublicKey,
				APIKeys:      cfg.Auth.APIKeys,
			},
		}, handler, m.Handler())
		go func() {
			if err := apiServer.Start(); err != nil {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	cancel()

	// In-flight trades finish and persist before exit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.TradeTimeout+5*time.Second)
	defer shutdownCancel()

	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err)
		}
	}
	for _, w := range workers {
		if err := w.Stop(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, fmt.Errorf("failed to stop %s: %w", w.Name(), err))
		}
	}
	wg.Wait()

	logger.InfoCtx(shutdownCtx, "Trade monitor stopped")
}

func openStore(cfg *config.TradeMonitorConfig, fs adapter.FileSystem, json adapter.JSON, clock adapter.Clock) store.TradeStateStore {
	if cfg.State.Backend != "postgres" {
		st, err := store.NewFileStore(cfg.State.Dir, fs, json, clock)
		if err != nil {
			logger.Fatal("Failed to open state directory", zap.Error(err), zap.String("dir", cfg.State.Dir))
		}
		logger.Info("Using file trade state store", zap.String("dir", cfg.State.Dir))
		return st
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate trade state schema", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	return store.NewPGStore(db)
}

// buildAlerts wires every configured sink behind one dispatcher.
// The returned func closes sink connections.
func buildAlerts(cfg *config.TradeMonitorConfig, httpClient adapter.HTTPClient, fs adapter.FileSystem, json adapter.JSON, clock adapter.Clock) (alert.Dispatcher, func()) {
	var sinks []alert.Sink
	closer := func() {}

	d := cfg.Alerts.Discord
	if d.TradesWebhook != "" || d.AlertsWebhook != "" || d.BotToken != "" {
		sinks = append(sinks, alert.NewDiscordSink(httpClient, fs, json, alert.DiscordConfig{
			APIURL:             d.APIURL,
			TradesWebhook:      d.TradesWebhook,
			ChatWebhook:        d.ChatWebhook,
			AttachmentsWebhook: d.AttachmentsWebhook,
			AlertsWebhook:      d.AlertsWebhook,
			BotToken:           d.BotToken,
			ThreadChannelID:    d.ThreadChannelID,
		}))
	}

	if tg := cfg.Alerts.Telegram; tg.BotToken != "" && tg.ChatID != 0 {
		bot, err := adapter.NewTelegramBot(tg.BotToken, cfg.Alerts.Timeout)
		if err != nil {
			logger.Error(fmt.Errorf("failed to create telegram bot: %w", err))
		} else {
			sinks = append(sinks, alert.NewTelegramSink(bot, tg.ChatID))
		}
	}

	if n := cfg.Alerts.NATS; n.URL != "" {
		conn, err := adapter.ConnectNats(n.URL, n.ConnectionName, n.MaxReconnects, n.ReconnectWait)
		if err != nil {
			logger.Error(fmt.Errorf("failed to connect to NATS: %w", err), zap.String("url", n.URL))
		} else {
			sinks = append(sinks, alert.NewNatsSink(conn, json, n.SubjectPrefix))
			closer = func() {
				_ = conn.FlushTimeout(2 * time.Second)
				conn.Close()
			}
		}
	}

	if len(sinks) == 0 {
		logger.Warn("No alert sinks configured, alerts will fail and be retried")
	}
	for _, s := range sinks {
		logger.Info("Alert sink enabled", zap.String("sink", s.Name()))
	}
	return alert.NewMulti(clock, cfg.Alerts.Timeout, sinks), closer
}

func buildOCR(cfg *config.TradeMonitorConfig) ocr.Engine {
	if cfg.OCR.TesseractPath == "" {
		return nil
	}
	return ocr.NewTesseractEngine(adapter.NewCommandRunner(), ocr.Config{
		TesseractPath: cfg.OCR.TesseractPath,
		Language:      cfg.OCR.Language,
		Timeout:       cfg.OCR.Timeout,
	})
}

func buildEmailValidator(cfg *config.TradeMonitorConfig, fs adapter.FileSystem) email.Validator {
	if len(cfg.Email.Mailboxes) == 0 {
		return nil
	}
	mailboxes := make(map[string]email.Mailbox, len(cfg.Email.Mailboxes))
	for id, mb := range cfg.Email.Mailboxes {
		mailboxes[id] = email.NewIMAPMailbox(email.MailboxConfig{
			Address:  mb.Address,
			Username: mb.Username,
			Password: mb.Password,
			Folder:   mb.Folder,
			Timeout:  cfg.Email.Timeout,
			Retry:    retry.Policy{MaxRetries: 2, InitialInterval: 2 * time.Second, MaxInterval: 8 * time.Second},
		})
	}
	rules := make([]email.Rule, 0, len(cfg.Email.Rules))
	for _, r := range cfg.Email.Rules {
		rules = append(rules, email.Rule{Methods: r.Methods, From: r.From, Subject: r.Subject})
	}
	return email.NewValidator(mailboxes, rules, fs, cfg.Email.LogDir)
}

func buildComposer(cfg *config.TradeMonitorConfig) *messages.Composer {
	mc := cfg.Messages
	return messages.NewComposer(messages.Templates{
		Welcome:        mc.Welcome,
		WelcomeNight:   mc.WelcomeNight,
		DefaultWelcome: mc.DefaultWelcome,
		PaymentDetails: mc.PaymentDetails,
		Texts: map[messages.Key]string{
			messages.KeyCompletion:      mc.Completion,
			messages.KeyPaymentReceived: mc.PaymentReceived,
			messages.KeyReminder:        mc.Reminder,
			messages.KeyAttachment:      mc.Attachment,
			messages.KeyAfk:             mc.Afk,
			messages.KeyExtendedAfk:     mc.ExtendedAfk,
			messages.KeyNoAttachment:    mc.NoAttachment,
			messages.KeyOnlineReply:     mc.OnlineReply,
			messages.KeyThirdPartyReply: mc.ThirdPartyReply,
			messages.KeyReleaseReply:    mc.ReleaseReply,
			messages.KeyOxxoRedirect:    mc.OxxoRedirect,
		},
	}, loadLocation(mc.Timezone), mc.NightStart, mc.NightEnd)
}

func buildEngineConfig(cfg *config.TradeMonitorConfig) engine.Config {
	ec := cfg.Engine
	owners := make([]string, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		owners = append(owners, a.Username)
	}
	return engine.Config{
		PaymentReminderDelay: ec.PaymentReminderDelay,
		EmailCheckWindow:     ec.EmailCheckWindow,
		AfkMessageThreshold:  ec.AfkMessageThreshold,
		AfkTimeThreshold:     ec.AfkTimeThreshold,
		ExtendedAfkDelay:     ec.ExtendedAfkDelay,
		NoAttachmentDelay:    ec.NoAttachmentDelay,
		OnlineKeywords:       ec.OnlineKeywords,
		ThirdPartyKeywords:   ec.ThirdPartyKeywords,
		ReleaseKeywords:      ec.ReleaseKeywords,
		OxxoKeywords:         ec.OxxoKeywords,
		Banks:                cfg.OCR.Banks,
		OwnerUsernames:       owners,
	}
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Unknown timezone, using UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}

