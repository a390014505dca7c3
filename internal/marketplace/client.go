package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/tokencache"
)

const (
	pathTradeList      = "/trade/list"
	pathTradeCompleted = "/trade/completed"
	pathChatGet        = "/trade-chat/get"
	pathChatPost       = "/trade-chat/post"
	pathChatImage      = "/trade-chat/image"
	pathTradeRelease   = "/trade/release"
	pathNoonesWallet   = "/user/wallet-balances"
	pathPaxfulWallet   = "/wallet/balance"

	completedPageLimit = 20
)

// Client defines the marketplace operations used by the trade monitor
//
//go:generate mockgen -source=client.go -destination=../mocks/marketplace_client.go -package=mocks -mock_names=Client=MockMarketplaceClient
type Client interface {
	// ListTrades returns one page of the account's open trades
	ListTrades(ctx context.Context, account domain.Account, page int) ([]domain.TradeSnapshot, error)

	// ListRecentlyCompleted returns trades released within the last few minutes.
	// Completed trades drop off the open trade list immediately.
	ListRecentlyCompleted(ctx context.Context, account domain.Account) ([]domain.TradeSnapshot, error)

	// GetChatMessages returns the whole chat of a trade, oldest first
	GetChatMessages(ctx context.Context, account domain.Account, tradeHash string) ([]domain.ChatMessage, error)

	// SendChatMessage posts a message to a trade chat
	SendChatMessage(ctx context.Context, account domain.Account, tradeHash string, text string) error

	// ReleaseTrade releases the escrowed crypto of a trade
	ReleaseTrade(ctx context.Context, account domain.Account, tradeHash string) error

	// DownloadAttachment fetches the image behind a chat attachment URL
	DownloadAttachment(ctx context.Context, account domain.Account, fileURL string) ([]byte, error)

	// GetWalletBalances returns the account's wallet balances
	GetWalletBalances(ctx context.Context, account domain.Account) ([]domain.WalletBalance, error)
}

// Config holds marketplace client configuration
type Config struct {
	// TokenTTL caps how long a token is cached
	TokenTTL time.Duration
	// SafetyMargin is subtracted from the token's own expiry
	SafetyMargin time.Duration
	// PageSize bounds the trade list request
	PageSize int
}

type client struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	clock      adapter.Clock
	tokens     tokencache.TokenCache
	config     Config
}

// NewClient creates a new marketplace client
func NewClient(httpClient adapter.HTTPClient, json adapter.JSON, clock adapter.Clock, tokens tokencache.TokenCache, config Config) Client {
	if config.PageSize <= 0 {
		config.PageSize = domain.DEFAULT_TRADE_PAGE_SIZE
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = domain.DEFAULT_TOKEN_TTL
	}
	return &client{
		httpClient: httpClient,
		json:       json,
		clock:      clock,
		tokens:     tokens,
		config:     config,
	}
}

func (c *client) ListTrades(ctx context.Context, account domain.Account, page int) ([]domain.TradeSnapshot, error) {
	if page < 1 {
		page = 1
	}
	payload := map[string]int{
		"page":  page,
		"count": 1,
		"limit": c.config.PageSize,
	}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostJSON(ctx, account.APIURL+pathTradeList, headers, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	var data tradeListData
	if err := c.decode(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode trade list: %w", err)
	}

	trades := make([]domain.TradeSnapshot, 0, len(data.Trades))
	for _, t := range data.Trades {
		trades = append(trades, t.toSnapshot(account.Platform))
	}
	return trades, nil
}

func (c *client) ListRecentlyCompleted(ctx context.Context, account domain.Account) ([]domain.TradeSnapshot, error) {
	form := url.Values{
		"page":  {"1"},
		"limit": {strconv.Itoa(completedPageLimit)},
	}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+pathTradeCompleted, headers, form)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed trades: %w", err)
	}

	var data tradeListData
	if err := c.decode(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode completed trades: %w", err)
	}

	cutoff := c.clock.Now().Add(-domain.RECENTLY_COMPLETED_WINDOW)
	var trades []domain.TradeSnapshot
	for _, t := range data.Trades {
		if !domain.IsCompletedStatus(t.TradeStatus) {
			continue
		}
		s := t.toSnapshot(account.Platform)
		if s.CompletedAt == nil || !s.CompletedAt.After(cutoff) {
			continue
		}
		logger.DebugCtx(ctx, "Found recently completed trade",
			zap.String("trade_hash", s.TradeHash),
			zap.Time("completed_at", *s.CompletedAt))
		trades = append(trades, s)
	}
	return trades, nil
}

func (c *client) GetChatMessages(ctx context.Context, account domain.Account, tradeHash string) ([]domain.ChatMessage, error) {
	form := url.Values{"trade_hash": {tradeHash}}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+pathChatGet, headers, form)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	var data chatData
	if err := c.decode(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(data.Messages))
	for _, m := range data.Messages {
		messages = append(messages, m.toDomain())
	}
	return messages, nil
}

func (c *client) SendChatMessage(ctx context.Context, account domain.Account, tradeHash string, text string) error {
	form := url.Values{
		"trade_hash": {tradeHash},
		"message":    {text},
	}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+pathChatPost, headers, form)
	})
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}
	if err := c.decode(body, nil); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}
	return nil
}

func (c *client) ReleaseTrade(ctx context.Context, account domain.Account, tradeHash string) error {
	form := url.Values{"trade_hash": {tradeHash}}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+pathTradeRelease, headers, form)
	})
	if err != nil {
		return fmt.Errorf("failed to release trade: %w", err)
	}
	if err := c.decode(body, nil); err != nil {
		return fmt.Errorf("failed to release trade: %w", err)
	}

	logger.InfoCtx(ctx, "Released trade", zap.String("trade_hash", tradeHash), zap.String("account", account.Name))
	return nil
}

func (c *client) DownloadAttachment(ctx context.Context, account domain.Account, fileURL string) ([]byte, error) {
	imageHash, ok := AttachmentHash(fileURL)
	if !ok {
		return nil, fmt.Errorf("%w: no image hash in attachment url %q", domain.ErrUnexpectedResponse, fileURL)
	}
	form := url.Values{
		"image_hash": {imageHash},
		"size":       {"2"},
	}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+pathChatImage, headers, form)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty attachment body", domain.ErrUnexpectedResponse)
	}
	return body, nil
}

func (c *client) GetWalletBalances(ctx context.Context, account domain.Account) ([]domain.WalletBalance, error) {
	path := pathNoonesWallet
	if account.Platform == domain.PlatformPaxful {
		path = pathPaxfulWallet
	}

	body, err := c.authorized(ctx, account, func(headers map[string]string) ([]byte, error) {
		return c.httpClient.PostForm(ctx, account.APIURL+path, headers, url.Values{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet balances: %w", err)
	}

	var balances []domain.WalletBalance
	switch account.Platform {
	case domain.PlatformPaxful:
		var data paxfulWalletData
		if err := c.decode(body, &data); err != nil {
			return nil, fmt.Errorf("failed to decode wallet balance: %w", err)
		}
		balances = append(balances, domain.WalletBalance{Currency: data.CryptoCurrencyCode, Balance: data.Balance})
	default:
		var data noonesWalletData
		if err := c.decode(body, &data); err != nil {
			return nil, fmt.Errorf("failed to decode wallet balances: %w", err)
		}
		for _, cc := range data.CryptoCurrencies {
			balances = append(balances, domain.WalletBalance{Currency: cc.Code, Balance: cc.Balance})
		}
		if data.PreferredFiatCurrency != nil {
			balances = append(balances, domain.WalletBalance{
				Currency: data.PreferredFiatCurrency.Code,
				Balance:  data.PreferredFiatCurrency.Balance,
			})
		}
	}
	return balances, nil
}

// decode checks the response envelope and unmarshals its data into v when v is non-nil
func (c *client) decode(body []byte, v interface{}) error {
	var env envelope
	if err := c.json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
	}
	if env.Status != statusSuccess {
		return env.err()
	}
	if v == nil || len(env.Data) == 0 {
		return nil
	}
	if err := c.json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
	}
	return nil
}
