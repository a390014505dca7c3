package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/api/middleware"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/marketplace"
	"github.com/jinjernot/wg-sub000/internal/tokencache"
	"github.com/jinjernot/wg-sub000/internal/worker"
)

// Handler defines the ops server handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// HealthCheck reports liveness
	HealthCheck(c *gin.Context)

	// GetStatus reports account workers, the token cache and poller state
	GetStatus(c *gin.Context)

	// ReleaseTrade releases the escrow of one trade on behalf of an operator
	ReleaseTrade(c *gin.Context)
}

// StatusResponse is the body of GET /api/v1/status
type StatusResponse struct {
	Time     time.Time              `json:"time"`
	Uptime   string                 `json:"uptime"`
	Tokens   tokencache.Stats       `json:"tokens"`
	Accounts []worker.AccountStatus `json:"accounts"`
}

// ReleaseResponse is the body of a successful release
type ReleaseResponse struct {
	Account   string `json:"account"`
	TradeHash string `json:"trade_hash"`
	Released  bool   `json:"released"`
}

type handler struct {
	workers     []worker.AccountWorker
	accounts    []domain.Account
	tokens      tokencache.TokenCache
	marketplace marketplace.Client
	clock       adapter.Clock
	startedAt   time.Time
}

// NewHandler creates the ops handler
func NewHandler(
	workers []worker.AccountWorker,
	accounts []domain.Account,
	tokens tokencache.TokenCache,
	client marketplace.Client,
	clock adapter.Clock,
) Handler {
	return &handler{
		workers:     workers,
		accounts:    accounts,
		tokens:      tokens,
		marketplace: client,
		clock:       clock,
		startedAt:   clock.Now(),
	}
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "trade-monitor",
	})
}

func (h *handler) GetStatus(c *gin.Context) {
	now := h.clock.Now()
	resp := StatusResponse{
		Time:     now,
		Uptime:   now.Sub(h.startedAt).Truncate(time.Second).String(),
		Tokens:   h.tokens.Stats(),
		Accounts: make([]worker.AccountStatus, 0, len(h.workers)),
	}
	for _, w := range h.workers {
		resp.Accounts = append(resp.Accounts, w.Status())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) ReleaseTrade(c *gin.Context) {
	name := c.Param("account")
	hash := strings.TrimSpace(c.Param("hash"))
	if hash == "" {
		respondBadRequest(c, "Trade hash is required")
		return
	}

	account, err := h.findAccount(name)
	if err != nil {
		respondNotFound(c, err.Error())
		return
	}

	ctx := logger.WithFields(c.Request.Context(), logger.TradeFields(hash, account.Username, string(account.Platform))...)
	logger.InfoCtx(ctx, "Releasing trade on operator request",
		zap.String("auth_type", c.GetString(middleware.AUTH_TYPE_KEY)),
		zap.String("auth_subject", c.GetString(middleware.AUTH_SUBJECT_KEY)),
	)

	if err := h.marketplace.ReleaseTrade(ctx, account, hash); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to release trade: %w", err))
		respondServiceError(c, "Failed to release trade", err)
		return
	}

	c.JSON(http.StatusOK, ReleaseResponse{
		Account:   account.Name,
		TradeHash: hash,
		Released:  true,
	})
}

func (h *handler) findAccount(name string) (domain.Account, error) {
	for _, a := range h.accounts {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, name)
}
