package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/metrics"
	"github.com/jinjernot/wg-sub000/internal/mocks"
	"github.com/jinjernot/wg-sub000/internal/worker"
)

func setupTestBalanceWorker(t *testing.T, accounts []domain.Account) (worker.Worker, *mocks.MockMarketplaceClient, *mocks.MockAlertDispatcher) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	client := mocks.NewMockMarketplaceClient(ctrl)
	alerts := mocks.NewMockAlertDispatcher(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().After(30 * time.Minute).Return(make(chan time.Time)).AnyTimes()

	w := worker.NewBalanceWorker(&worker.BalanceWorkerConfig{
		Interval:     30 * time.Minute,
		Currency:     "MXN",
		RateToUSD:    decimal.RequireFromString("18.48"),
		ThresholdUSD: decimal.NewFromInt(1000),
	}, accounts, client, alerts, clock, metrics.New())

	return w, client, alerts
}

// runOnce starts the worker with a canceled context so exactly one check runs
func runOnce(t *testing.T, w worker.Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Start(ctx))
}

func TestBalanceWorker_LowBalanceAlert(t *testing.T) {
	other := domain.Account{Name: "seller2_paxful", Username: "seller2", Platform: domain.PlatformPaxful}
	w, client, alerts := setupTestBalanceWorker(t, []domain.Account{testAccount, other})

	client.EXPECT().GetWalletBalances(gomock.Any(), testAccount).Return([]domain.WalletBalance{
		{Currency: "BTC", Balance: decimal.RequireFromString("0.5")},
		{Currency: "mxn", Balance: decimal.RequireFromString("9240")},
	}, nil)
	client.EXPECT().GetWalletBalances(gomock.Any(), other).Return([]domain.WalletBalance{
		{Currency: "MXN", Balance: decimal.RequireFromString("18480")},
	}, nil)

	var sent []alert.Alert
	alerts.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a alert.Alert) error {
		sent = append(sent, a)
		return nil
	})

	runOnce(t, w)

	require.Len(t, sent, 1)
	assert.Equal(t, alert.KindLowBalance, sent[0].Kind)
	assert.Equal(t, alert.LevelWarning, sent[0].Level)
	assert.Equal(t, "seller1", sent[0].Owner)
	assert.Contains(t, sent[0].Message, "9240.00 MXN (500.00 USD)")
}

func TestBalanceWorker_WalletErrorSkipsAccount(t *testing.T) {
	other := domain.Account{Name: "seller2_paxful", Username: "seller2", Platform: domain.PlatformPaxful}
	w, client, alerts := setupTestBalanceWorker(t, []domain.Account{testAccount, other})

	client.EXPECT().GetWalletBalances(gomock.Any(), testAccount).Return(nil, errors.New("timeout"))
	client.EXPECT().GetWalletBalances(gomock.Any(), other).Return([]domain.WalletBalance{
		{Currency: "MXN", Balance: decimal.NewFromInt(100)},
	}, nil)
	alerts.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("no sinks"))

	runOnce(t, w)
}

func TestBalanceWorker_Name(t *testing.T) {
	w, _, _ := setupTestBalanceWorker(t, nil)
	assert.Equal(t, "balance-worker", w.Name())
	require.NoError(t, w.Stop(context.Background()))
}
