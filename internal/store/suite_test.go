package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

func sampleState(hash string) domain.TradeState {
	firstSeen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	paid := firstSeen.Add(20 * time.Minute)
	return domain.TradeState{
		TradeSnapshot: domain.TradeSnapshot{
			TradeHash:           hash,
			OwnerUsername:       "davidvs",
			ResponderUsername:   "buyer42",
			Platform:            domain.PlatformNoones,
			TradeStatus:         domain.StatusPaid,
			PaymentMethodSlug:   domain.MethodOXXO,
			FiatAmountRequested: decimal.RequireFromString("1500.50"),
			FiatCurrencyCode:    "MXN",
			StartDate:           firstSeen,
		},
		FirstSeenUTC:       &firstSeen,
		StatusHistory:      []string{domain.StatusNew, domain.StatusActiveFunded, domain.StatusPaid},
		PaidTimestamp:      &paid,
		WelcomeMessageSent: true,
		ReminderSent:       true,
		OCRIdentifiedBank:  "scotiabank",
		ProcessedAttachments: map[string]domain.AttachmentProgress{
			"https://files/1.jpg": {Downloaded: true, AlertsSent: true, ImageHash: "abc"},
		},
	}
}

// RunTradeStateStoreTests runs the behaviour every TradeStateStore backend must provide
func RunTradeStateStoreTests(t *testing.T, newStore func(t *testing.T) TradeStateStore) {
	ctx := context.Background()

	t.Run("load missing document returns empty map", func(t *testing.T) {
		s := newStore(t)
		states, err := s.Load(ctx, "nobody", domain.PlatformPaxful)
		require.NoError(t, err)
		assert.NotNil(t, states)
		assert.Empty(t, states)
	})

	t.Run("save then load", func(t *testing.T) {
		s := newStore(t)
		want := sampleState("hash-1")
		require.NoError(t, s.Save(ctx, "davidvs", domain.PlatformNoones, map[string]domain.TradeState{"hash-1": want}))

		states, err := s.Load(ctx, "davidvs", domain.PlatformNoones)
		require.NoError(t, err)
		require.Contains(t, states, "hash-1")

		got := states["hash-1"]
		assert.Equal(t, want.TradeHash, got.TradeHash)
		assert.Equal(t, want.StatusHistory, got.StatusHistory)
		assert.True(t, want.FiatAmountRequested.Equal(got.FiatAmountRequested))
		require.NotNil(t, got.FirstSeenUTC)
		assert.True(t, want.FirstSeenUTC.Equal(*got.FirstSeenUTC))
		require.NotNil(t, got.PaidTimestamp)
		assert.True(t, want.PaidTimestamp.Equal(*got.PaidTimestamp))
		assert.True(t, got.WelcomeMessageSent)
		assert.True(t, got.ReminderSent)
		assert.False(t, got.EmailVerified)
		assert.Equal(t, "scotiabank", got.OCRIdentifiedBank)
		assert.Equal(t, want.ProcessedAttachments, got.ProcessedAttachments)
	})

	t.Run("save replaces the whole document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, "replace", domain.PlatformNoones, map[string]domain.TradeState{
			"a": sampleState("a"),
			"b": sampleState("b"),
		}))
		require.NoError(t, s.Save(ctx, "replace", domain.PlatformNoones, map[string]domain.TradeState{
			"b": sampleState("b"),
		}))

		states, err := s.Load(ctx, "replace", domain.PlatformNoones)
		require.NoError(t, err)
		assert.Len(t, states, 1)
		assert.Contains(t, states, "b")
	})

	t.Run("put upserts one trade and keeps the others", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "putter", domain.PlatformNoones, sampleState("a")))
		require.NoError(t, s.Put(ctx, "putter", domain.PlatformNoones, sampleState("b")))

		updated := sampleState("a")
		updated.EmailVerified = true
		require.NoError(t, s.Put(ctx, "putter", domain.PlatformNoones, updated))

		states, err := s.Load(ctx, "putter", domain.PlatformNoones)
		require.NoError(t, err)
		assert.Len(t, states, 2)
		assert.True(t, states["a"].EmailVerified)
		assert.False(t, states["b"].EmailVerified)
	})

	t.Run("put requires a trade hash", func(t *testing.T) {
		s := newStore(t)
		err := s.Put(ctx, "putter", domain.PlatformNoones, domain.TradeState{})
		assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
	})

	t.Run("documents are scoped per owner and platform", func(t *testing.T) {
		s := newStore(t)
		a := sampleState("same-hash")
		a.OCRIdentifiedBank = "owner-a"
		b := sampleState("same-hash")
		b.OCRIdentifiedBank = "owner-b"
		c := sampleState("same-hash")
		c.OCRIdentifiedBank = "owner-a-paxful"

		require.NoError(t, s.Put(ctx, "owner-a", domain.PlatformNoones, a))
		require.NoError(t, s.Put(ctx, "owner-b", domain.PlatformNoones, b))
		require.NoError(t, s.Put(ctx, "owner-a", domain.PlatformPaxful, c))

		for owner, platforms := range map[string]map[domain.Platform]string{
			"owner-a": {domain.PlatformNoones: "owner-a", domain.PlatformPaxful: "owner-a-paxful"},
			"owner-b": {domain.PlatformNoones: "owner-b"},
		} {
			for platform, bank := range platforms {
				states, err := s.Load(ctx, owner, platform)
				require.NoError(t, err)
				require.Len(t, states, 1)
				assert.Equal(t, bank, states["same-hash"].OCRIdentifiedBank)
			}
		}
	})

	t.Run("concurrent puts to one document lose no updates", func(t *testing.T) {
		s := newStore(t)
		const n = 20

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Put(ctx, "busy", domain.PlatformNoones, sampleState(fmt.Sprintf("hash-%02d", i)))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		states, err := s.Load(ctx, "busy", domain.PlatformNoones)
		require.NoError(t, err)
		assert.Len(t, states, n)
	})
}
