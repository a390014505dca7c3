package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/store/schema"
)

// newPGTestStore truncates the table so every subtest starts clean
func newPGTestStore(t *testing.T) TradeStateStore {
	require.NoError(t, testDB.Exec("TRUNCATE TABLE trade_documents").Error)
	return NewPGStore(testDB)
}

func TestPGStore(t *testing.T) {
	if testDB == nil {
		t.Skip("postgres not available")
	}

	RunTradeStateStoreTests(t, newPGTestStore)
}

func TestPGStore_CorruptDocumentReadsAsEmpty(t *testing.T) {
	if testDB == nil {
		t.Skip("postgres not available")
	}
	s := newPGTestStore(t)
	ctx := context.Background()

	// A JSON array is valid jsonb but not a trade document
	require.NoError(t, testDB.Create(&schema.TradeDocument{
		Owner:    "broken",
		Platform: string(domain.PlatformNoones),
		Document: datatypes.JSON(`[1,2,3]`),
	}).Error)

	states, err := s.Load(ctx, "broken", domain.PlatformNoones)
	require.NoError(t, err)
	assert.Empty(t, states)

	require.NoError(t, s.Put(ctx, "broken", domain.PlatformNoones, sampleState("fresh")))
	states, err = s.Load(ctx, "broken", domain.PlatformNoones)
	require.NoError(t, err)
	assert.Len(t, states, 1)
}
