package store

import (
	"context"
	"regexp"

	"github.com/jinjernot/wg-sub000/internal/domain"
)

// TradeStateStore persists trade states grouped in one document per (owner, platform).
// A missing or corrupt document reads as an empty map.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=TradeStateStore=MockTradeStateStore
type TradeStateStore interface {
	// Load returns every trade state of the document keyed by trade hash
	Load(ctx context.Context, owner string, platform domain.Platform) (map[string]domain.TradeState, error)

	// Save replaces the whole document
	Save(ctx context.Context, owner string, platform domain.Platform, states map[string]domain.TradeState) error

	// Put upserts one trade state with a serialized load-modify-save of its document
	Put(ctx context.Context, owner string, platform domain.Platform, state domain.TradeState) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitize makes an owner or platform safe to use as a file name component
func sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return unsafeChars.ReplaceAllString(s, "_")
}

// documentKey identifies one document
func documentKey(owner string, platform domain.Platform) string {
	return sanitize(owner) + "_" + sanitize(string(platform))
}
