package logger

import (
	"context"

	"go.uber.org/zap"
)

type fieldsKey struct{}

// TradeFields returns the standard fields identifying a trade in log lines
func TradeFields(tradeHash, owner, platform string) []zap.Field {
	return []zap.Field{
		zap.String("trade_hash", tradeHash),
		zap.String("owner", owner),
		zap.String("platform", platform),
	}
}

// WithFields returns a context whose *Ctx log lines carry fields
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}
