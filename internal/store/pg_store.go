package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a TradeStateStore backed by the trade_documents table
func NewPGStore(db *gorm.DB) TradeStateStore {
	return &pgStore{db: db}
}

// Migrate creates or updates the trade_documents table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&schema.TradeDocument{})
}

// ConfigureConnectionPool applies pool settings, using defaults for zero values
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	if maxIdleConns <= 0 || maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = time.Hour
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	return nil
}

func (s *pgStore) Load(ctx context.Context, owner string, platform domain.Platform) (map[string]domain.TradeState, error) {
	var doc schema.TradeDocument
	err := s.db.WithContext(ctx).
		Where("owner = ? AND platform = ?", owner, string(platform)).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return make(map[string]domain.TradeState), nil
		}
		return nil, fmt.Errorf("failed to load trade document: %w", err)
	}

	return decodeDocument(ctx, owner, platform, doc.Document), nil
}

func (s *pgStore) Save(ctx context.Context, owner string, platform domain.Platform, states map[string]domain.TradeState) error {
	data, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("failed to encode trade document: %w", err)
	}

	doc := schema.TradeDocument{
		Owner:    owner,
		Platform: string(platform),
		Document: datatypes.JSON(data),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to save trade document: %w", err)
	}
	return nil
}

func (s *pgStore) Put(ctx context.Context, owner string, platform domain.Platform, state domain.TradeState) error {
	if state.TradeHash == "" {
		return fmt.Errorf("%w: missing trade hash", domain.ErrInvalidSnapshot)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure the row exists so it can be locked
		empty := schema.TradeDocument{
			Owner:    owner,
			Platform: string(platform),
			Document: datatypes.JSON("{}"),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&empty).Error; err != nil {
			return fmt.Errorf("failed to create trade document: %w", err)
		}

		var doc schema.TradeDocument
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner = ? AND platform = ?", owner, string(platform)).
			First(&doc).Error; err != nil {
			return fmt.Errorf("failed to lock trade document: %w", err)
		}

		states := decodeDocument(ctx, owner, platform, doc.Document)
		states[state.TradeHash] = state

		data, err := json.Marshal(states)
		if err != nil {
			return fmt.Errorf("failed to encode trade document: %w", err)
		}

		if err := tx.Model(&schema.TradeDocument{}).
			Where("owner = ? AND platform = ?", owner, string(platform)).
			Updates(map[string]interface{}{
				"document":   datatypes.JSON(data),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update trade document: %w", err)
		}
		return nil
	})
}

func decodeDocument(ctx context.Context, owner string, platform domain.Platform, raw datatypes.JSON) map[string]domain.TradeState {
	states := make(map[string]domain.TradeState)
	if len(raw) == 0 {
		return states
	}
	if err := json.Unmarshal(raw, &states); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("trade document is corrupt, treating as empty: %w", err),
			zap.String("owner", owner),
			zap.String("platform", string(platform)))
		return make(map[string]domain.TradeState)
	}
	return states
}
