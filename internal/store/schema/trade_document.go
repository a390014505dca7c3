package schema

import (
	"time"

	"gorm.io/datatypes"
)

// TradeDocument stores every trade state of one owner on one platform as a single JSON document
type TradeDocument struct {
	Owner     string         `gorm:"primaryKey;type:text"`
	Platform  string         `gorm:"primaryKey;type:text"`
	Document  datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (TradeDocument) TableName() string {
	return "trade_documents"
}
