package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IdempotencyKey stores a processed create/close request so a retried
// submission from the front desk replays the original response
type IdempotencyKey struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Key          string         `gorm:"uniqueIndex:idx_idempotency_user_key;size:255;not null"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_user_key"`
	Endpoint     string         `gorm:"size:255;not null"` // e.g. "POST /api/v1/comandas/:id/close"
	ResponseCode int            `gorm:"not null"`
	ResponseBody datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	ExpiresAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpiredAt checks if the key had expired at the given instant
func (i *IdempotencyKey) IsExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
