package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wine event types recorded after a confirmed mutation.
const (
	WineEventCreated   = "CREATED"
	WineEventPurchased = "PURCHASED"
	WineEventGifted    = "GIFTED"
)

// WineEvent is the off-chain ledger entry for a create, buy or gift transaction.
// WineID is nil for CREATED: the contract assigns the index.
type WineEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	WineID    *uint64        `gorm:"column:wine_id;index" json:"wine_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	TxHash    string         `gorm:"column:tx_hash;type:varchar(66)" json:"tx_hash"`
	Actor     string         `gorm:"column:actor;type:varchar(42)" json:"actor"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (WineEvent) TableName() string {
	return "WineEvents"
}

// BeforeCreate sets event_id if not already set (DBs without default uuid).
func (e *WineEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
