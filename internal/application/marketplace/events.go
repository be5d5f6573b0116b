package marketplace

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"winery-backend/internal/domain"
)

// EventService is the off-chain ledger of confirmed create, buy and gift transactions.
type EventService struct {
	DB *gorm.DB
}

// Record stores one event. data may be nil.
func (s *EventService) Record(ctx context.Context, eventType string, wineID *uint64, txHash, actor string, data map[string]interface{}) (*domain.WineEvent, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ev := &domain.WineEvent{
		WineID:    wineID,
		EventType: eventType,
		TxHash:    txHash,
		Actor:     actor,
		EventData: datatypes.JSON(raw),
	}
	if err := s.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// List returns events oldest first, optionally for a single wine.
func (s *EventService) List(ctx context.Context, wineID *uint64) ([]domain.WineEvent, error) {
	q := s.DB.WithContext(ctx)
	if wineID != nil {
		q = q.Where("wine_id = ?", *wineID)
	}
	var events []domain.WineEvent
	if err := q.Order(`"createdAt" ASC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
