package marketplace

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winery-backend/internal/domain"
)

func TestEventService_RecordAndList(t *testing.T) {
	db := setupDB(t)
	s := &EventService{DB: db}
	ctx := context.Background()

	one, two := uint64(1), uint64(2)
	_, err := s.Record(ctx, domain.WineEventCreated, nil, "0x01", alice, map[string]interface{}{"name": "Merlot 2020"})
	require.NoError(t, err)
	_, err = s.Record(ctx, domain.WineEventPurchased, &one, "0x02", bob, nil)
	require.NoError(t, err)
	_, err = s.Record(ctx, domain.WineEventGifted, &two, "0x03", bob, map[string]interface{}{"to": alice})
	require.NoError(t, err)

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forOne, err := s.List(ctx, &one)
	require.NoError(t, err)
	require.Len(t, forOne, 1)
	assert.Equal(t, domain.WineEventPurchased, forOne[0].EventType)
	assert.Equal(t, "0x02", forOne[0].TxHash)

	gift, err := s.List(ctx, &two)
	require.NoError(t, err)
	require.Len(t, gift, 1)
	var data map[string]string
	require.NoError(t, json.Unmarshal(gift[0].EventData, &data))
	assert.Equal(t, alice, data["to"])
}

func TestGormSnapshotStore_ReplaceDropsOldRows(t *testing.T) {
	db := setupDB(t)
	store := &GormSnapshotStore{DB: db}
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, []domain.Listing{
		{Index: 0, Name: "a", Price: ether(1)},
		{Index: 1, Name: "b", Price: ether(2)},
		{Index: 2, Name: "c", Price: ether(3)},
	}))
	require.NoError(t, store.Replace(ctx, []domain.Listing{{Index: 0, Name: "z", Price: ether(9)}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].Name)
	assert.Equal(t, 0, got[0].Price.Cmp(ether(9)))

	require.NoError(t, store.Replace(ctx, nil))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
