package marketplace

import (
	"context"

	"gorm.io/gorm"

	"winery-backend/internal/domain"
)

// SnapshotStore persists the last successfully aggregated listing set.
type SnapshotStore interface {
	Replace(ctx context.Context, listings []domain.Listing) error
	Load(ctx context.Context) ([]domain.Listing, error)
}

// GormSnapshotStore keeps the snapshot in the WineListings table.
type GormSnapshotStore struct {
	DB *gorm.DB
}

// Replace swaps the stored set for listings in one transaction.
func (s *GormSnapshotStore) Replace(ctx context.Context, listings []domain.Listing) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.ListingSnapshot{}).Error; err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		rows := make([]domain.ListingSnapshot, len(listings))
		for i, l := range listings {
			rows[i] = domain.SnapshotFromListing(l)
		}
		return tx.Create(&rows).Error
	})
}

// Load returns the stored set in index order.
func (s *GormSnapshotStore) Load(ctx context.Context) ([]domain.Listing, error) {
	var rows []domain.ListingSnapshot
	if err := s.DB.WithContext(ctx).Order("wine_index ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Listing, len(rows))
	for i, r := range rows {
		out[i] = r.Listing()
	}
	return out, nil
}
