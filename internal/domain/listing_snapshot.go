package domain

import (
	"math/big"
	"time"
)

// ListingSnapshot is one persisted row of the last successfully aggregated listing set.
type ListingSnapshot struct {
	WineIndex       uint64    `gorm:"column:wine_index;primaryKey;autoIncrement:false" json:"index"`
	Owner           string    `gorm:"column:owner" json:"owner"`
	Name            string    `gorm:"column:name" json:"name"`
	Image           string    `gorm:"column:image" json:"image"`
	Description     string    `gorm:"column:description" json:"description"`
	PriceWei        string    `gorm:"column:price_wei;type:varchar(78);not null" json:"price"`
	Sold            bool      `gorm:"column:sold;not null" json:"sold"`
	MetadataMissing bool      `gorm:"column:metadata_missing;not null" json:"metadata_missing"`
	CreatedAt       time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (ListingSnapshot) TableName() string {
	return "WineListings"
}

// SnapshotFromListing converts a Listing for storage. Price is kept as a decimal
// string because uint256 values overflow every SQL integer type.
func SnapshotFromListing(l Listing) ListingSnapshot {
	price := "0"
	if l.Price != nil {
		price = l.Price.String()
	}
	return ListingSnapshot{
		WineIndex:       l.Index,
		Owner:           l.Owner,
		Name:            l.Name,
		Image:           l.Image,
		Description:     l.Description,
		PriceWei:        price,
		Sold:            l.Sold,
		MetadataMissing: l.MetadataMissing,
	}
}

// Listing converts the stored row back. A malformed price decodes as zero.
func (s ListingSnapshot) Listing() Listing {
	price, ok := new(big.Int).SetString(s.PriceWei, 10)
	if !ok {
		price = new(big.Int)
	}
	return Listing{
		Index:           s.WineIndex,
		WineID:          s.WineIndex,
		Owner:           s.Owner,
		Name:            s.Name,
		Image:           s.Image,
		Description:     s.Description,
		Price:           price,
		Sold:            s.Sold,
		MetadataMissing: s.MetadataMissing,
	}
}
