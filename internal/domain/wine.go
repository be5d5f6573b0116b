package domain

import "math/big"

// WineRecord is the raw tuple returned by the contract's getWine(index).
type WineRecord struct {
	Owner       string
	Name        string
	Image       string
	Description string
	Price       *big.Int // wei
	Sold        bool
}

// MetadataDocument is the JSON document pinned off-chain when a wine is minted.
// It is written once and never updated; sale and ownership changes live on-chain.
type MetadataDocument struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
}

// Listing is the assembled view of one wine: on-chain record, current owner and
// off-chain metadata. Snapshots are replaced wholesale after every mutation.
type Listing struct {
	Index       uint64   `json:"index"`
	WineID      uint64   `json:"wineId"`
	Owner       string   `json:"owner"`
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Price       *big.Int `json:"price"`
	Sold        bool     `json:"sold"`

	// MetadataMissing is set when the metadata document could not be fetched;
	// name, image and description are empty in that case.
	MetadataMissing bool `json:"metadata_missing"`
}
