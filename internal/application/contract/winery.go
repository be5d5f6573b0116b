// Package contract binds the Winery NFT contract. Reads are plain calls; writes
// are signed by the caller's wallet and wait for the transaction to be mined.
package contract

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"winery-backend/internal/domain"
)

var (
	ErrReverted         = errors.New("transaction reverted")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrUnexpectedOutput = errors.New("unexpected contract output")
)

// Signer is the signing context a write is sent under.
type Signer interface {
	// Address is the sender account, 0x-prefixed.
	Address() string
	// TransactOpts returns options that sign as Address and attach value (wei, may be nil).
	TransactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error)
}

// Winery is the fixed method surface of the deployed contract.
type Winery interface {
	WineLength(ctx context.Context) (uint64, error)
	Wine(ctx context.Context, id uint64) (*domain.WineRecord, error)
	TokenURI(ctx context.Context, id uint64) (string, error)
	OwnerOf(ctx context.Context, id uint64) (string, error)
	Owner(ctx context.Context) (string, error)
	Owners(ctx context.Context) ([]string, error)

	// Write methods return the hash of the mined transaction.
	AddWine(ctx context.Context, s Signer, name, image, description, uri string, price *big.Int) (string, error)
	BuyWine(ctx context.Context, s Signer, id uint64, value *big.Int) (string, error)
	GiftWine(ctx context.Context, s Signer, id uint64, recipient string) (string, error)
}
