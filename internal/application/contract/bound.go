package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"winery-backend/internal/domain"
	"winery-backend/internal/metrics"
)

// Backend is what BoundWinery needs from a node connection (*ethclient.Client satisfies it).
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// BoundWinery is a Winery backed by a go-ethereum BoundContract.
type BoundWinery struct {
	address  common.Address
	contract *bind.BoundContract
	backend  Backend
}

// NewBoundWinery binds an already-deployed contract.
func NewBoundWinery(addr common.Address, parsed abi.ABI, backend Backend) *BoundWinery {
	return &BoundWinery{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
	}
}

// Address returns the contract address.
func (w *BoundWinery) Address() common.Address {
	return w.address
}

func (w *BoundWinery) call(ctx context.Context, method string, params ...interface{}) (out []interface{}, err error) {
	defer metrics.ObserveChainCall(method, time.Now(), &err)
	err = w.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	return out, err
}

func (w *BoundWinery) WineLength(ctx context.Context) (uint64, error) {
	out, err := w.call(ctx, "getWineLength")
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("%w: getWineLength returned nothing", ErrUnexpectedOutput)
	}
	n, ok := out[0].(*big.Int)
	if !ok || !n.IsUint64() {
		return 0, fmt.Errorf("%w: getWineLength", ErrUnexpectedOutput)
	}
	return n.Uint64(), nil
}

// Wine reads getWine(id). Price sits at position 4 and sold at 5.
func (w *BoundWinery) Wine(ctx context.Context, id uint64) (*domain.WineRecord, error) {
	out, err := w.call(ctx, "getWine", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	if len(out) < 6 {
		return nil, fmt.Errorf("%w: getWine returned %d values", ErrUnexpectedOutput, len(out))
	}
	price, ok := out[4].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: getWine price", ErrUnexpectedOutput)
	}
	sold, ok := out[5].(bool)
	if !ok {
		return nil, fmt.Errorf("%w: getWine sold", ErrUnexpectedOutput)
	}
	rec := &domain.WineRecord{Price: price, Sold: sold}
	if owner, ok := out[0].(common.Address); ok {
		rec.Owner = owner.Hex()
	}
	rec.Name, _ = out[1].(string)
	rec.Image, _ = out[2].(string)
	rec.Description, _ = out[3].(string)
	return rec, nil
}

func (w *BoundWinery) TokenURI(ctx context.Context, id uint64) (string, error) {
	out, err := w.call(ctx, "tokenURI", new(big.Int).SetUint64(id))
	if err != nil {
		return "", err
	}
	var uri string
	ok := len(out) > 0
	if ok {
		uri, ok = out[0].(string)
	}
	if !ok {
		return "", fmt.Errorf("%w: tokenURI", ErrUnexpectedOutput)
	}
	return uri, nil
}

func (w *BoundWinery) OwnerOf(ctx context.Context, id uint64) (string, error) {
	out, err := w.call(ctx, "ownerOf", new(big.Int).SetUint64(id))
	if err != nil {
		return "", err
	}
	return addressOut(out, "ownerOf")
}

// Owner returns the address that deployed the contract.
func (w *BoundWinery) Owner(ctx context.Context) (string, error) {
	out, err := w.call(ctx, "owner")
	if err != nil {
		return "", err
	}
	return addressOut(out, "owner")
}

func (w *BoundWinery) Owners(ctx context.Context) ([]string, error) {
	out, err := w.call(ctx, "getOwners")
	if err != nil {
		return nil, err
	}
	var addrs []common.Address
	ok := len(out) > 0
	if ok {
		addrs, ok = out[0].([]common.Address)
	}
	if !ok {
		return nil, fmt.Errorf("%w: getOwners", ErrUnexpectedOutput)
	}
	owners := make([]string, 0, len(addrs))
	for _, a := range addrs {
		owners = append(owners, a.Hex())
	}
	return owners, nil
}

func (w *BoundWinery) AddWine(ctx context.Context, s Signer, name, image, description, uri string, price *big.Int) (string, error) {
	return w.transact(ctx, s, nil, "addWine", name, image, description, uri, price)
}

func (w *BoundWinery) BuyWine(ctx context.Context, s Signer, id uint64, value *big.Int) (string, error) {
	return w.transact(ctx, s, value, "buyWine", new(big.Int).SetUint64(id))
}

// GiftWine encodes recipient as an address; anything that is not a hex
// address fails here, before a transaction is signed.
func (w *BoundWinery) GiftWine(ctx context.Context, s Signer, id uint64, recipient string) (string, error) {
	if !common.IsHexAddress(recipient) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}
	return w.transact(ctx, s, nil, "giftWine", new(big.Int).SetUint64(id), common.HexToAddress(recipient))
}

// transact signs and sends method, then blocks until the receipt is available.
func (w *BoundWinery) transact(ctx context.Context, s Signer, value *big.Int, method string, params ...interface{}) (hash string, err error) {
	defer metrics.ObserveChainCall(method, time.Now(), &err)

	opts, err := s.TransactOpts(ctx, value)
	if err != nil {
		return "", err
	}
	tx, err := w.contract.Transact(opts, method, params...)
	if err != nil {
		return "", err
	}
	receipt, err := bind.WaitMined(ctx, w.backend, tx)
	if err != nil {
		return tx.Hash().Hex(), err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return tx.Hash().Hex(), fmt.Errorf("%w: %s %s", ErrReverted, method, tx.Hash().Hex())
	}
	return tx.Hash().Hex(), nil
}

func addressOut(out []interface{}, method string) (string, error) {
	if len(out) == 0 {
		return "", fmt.Errorf("%w: %s returned nothing", ErrUnexpectedOutput, method)
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedOutput, method)
	}
	return addr.Hex(), nil
}
