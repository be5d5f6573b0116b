// Package contracttest provides an in-memory Winery for tests.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"winery-backend/internal/application/contract"
	"winery-backend/internal/domain"
)

// Wine is one stored wine of the fake contract.
type Wine struct {
	domain.WineRecord
	TokenURI string
	Holder   string
}

// Call records a write sent to the fake.
type Call struct {
	Method string
	From   string
	ID     uint64
	Value  *big.Int
	To     string
}

// Winery is a contract.Winery held in memory. Set the Err fields to make methods fail.
type Winery struct {
	mu      sync.Mutex
	Wines   []Wine
	Creator string
	Calls   []Call

	// Delay, when set, is applied to every read of index i.
	Delay func(i uint64) time.Duration

	// Length, when non-zero, is reported by WineLength instead of len(Wines).
	Length uint64

	LengthErr  error
	WineErr    map[uint64]error
	URIErr     map[uint64]error
	OwnerOfErr map[uint64]error
	WriteErr   error
	reads      int
}

var _ contract.Winery = (*Winery)(nil)

// New returns a fake with the given wines already minted.
func New(wines ...Wine) *Winery {
	return &Winery{Wines: wines, Creator: "0x00000000000000000000000000000000000000C0"}
}

// Reads counts read calls (every method except the three writes).
func (w *Winery) Reads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reads
}

// Writes returns a copy of the recorded writes.
func (w *Winery) Writes() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.Calls...)
}

// SetPrice changes a wine's price, as a seller relisting would.
func (w *Winery) SetPrice(id uint64, price *big.Int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Wines[id].Price = price
}

func (w *Winery) read(ctx context.Context, i uint64) error {
	w.mu.Lock()
	w.reads++
	delay := w.Delay
	w.mu.Unlock()
	if delay != nil {
		select {
		case <-time.After(delay(i)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (w *Winery) wine(id uint64) (*Wine, error) {
	if id >= uint64(len(w.Wines)) {
		return nil, fmt.Errorf("%w: wine %d does not exist", contract.ErrReverted, id)
	}
	return &w.Wines[id], nil
}

func (w *Winery) WineLength(ctx context.Context) (uint64, error) {
	if err := w.read(ctx, 0); err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.LengthErr != nil {
		return 0, w.LengthErr
	}
	if w.Length != 0 {
		return w.Length, nil
	}
	return uint64(len(w.Wines)), nil
}

func (w *Winery) Wine(ctx context.Context, id uint64) (*domain.WineRecord, error) {
	if err := w.read(ctx, id); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.WineErr[id]; err != nil {
		return nil, err
	}
	wine, err := w.wine(id)
	if err != nil {
		return nil, err
	}
	rec := wine.WineRecord
	rec.Price = new(big.Int)
	if wine.Price != nil {
		rec.Price.Set(wine.Price)
	}
	return &rec, nil
}

func (w *Winery) TokenURI(ctx context.Context, id uint64) (string, error) {
	if err := w.read(ctx, id); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.URIErr[id]; err != nil {
		return "", err
	}
	wine, err := w.wine(id)
	if err != nil {
		return "", err
	}
	return wine.TokenURI, nil
}

func (w *Winery) OwnerOf(ctx context.Context, id uint64) (string, error) {
	if err := w.read(ctx, id); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.OwnerOfErr[id]; err != nil {
		return "", err
	}
	wine, err := w.wine(id)
	if err != nil {
		return "", err
	}
	return wine.Holder, nil
}

func (w *Winery) Owner(ctx context.Context) (string, error) {
	if err := w.read(ctx, 0); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Creator, nil
}

func (w *Winery) Owners(ctx context.Context) ([]string, error) {
	if err := w.read(ctx, 0); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.Wines))
	for _, wine := range w.Wines {
		out = append(out, wine.Holder)
	}
	return out, nil
}

func (w *Winery) txHash() string {
	return common.BigToHash(big.NewInt(int64(len(w.Calls)))).Hex()
}

func (w *Winery) AddWine(ctx context.Context, s contract.Signer, name, image, description, uri string, price *big.Int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.WriteErr != nil {
		return "", w.WriteErr
	}
	w.Wines = append(w.Wines, Wine{
		WineRecord: domain.WineRecord{
			Owner: s.Address(), Name: name, Image: image, Description: description,
			Price: new(big.Int).Set(price),
		},
		TokenURI: uri,
		Holder:   s.Address(),
	})
	w.Calls = append(w.Calls, Call{Method: "addWine", From: s.Address(), ID: uint64(len(w.Wines) - 1), Value: price})
	return w.txHash(), nil
}

func (w *Winery) BuyWine(ctx context.Context, s contract.Signer, id uint64, value *big.Int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.WriteErr != nil {
		return "", w.WriteErr
	}
	wine, err := w.wine(id)
	if err != nil {
		return "", err
	}
	if wine.Sold {
		return "", fmt.Errorf("%w: wine already sold", contract.ErrReverted)
	}
	if value == nil || wine.Price == nil || value.Cmp(wine.Price) != 0 {
		return "", fmt.Errorf("%w: wrong payment", contract.ErrReverted)
	}
	wine.Sold = true
	wine.Owner = s.Address()
	wine.Holder = s.Address()
	w.Calls = append(w.Calls, Call{Method: "buyWine", From: s.Address(), ID: id, Value: new(big.Int).Set(value)})
	return w.txHash(), nil
}

func (w *Winery) GiftWine(ctx context.Context, s contract.Signer, id uint64, recipient string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.WriteErr != nil {
		return "", w.WriteErr
	}
	if !common.IsHexAddress(recipient) {
		return "", contract.ErrInvalidRecipient
	}
	wine, err := w.wine(id)
	if err != nil {
		return "", err
	}
	if !common.IsHexAddress(wine.Holder) || common.HexToAddress(wine.Holder) != common.HexToAddress(s.Address()) {
		return "", fmt.Errorf("%w: caller is not the holder", contract.ErrReverted)
	}
	wine.Holder = common.HexToAddress(recipient).Hex()
	w.Calls = append(w.Calls, Call{Method: "giftWine", From: s.Address(), ID: id, To: wine.Holder})
	return w.txHash(), nil
}

// ErrBoom is a generic failure for tests.
var ErrBoom = errors.New("boom")

// Signer is a contract.Signer that never signs anything real.
type Signer string

func (s Signer) Address() string { return string(s) }

func (s Signer) TransactOpts(context.Context, *big.Int) (*bind.TransactOpts, error) {
	return nil, errors.New("contracttest: fake signer cannot sign")
}
