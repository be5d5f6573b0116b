// Package wallet holds the server-side signing keys a connected wallet session writes with.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"winery-backend/internal/application/contract"
)

var (
	ErrUnknownSigner = errors.New("no signer configured for address")
	ErrInvalidKey    = errors.New("invalid private key")
)

// Keyring maps account addresses to their private keys on one chain.
type Keyring struct {
	chainID *big.Int
	keys    map[common.Address]*ecdsa.PrivateKey
}

// NewKeyring parses hex private keys (0x prefix optional).
func NewKeyring(chainID *big.Int, hexKeys []string) (*Keyring, error) {
	if chainID == nil {
		return nil, errors.New("chain id is required")
	}
	kr := &Keyring{chainID: new(big.Int).Set(chainID), keys: make(map[common.Address]*ecdsa.PrivateKey, len(hexKeys))}
	for i, hk := range hexKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hk), "0x"))
		if err != nil {
			return nil, fmt.Errorf("%w at position %d: %v", ErrInvalidKey, i, err)
		}
		kr.keys[crypto.PubkeyToAddress(key.PublicKey)] = key
	}
	return kr, nil
}

// ChainID returns the chain the keyring signs for.
func (k *Keyring) ChainID() *big.Int {
	return new(big.Int).Set(k.chainID)
}

// Addresses lists the configured accounts, sorted.
func (k *Keyring) Addresses() []string {
	out := make([]string, 0, len(k.keys))
	for addr := range k.keys {
		out = append(out, addr.Hex())
	}
	sort.Strings(out)
	return out
}

// Has reports whether address has a configured key.
func (k *Keyring) Has(address string) bool {
	_, err := k.Signer(address)
	return err == nil
}

// Signer returns the signer for address (any letter case).
func (k *Keyring) Signer(address string) (*Signer, error) {
	if !common.IsHexAddress(address) {
		return nil, ErrUnknownSigner
	}
	addr := common.HexToAddress(address)
	key, ok := k.keys[addr]
	if !ok {
		return nil, ErrUnknownSigner
	}
	return &Signer{address: addr, key: key, chainID: k.chainID}, nil
}

var _ contract.Signer = (*Signer)(nil)

// Signer signs transactions for a single account.
type Signer struct {
	address common.Address
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

// Address returns the checksummed account address.
func (s *Signer) Address() string {
	return s.address.Hex()
}

// TransactOpts builds keyed transact options carrying ctx and value (wei).
func (s *Signer) TransactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	if value != nil {
		opts.Value = new(big.Int).Set(value)
	}
	return opts, nil
}
