package wallet

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known development key (hardhat account #0).
const (
	devKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNewKeyring_DerivesAddresses(t *testing.T) {
	kr, err := NewKeyring(big.NewInt(31337), []string{"0x" + devKey})
	require.NoError(t, err)
	assert.Equal(t, []string{devAddress}, kr.Addresses())
	assert.True(t, kr.Has(strings.ToLower(devAddress)))
	assert.Equal(t, int64(31337), kr.ChainID().Int64())
}

func TestNewKeyring_RejectsBadKey(t *testing.T) {
	_, err := NewKeyring(big.NewInt(1), []string{"not-a-key"})
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestSigner_Unknown(t *testing.T) {
	kr, err := NewKeyring(big.NewInt(1), []string{devKey})
	require.NoError(t, err)

	_, err = kr.Signer("0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, ErrUnknownSigner)
	_, err = kr.Signer("garbage")
	assert.ErrorIs(t, err, ErrUnknownSigner)
}

func TestSigner_TransactOpts(t *testing.T) {
	kr, err := NewKeyring(big.NewInt(44787), []string{devKey})
	require.NoError(t, err)
	s, err := kr.Signer(devAddress)
	require.NoError(t, err)

	ctx := context.Background()
	value := big.NewInt(5)
	opts, err := s.TransactOpts(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, devAddress, opts.From.Hex())
	assert.Equal(t, 0, opts.Value.Cmp(big.NewInt(5)))
	assert.Equal(t, ctx, opts.Context)

	value.SetInt64(9)
	assert.Equal(t, int64(5), opts.Value.Int64())
}
