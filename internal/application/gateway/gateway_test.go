package gateway

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winery-backend/internal/application/contract"
	"winery-backend/internal/application/contract/contracttest"
)

func newGateway() (*Gateway, *contracttest.Winery, *fakeStore) {
	chain, fetcher := twoWines()
	store := &fakeStore{}
	return &Gateway{Chain: chain, Store: store, Fetcher: fetcher}, chain, store
}

func TestCreate_UploadsThenMints(t *testing.T) {
	g, chain, store := newGateway()
	seller := contracttest.Signer(alice)

	tx, err := g.Create(context.Background(), seller, CreateInput{
		Name: "Rose 2022", Price: "1.5", Image: "https://img/rose", Description: "pink",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx)

	require.Len(t, store.docs, 1)
	assert.Equal(t, "Rose 2022", store.docs[0].Name)
	assert.Equal(t, "1.5", store.docs[0].Price)
	assert.Equal(t, alice, store.docs[0].Owner)

	require.Len(t, chain.Wines, 3)
	minted := chain.Wines[2]
	assert.Equal(t, "https://cid-1.ipfs.test/", minted.TokenURI)
	assert.Equal(t, "1500000000000000000", minted.Price.String())
}

func TestCreate_EmptyFieldsSkipChain(t *testing.T) {
	full := CreateInput{Name: "n", Price: "1", Image: "i", Description: "d"}
	cases := map[string]func(*CreateInput){
		"name":        func(in *CreateInput) { in.Name = "" },
		"price":       func(in *CreateInput) { in.Price = "" },
		"image":       func(in *CreateInput) { in.Image = " " },
		"description": func(in *CreateInput) { in.Description = "" },
	}
	for field, blank := range cases {
		t.Run(field, func(t *testing.T) {
			g, chain, store := newGateway()
			in := full
			blank(&in)

			_, err := g.Create(context.Background(), contracttest.Signer(alice), in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, store.docs)
			assert.Empty(t, chain.Writes())
			assert.Len(t, chain.Wines, 2)
		})
	}
}

func TestCreate_BadPriceUploadsNothing(t *testing.T) {
	g, chain, store := newGateway()
	_, err := g.Create(context.Background(), contracttest.Signer(alice), CreateInput{
		Name: "n", Price: "12abc", Image: "i", Description: "d",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, store.docs)
	assert.Empty(t, chain.Writes())
}

func TestCreate_ErrorKinds(t *testing.T) {
	in := CreateInput{Name: "n", Price: "1", Image: "i", Description: "d"}

	g, _, store := newGateway()
	store.putErr = errors.New("503 from storage")
	_, err := g.Create(context.Background(), contracttest.Signer(alice), in)
	assert.ErrorIs(t, err, ErrUpload)
	assert.NotErrorIs(t, err, ErrChainCall)

	g, chain, _ := newGateway()
	chain.WriteErr = contract.ErrReverted
	_, err = g.Create(context.Background(), contracttest.Signer(alice), in)
	assert.ErrorIs(t, err, ErrChainCall)
	assert.ErrorIs(t, err, contract.ErrReverted)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "create", opErr.Op)
	assert.Equal(t, ErrChainCall, Kind(err))
}

func TestBuy_SendsPriceReadAtCallTime(t *testing.T) {
	g, chain, _ := newGateway()
	ctx := context.Background()

	listed, err := g.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, listed[0].Price.Cmp(ether(5)))

	chain.SetPrice(0, ether(7))

	_, err = g.Buy(ctx, contracttest.Signer(bob), 0)
	require.NoError(t, err)

	writes := chain.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "buyWine", writes[0].Method)
	assert.Equal(t, 0, writes[0].Value.Cmp(ether(7)))
}

func TestBuy_ReadFailureIsChainCall(t *testing.T) {
	g, chain, _ := newGateway()
	chain.WineErr = map[uint64]error{0: contracttest.ErrBoom}

	_, err := g.Buy(context.Background(), contracttest.Signer(bob), 0)
	assert.ErrorIs(t, err, ErrChainCall)
	assert.Empty(t, chain.Writes())
}

func TestGift_NoLocalAddressValidation(t *testing.T) {
	g, chain, _ := newGateway()

	_, err := g.Gift(context.Background(), contracttest.Signer(alice), 0, "not-an-address")
	require.ErrorIs(t, err, ErrChainCall)
	assert.ErrorIs(t, err, contract.ErrInvalidRecipient)

	_, err = g.Gift(context.Background(), contracttest.Signer(alice), 0, strings.ToLower(bob))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(bob), common.HexToAddress(chain.Wines[0].Holder))
}

func TestUploadImage(t *testing.T) {
	g, _, store := newGateway()

	up, err := g.UploadImage(context.Background(), "label.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cid-1.ipfs.test/", up.URL)
	assert.Equal(t, "png", store.files["label.png"])

	_, err = g.UploadImage(context.Background(), "", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContractOwnerAndOwners(t *testing.T) {
	g, chain, _ := newGateway()

	owner, err := g.ContractOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.Creator, owner)

	owners, err := g.Owners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{alice, bob}, owners)
}

func TestParseEther(t *testing.T) {
	cases := map[string]string{
		"5":                    "5000000000000000000",
		"0.000000000000000001": "1",
		" 2.25 ":               "2250000000000000000",
		"0":                    "0",
	}
	for in, want := range cases {
		got, err := ParseEther(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}

	for _, bad := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		_, err := ParseEther(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "1.5", FormatEther(big.NewInt(1_500_000_000_000_000_000)))
	assert.Equal(t, "0", FormatEther(nil))
}
