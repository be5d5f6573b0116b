package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winery-backend/internal/application/contract/contracttest"
	"winery-backend/internal/domain"
)

func TestList_MerlotAndCabernet(t *testing.T) {
	chain, fetcher := twoWines()
	g := &Gateway{Chain: chain, Store: &fakeStore{}, Fetcher: fetcher}

	listings, err := g.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, uint64(0), listings[0].Index)
	assert.Equal(t, "Merlot 2020", listings[0].Name)
	assert.Equal(t, 0, listings[0].Price.Cmp(ether(5)))
	assert.False(t, listings[0].Sold)
	assert.Equal(t, alice, listings[0].Owner)

	assert.Equal(t, uint64(1), listings[1].WineID)
	assert.Equal(t, "Cabernet 2019", listings[1].Name)
	assert.Equal(t, 0, listings[1].Price.Cmp(ether(3)))
	assert.True(t, listings[1].Sold)
	assert.Equal(t, "bold", listings[1].Description)
}

// manyWines mints n wines named by index, each with a metadata document.
func manyWines(n int) (*contracttest.Winery, *fakeFetcher) {
	chain := contracttest.New()
	fetcher := &fakeFetcher{docs: map[string]domain.MetadataDocument{}}
	for i := 0; i < n; i++ {
		uri := fmt.Sprintf("https://wine-%d.test/", i)
		chain.Wines = append(chain.Wines, contracttest.Wine{
			WineRecord: domain.WineRecord{Owner: alice, Name: fmt.Sprint(i), Price: ether(int64(i + 1))},
			TokenURI:   uri,
			Holder:     alice,
		})
		fetcher.docs[uri] = domain.MetadataDocument{Name: fmt.Sprintf("wine %d", i)}
	}
	return chain, fetcher
}

func TestList_ReturnsExactlyCountEntries(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 33} {
		chain, fetcher := manyWines(n)
		g := &Gateway{Chain: chain, Fetcher: fetcher, Concurrency: 4}

		listings, err := g.List(context.Background())
		require.NoError(t, err, "n=%d", n)
		assert.NotNil(t, listings)
		assert.Len(t, listings, n)
	}
}

func TestList_OrderIndependentOfCompletion(t *testing.T) {
	const n = 20
	chain, fetcher := manyWines(n)
	rng := rand.New(rand.NewSource(42))
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Duration(rng.Intn(15)) * time.Millisecond
	}
	chain.Delay = func(i uint64) time.Duration { return delays[i%n] }
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	listings, err := g.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, n)
	for i, l := range listings {
		assert.Equal(t, uint64(i), l.Index)
		assert.Equal(t, fmt.Sprintf("wine %d", i), l.Name)
	}
}

func TestList_MissingMetadataIsFlagged(t *testing.T) {
	chain, fetcher := twoWines()
	delete(fetcher.docs, "https://cabernet.test/")
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	listings, err := g.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.False(t, listings[0].MetadataMissing)
	assert.True(t, listings[1].MetadataMissing)
	assert.Empty(t, listings[1].Name)
	assert.True(t, listings[1].Sold)
}

func TestList_OwnerFailureLeavesOwnerEmpty(t *testing.T) {
	chain, fetcher := twoWines()
	chain.OwnerOfErr = map[uint64]error{0: contracttest.ErrBoom}
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	listings, err := g.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings[0].Owner)
	assert.Equal(t, bob, listings[1].Owner)
}

func TestList_RecordFailureFailsList(t *testing.T) {
	chain, fetcher := twoWines()
	chain.WineErr = map[uint64]error{1: contracttest.ErrBoom}
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	listings, err := g.List(context.Background())
	assert.Nil(t, listings)
	assert.ErrorIs(t, err, ErrChainCall)
	assert.ErrorIs(t, err, contracttest.ErrBoom)
}

func TestList_CountFailure(t *testing.T) {
	chain, fetcher := twoWines()
	chain.LengthErr = contracttest.ErrBoom
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	_, err := g.List(context.Background())
	assert.ErrorIs(t, err, ErrChainCall)
}

func TestList_AbsurdCountIsChainError(t *testing.T) {
	chain, fetcher := twoWines()
	chain.Length = 1 << 40
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	_, err := g.List(context.Background())
	assert.ErrorIs(t, err, ErrChainCall)
	assert.Equal(t, 1, chain.Reads())
}

func TestGet_MissingMetadataIsAnError(t *testing.T) {
	chain, fetcher := twoWines()
	delete(fetcher.docs, "https://merlot.test/")
	g := &Gateway{Chain: chain, Fetcher: fetcher}

	_, err := g.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	l, err := g.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Cabernet 2019", l.Name)

	_, err = g.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrChainCall)
}
