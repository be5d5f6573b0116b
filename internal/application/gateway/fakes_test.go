package gateway

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"

	"winery-backend/internal/application/contract/contracttest"
	"winery-backend/internal/application/metadata"
	"winery-backend/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	docs    []domain.MetadataDocument
	files   map[string]string
	putErr  error
	counter int
}

func (s *fakeStore) PutJSON(_ context.Context, doc domain.MetadataDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	s.docs = append(s.docs, doc)
	s.counter++
	return fmt.Sprintf("cid-%d", s.counter), nil
}

func (s *fakeStore) PutFile(_ context.Context, name, _ string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	b, _ := io.ReadAll(r)
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[name] = string(b)
	s.counter++
	return fmt.Sprintf("cid-%d", s.counter), nil
}

func (s *fakeStore) URL(cid string) string { return "https://" + cid + ".ipfs.test/" }

type fakeFetcher struct {
	mu   sync.Mutex
	docs map[string]domain.MetadataDocument
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*domain.MetadataDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", metadata.ErrUnavailable, url)
	}
	return &doc, nil
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

const (
	alice = "0x000000000000000000000000000000000000A11C"
	bob   = "0x0000000000000000000000000000000000000B0B"
)

// twoWines is the Merlot/Cabernet marketplace: the Cabernet has been sold.
func twoWines() (*contracttest.Winery, *fakeFetcher) {
	chain := contracttest.New(
		contracttest.Wine{
			WineRecord: domain.WineRecord{Owner: alice, Name: "Merlot 2020", Price: ether(5)},
			TokenURI:   "https://merlot.test/",
			Holder:     alice,
		},
		contracttest.Wine{
			WineRecord: domain.WineRecord{Owner: bob, Name: "Cabernet 2019", Price: ether(3), Sold: true},
			TokenURI:   "https://cabernet.test/",
			Holder:     bob,
		},
	)
	fetcher := &fakeFetcher{docs: map[string]domain.MetadataDocument{
		"https://merlot.test/":   {Name: "Merlot 2020", Image: "https://img/merlot", Description: "soft"},
		"https://cabernet.test/": {Name: "Cabernet 2019", Image: "https://img/cab", Description: "bold"},
	}}
	return chain, fetcher
}
