package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"winery-backend/internal/domain"
	"winery-backend/internal/metrics"
)

// List assembles every listing in on-chain index order. Each index is fetched by its own
// goroutine writing into its own slot, so completion order does not matter.
//
// A failed record or tokenURI read fails the whole list. A failed owner lookup leaves Owner
// empty and a missing metadata document sets MetadataMissing; both are only logged.
func (g *Gateway) List(ctx context.Context) ([]domain.Listing, error) {
	const op = "list"
	start := time.Now()

	count, err := g.Chain.WineLength(ctx)
	if err != nil {
		return nil, g.fail(op, ErrChainCall, err)
	}
	if count == 0 {
		log.Info().Msg("no wines listed yet")
		return []domain.Listing{}, nil
	}
	if count > MaxListings {
		return nil, g.fail(op, ErrChainCall, fmt.Errorf("getWineLength returned %d, above the %d limit", count, MaxListings))
	}

	results := make([]domain.Listing, count)
	eg, egCtx := errgroup.WithContext(ctx)
	if g.Concurrency > 0 {
		eg.SetLimit(g.Concurrency)
	}
	for i := uint64(0); i < count; i++ {
		i := i
		eg.Go(func() error {
			l, err := g.assemble(egCtx, i, false)
			if err != nil {
				return err
			}
			results[i] = *l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, g.fail(op, ErrChainCall, err)
	}

	metrics.RecordRefresh(len(results), time.Since(start))
	return results, nil
}

// Get assembles a single listing. Unlike List, a missing metadata document is an error.
func (g *Gateway) Get(ctx context.Context, id uint64) (*domain.Listing, error) {
	l, err := g.assemble(ctx, id, true)
	if err != nil {
		kind := ErrChainCall
		if errors.Is(err, errMetadata) {
			kind = ErrMetadataUnavailable
		}
		return nil, g.fail("get", kind, err)
	}
	return l, nil
}

var errMetadata = errors.New("metadata")

// MaxListings bounds the count read from the contract before anything is allocated for it.
const MaxListings = 100_000

func (g *Gateway) assemble(ctx context.Context, i uint64, strict bool) (*domain.Listing, error) {
	wine, err := g.Chain.Wine(ctx, i)
	if err != nil {
		return nil, fmt.Errorf("getWine(%d): %w", i, err)
	}
	uri, err := g.Chain.TokenURI(ctx, i)
	if err != nil {
		return nil, fmt.Errorf("tokenURI(%d): %w", i, err)
	}

	l := &domain.Listing{
		Index:  i,
		WineID: i,
		Price:  wine.Price,
		Sold:   wine.Sold,
	}

	owner, err := g.Chain.OwnerOf(ctx, i)
	if err != nil {
		log.Warn().Err(err).Uint64("wine_id", i).Msg("owner lookup failed")
	} else {
		l.Owner = owner
	}

	doc, err := g.Fetcher.Fetch(ctx, uri)
	if err != nil {
		if strict {
			return nil, fmt.Errorf("%w (%d): %w", errMetadata, i, err)
		}
		log.Warn().Err(err).Uint64("wine_id", i).Str("uri", uri).Msg("metadata unavailable")
		l.MetadataMissing = true
		return l, nil
	}
	l.Name = doc.Name
	l.Image = doc.Image
	l.Description = doc.Description
	return l, nil
}
