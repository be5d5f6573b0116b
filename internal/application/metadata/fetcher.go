package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"winery-backend/internal/domain"
	"winery-backend/internal/metrics"
)

var ErrUnavailable = errors.New("metadata document unavailable")

const cachePrefix = "metadata:"

// maxDocumentSize bounds how much of a gateway response is read.
const maxDocumentSize = 1 << 20

// Fetcher reads metadata documents from their gateway URL. Documents never change once
// written, so a Redis cache (optional) keeps them for TTL (0 = no expiry).
type Fetcher struct {
	Client *http.Client
	Cache  *redis.Client
	TTL    time.Duration
}

// Fetch returns the document at docURL, or an error wrapping ErrUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, docURL string) (*domain.MetadataDocument, error) {
	if docURL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrUnavailable)
	}
	if doc, ok := f.cached(ctx, docURL); ok {
		metrics.RecordMetadataFetch("cache", true)
		return doc, nil
	}

	raw, doc, err := f.get(ctx, docURL)
	metrics.RecordMetadataFetch("gateway", err == nil)
	if err != nil {
		return nil, err
	}
	if f.Cache != nil {
		if err := f.Cache.Set(ctx, cachePrefix+docURL, raw, f.TTL).Err(); err != nil {
			log.Warn().Err(err).Str("url", docURL).Msg("metadata cache write failed")
		}
	}
	return doc, nil
}

func (f *Fetcher) cached(ctx context.Context, docURL string) (*domain.MetadataDocument, bool) {
	if f.Cache == nil {
		return nil, false
	}
	b, err := f.Cache.Get(ctx, cachePrefix+docURL).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("url", docURL).Msg("metadata cache read failed")
		}
		return nil, false
	}
	var doc domain.MetadataDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (f *Fetcher) get(ctx context.Context, docURL string) ([]byte, *domain.MetadataDocument, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var doc domain.MetadataDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: not a json document: %v", ErrUnavailable, err)
	}
	return raw, &doc, nil
}
