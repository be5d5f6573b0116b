// Package gateway turns marketplace intents (create, buy, gift, list) into calls against
// the Winery contract and the metadata store.
package gateway

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"winery-backend/internal/application/contract"
	"winery-backend/internal/application/metadata"
	"winery-backend/internal/domain"
)

// MetadataFetcher reads a metadata document by URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.MetadataDocument, error)
}

// Gateway wires the contract binding to the metadata store. All collaborators are explicit.
type Gateway struct {
	Chain   contract.Winery
	Store   metadata.Store
	Fetcher MetadataFetcher
	// Concurrency caps the per-item fetches of List; 0 means unlimited.
	Concurrency int
}

// CreateInput is a new wine as entered by the seller. Price is in ether.
type CreateInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Create pins the metadata document and mints the wine, returning the transaction hash.
func (g *Gateway) Create(ctx context.Context, s contract.Signer, in CreateInput) (string, error) {
	const op = "create"
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || strings.TrimSpace(in.Price) == "" || in.Image == "" || in.Description == "" {
		return "", g.fail(op, ErrInvalidInput, errors.New("name, price, image and description are required"))
	}
	priceWei, err := ParseEther(in.Price)
	if err != nil {
		return "", g.fail(op, ErrInvalidInput, err)
	}

	cid, err := g.Store.PutJSON(ctx, domain.MetadataDocument{
		Name:        in.Name,
		Price:       strings.TrimSpace(in.Price),
		Image:       in.Image,
		Description: in.Description,
		Owner:       s.Address(),
	})
	if err != nil {
		return "", g.fail(op, ErrUpload, err)
	}
	url := g.Store.URL(cid)

	tx, err := g.Chain.AddWine(ctx, s, in.Name, in.Image, in.Description, url, priceWei)
	if err != nil {
		return "", g.fail(op, ErrChainCall, err)
	}
	log.Info().Str("tx", tx).Str("name", in.Name).Str("metadata_url", url).Str("seller", s.Address()).Msg("wine created")
	return tx, nil
}

// Buy re-reads the wine's price and pays exactly that amount.
func (g *Gateway) Buy(ctx context.Context, s contract.Signer, id uint64) (string, error) {
	const op = "buy"
	wine, err := g.Chain.Wine(ctx, id)
	if err != nil {
		return "", g.fail(op, ErrChainCall, err)
	}
	tx, err := g.Chain.BuyWine(ctx, s, id, wine.Price)
	if err != nil {
		return "", g.fail(op, ErrChainCall, err)
	}
	log.Info().Str("tx", tx).Uint64("wine_id", id).Str("price_wei", wine.Price.String()).Str("price_ether", FormatEther(wine.Price)).Str("buyer", s.Address()).Msg("wine purchased")
	return tx, nil
}

// Gift transfers the wine to recipient. The address is checked by the chain binding only.
func (g *Gateway) Gift(ctx context.Context, s contract.Signer, id uint64, recipient string) (string, error) {
	const op = "gift"
	tx, err := g.Chain.GiftWine(ctx, s, id, recipient)
	if err != nil {
		return "", g.fail(op, ErrChainCall, err)
	}
	log.Info().Str("tx", tx).Uint64("wine_id", id).Str("to", recipient).Str("from", s.Address()).Msg("wine gifted")
	return tx, nil
}

// ImageUpload is the result of UploadImage.
type ImageUpload struct {
	CID string `json:"cid"`
	URL string `json:"url"`
}

// UploadImage pins an image file and returns its retrievable URL.
func (g *Gateway) UploadImage(ctx context.Context, name, contentType string, r io.Reader) (*ImageUpload, error) {
	const op = "upload-image"
	if strings.TrimSpace(name) == "" {
		return nil, g.fail(op, ErrInvalidInput, errors.New("file name is required"))
	}
	cid, err := g.Store.PutFile(ctx, name, contentType, r)
	if err != nil {
		return nil, g.fail(op, ErrUpload, err)
	}
	return &ImageUpload{CID: cid, URL: g.Store.URL(cid)}, nil
}

// ContractOwner returns the contract's owner().
func (g *Gateway) ContractOwner(ctx context.Context) (string, error) {
	owner, err := g.Chain.Owner(ctx)
	if err != nil {
		return "", g.fail("contract-owner", ErrChainCall, err)
	}
	return owner, nil
}

// Owners returns getOwners().
func (g *Gateway) Owners(ctx context.Context) ([]string, error) {
	owners, err := g.Chain.Owners(ctx)
	if err != nil {
		return nil, g.fail("owners", ErrChainCall, err)
	}
	return owners, nil
}

func (g *Gateway) fail(op string, kind, err error) error {
	e := opErr(op, kind, err)
	log.Error().Err(err).Str("op", op).Str("kind", kind.Error()).Msg("gateway operation failed")
	return e
}
