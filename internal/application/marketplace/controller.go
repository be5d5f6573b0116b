// Package marketplace owns the listing set shown to users: it refreshes it from the
// gateway, dispatches create, buy and gift actions and records them in the event ledger.
package marketplace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"winery-backend/internal/application/contract"
	"winery-backend/internal/application/gateway"
	"winery-backend/internal/domain"
)

// Gateway is the part of gateway.Gateway the controller drives.
type Gateway interface {
	List(ctx context.Context) ([]domain.Listing, error)
	Create(ctx context.Context, s contract.Signer, in gateway.CreateInput) (string, error)
	Buy(ctx context.Context, s contract.Signer, id uint64) (string, error)
	Gift(ctx context.Context, s contract.Signer, id uint64, recipient string) (string, error)
}

// EventRecorder stores confirmed actions. *EventService satisfies it.
type EventRecorder interface {
	Record(ctx context.Context, eventType string, wineID *uint64, txHash, actor string, data map[string]interface{}) (*domain.WineEvent, error)
}

// State is a copy of the controller state.
type State struct {
	Listings    []domain.Listing `json:"listings"`
	Loading     bool             `json:"loading"`
	Identity    string           `json:"identity"`
	RefreshedAt *time.Time       `json:"refreshed_at"`
	LastError   string           `json:"last_error,omitempty"`
}

// Controller holds the listing set. The set is only ever replaced as a whole, and
// loading is true while any refresh or action is in flight.
type Controller struct {
	gw        Gateway
	snapshots SnapshotStore
	events    EventRecorder

	mu          sync.Mutex
	listings    []domain.Listing
	identity    string
	inFlight    int
	refreshedAt time.Time
	lastErr     string
	started     uint64 // refreshes started
	applied     uint64 // sequence number of the refresh currently shown

	persistMu sync.Mutex
	persisted uint64
}

// NewController builds a controller. snapshots and events may be nil.
func NewController(gw Gateway, snapshots SnapshotStore, events EventRecorder) *Controller {
	return &Controller{gw: gw, snapshots: snapshots, events: events, listings: []domain.Listing{}}
}

// State returns a snapshot copy safe to serialize.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Listings:  append([]domain.Listing(nil), c.listings...),
		Loading:   c.inFlight > 0,
		Identity:  c.identity,
		LastError: c.lastErr,
	}
	if st.Listings == nil {
		st.Listings = []domain.Listing{}
	}
	if !c.refreshedAt.IsZero() {
		t := c.refreshedAt
		st.RefreshedAt = &t
	}
	return st
}

// Restore loads the persisted snapshot, unless a refresh already landed.
func (c *Controller) Restore(ctx context.Context) error {
	if c.snapshots == nil {
		return nil
	}
	listings, err := c.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied == 0 {
		c.listings = listings
	}
	log.Info().Int("listings", len(listings)).Msg("listing snapshot restored")
	return nil
}

// SetIdentity records the connected wallet. A new non-empty identity triggers a refresh.
func (c *Controller) SetIdentity(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	c.mu.Lock()
	changed := !strings.EqualFold(address, c.identity)
	c.identity = address
	c.mu.Unlock()

	if !changed || address == "" {
		return nil
	}
	_, err := c.Refresh(ctx)
	return err
}

// Refresh re-aggregates the whole listing set. On failure the previous set stays in place.
// Results apply in start order: an older refresh finishing late is discarded.
func (c *Controller) Refresh(ctx context.Context) ([]domain.Listing, error) {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.inFlight++
	c.mu.Unlock()

	listings, err := c.gw.List(ctx)

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		// A failure older than the set on display says nothing about it.
		if seq >= c.applied {
			c.lastErr = err.Error()
		}
		current := append([]domain.Listing(nil), c.listings...)
		c.mu.Unlock()
		log.Error().Err(err).Uint64("refresh", seq).Msg("listing refresh failed, keeping previous set")
		return current, err
	}
	if seq < c.applied {
		current := append([]domain.Listing(nil), c.listings...)
		c.mu.Unlock()
		log.Debug().Uint64("refresh", seq).Msg("stale refresh discarded")
		return current, nil
	}
	c.applied = seq
	c.listings = listings
	c.refreshedAt = time.Now().UTC()
	c.lastErr = ""
	c.mu.Unlock()

	c.persist(ctx, seq, listings)
	return append([]domain.Listing(nil), listings...), nil
}

func (c *Controller) persist(ctx context.Context, seq uint64, listings []domain.Listing) {
	if c.snapshots == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if seq < c.persisted {
		return
	}
	if err := c.snapshots.Replace(ctx, listings); err != nil {
		log.Error().Err(err).Msg("listing snapshot persist failed")
		return
	}
	c.persisted = seq
}

// Create mints a wine, records it and refreshes.
func (c *Controller) Create(ctx context.Context, s contract.Signer, in gateway.CreateInput) (string, error) {
	return c.mutate(ctx, func() (string, error) {
		return c.gw.Create(ctx, s, in)
	}, domain.WineEventCreated, nil, s.Address(), map[string]interface{}{
		"name":        in.Name,
		"price":       in.Price,
		"image":       in.Image,
		"description": in.Description,
	})
}

// Buy purchases wine id, records it and refreshes.
func (c *Controller) Buy(ctx context.Context, s contract.Signer, id uint64) (string, error) {
	return c.mutate(ctx, func() (string, error) {
		return c.gw.Buy(ctx, s, id)
	}, domain.WineEventPurchased, &id, s.Address(), nil)
}

// Gift transfers wine id to recipient, records it and refreshes.
func (c *Controller) Gift(ctx context.Context, s contract.Signer, id uint64, recipient string) (string, error) {
	return c.mutate(ctx, func() (string, error) {
		return c.gw.Gift(ctx, s, id, recipient)
	}, domain.WineEventGifted, &id, s.Address(), map[string]interface{}{"to": recipient})
}

// mutate runs action, records it and refreshes. Loading stays set until the refresh
// is done. A failed refresh after a confirmed transaction is not an action failure:
// it is logged and left in State.LastError.
func (c *Controller) mutate(ctx context.Context, action func() (string, error), eventType string, wineID *uint64, actor string, data map[string]interface{}) (string, error) {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	tx, err := action()
	if err != nil {
		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()
		return "", err
	}

	if c.events != nil {
		if _, err := c.events.Record(ctx, eventType, wineID, tx, actor, data); err != nil {
			log.Error().Err(err).Str("tx", tx).Str("event_type", eventType).Msg("wine event not recorded")
		}
	}
	_, _ = c.Refresh(ctx)
	return tx, nil
}
