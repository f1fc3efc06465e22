// Package purchase records checkouts and notifies the admin room about each
// new one.
package purchase

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/platform/metrics"
	"storefront/internal/realtime"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

// Item is a single line of a checkout. The flat shape (purchase ID on every
// line) matches what the frontend submits.
type Item struct {
	PurchaseID string  `json:"purchaseId,omitempty"`
	UserID     string  `json:"userid"`
	ProductID  string  `json:"id"`
	Title      string  `json:"title"`
	Size       string  `json:"size"`
	Quantity   int     `json:"quantity"`
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
}

// Purchase groups items by purchase ID.
type Purchase struct {
	PurchaseID string `json:"purchaseId"`
	Items      []Item `json:"items"`
}

// Store is the persistence seam for purchases.
type Store interface {
	List(ctx context.Context) ([]Purchase, error)
	Create(ctx context.Context, purchases []Purchase) error
	Update(ctx context.Context, p Purchase) error
	Delete(ctx context.Context, purchaseID string) error
}

// Broadcaster is the event seam; the realtime hub satisfies it.
type Broadcaster interface {
	Publish(kind realtime.Kind, payload any, scope realtime.Scope)
}

// Service groups submitted items into purchases, persists them, and emits
// one purchase-created event per purchase to the admin room.
type Service struct {
	store   Store
	events  Broadcaster
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, events Broadcaster, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, events: events, log: log, metrics: m}
}

func (s *Service) List(ctx context.Context) ([]Purchase, error) {
	purchases, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list purchases", err)
	}
	return purchases, nil
}

// Create accepts the flat item array submitted at checkout.
func (s *Service) Create(ctx context.Context, items []Item) ([]Purchase, error) {
	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no purchase items submitted")
	}

	purchases := group(items)
	for _, p := range purchases {
		if p.PurchaseID == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "purchase items need a purchaseId")
		}
	}

	if err := s.store.Create(ctx, purchases); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "purchase already recorded")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "create purchases", err)
	}

	for _, p := range purchases {
		if s.metrics != nil {
			s.metrics.PurchasesCreated.Inc()
		}
		s.events.Publish(realtime.KindPurchaseCreated, p, realtime.ToAdmins())
	}
	return purchases, nil
}

func (s *Service) Update(ctx context.Context, p Purchase) (Purchase, error) {
	if p.PurchaseID == "" {
		return Purchase{}, dErrors.New(dErrors.CodeBadRequest, "purchaseId is required")
	}
	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Purchase{}, dErrors.New(dErrors.CodeNotFound, "purchase not found")
		}
		return Purchase{}, dErrors.Wrap(dErrors.CodeInternal, "update purchase", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, purchaseID string) error {
	if purchaseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "purchaseId is required")
	}
	if err := s.store.Delete(ctx, purchaseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "purchase not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "delete purchase", err)
	}
	return nil
}

// group buckets flat items by purchase ID, preserving submit order of the
// purchases and of the items within each.
func group(items []Item) []Purchase {
	order := make([]string, 0, 1)
	byID := make(map[string][]Item)
	for _, item := range items {
		id := item.PurchaseID
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		item.PurchaseID = ""
		byID[id] = append(byID[id], item)
	}

	out := make([]Purchase, 0, len(order))
	for _, id := range order {
		out = append(out, Purchase{PurchaseID: id, Items: byID[id]})
	}
	return out
}
