package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storefront/internal/platform/metrics"
	"storefront/internal/realtime"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

// Broadcaster is the event seam. The realtime hub satisfies it; publishing is
// fire-and-forget, so a write never fails because fan-out did.
type Broadcaster interface {
	Publish(kind realtime.Kind, payload any, scope realtime.Scope)
}

// Service owns catalog writes and the events they emit. The write completes
// first; the event is a side effect of a committed change.
type Service struct {
	store   Store
	events  Broadcaster
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, events Broadcaster, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, events: events, log: log, metrics: m}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list products", err)
	}
	return products, nil
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Product{}, dErrors.New(dErrors.CodeConflict, "product already exists")
		}
		return Product{}, dErrors.Wrap(dErrors.CodeInternal, "create product", err)
	}
	if s.metrics != nil {
		s.metrics.ProductsWritten.Inc()
	}
	s.events.Publish(realtime.KindProductCreated, p, realtime.Broadcast())
	return p, nil
}

func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Product{}, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return Product{}, dErrors.Wrap(dErrors.CodeInternal, "update product", err)
	}
	if s.metrics != nil {
		s.metrics.ProductsWritten.Inc()
	}
	s.events.Publish(realtime.KindProductUpdated, p, realtime.Broadcast())
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "delete product", err)
	}
	if s.metrics != nil {
		s.metrics.ProductsWritten.Inc()
	}
	s.events.Publish(realtime.KindProductDeleted, id, realtime.Broadcast())
	return nil
}

func validate(p Product) error {
	if p.ID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "product id must be positive")
	}
	if strings.TrimSpace(p.Title) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "product title is required")
	}
	if p.Price < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "product price must not be negative")
	}
	return nil
}
