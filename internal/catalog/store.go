package catalog

import "context"

// Store is the persistence seam for the catalog. Implementations return
// sentinel errors (pkg/platform/sentinel) for infrastructure facts.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id int64) error
}
