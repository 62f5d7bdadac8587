package ports

import (
	"context"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
)

// ContentRepository defines persistence operations shared by projects and
// articles. List results are ordered by ascending sort order (ties broken by
// creation time) so callers never re-sort.
type ContentRepository[T domain.Entity] interface {
	List(ctx context.Context) ([]T, error)
	// ListPublished returns only records with the published flag set, in the
	// same order as List. This is the public read path.
	ListPublished(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, record T) error
	// Update replaces the stored record's mutable fields; created_at is
	// preserved by the implementation.
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
}
