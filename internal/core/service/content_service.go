package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// ContentService mediates CRUD for one content entity (projects or articles)
// and maintains an in-memory ordered cache of the admin listing. The store
// is the single source of truth: after create and update the cache is always
// re-derived by a full list, never patched in place; delete is the one
// optimistic subtraction.
type ContentService[T domain.Record[T]] struct {
	repo   ports.ContentRepository[T]
	entity string
	// check validates a full record before any store write. A check failure
	// means no store call is made.
	check func(T) error
	// onDelete runs after a successful store delete (comment cascade for
	// articles). Failures are logged, not propagated: the record is gone.
	onDelete func(ctx context.Context, id string) error
	log      zerolog.Logger

	mu     sync.RWMutex
	cache  []T
	closed bool
}

// NewProjectService builds the content service for projects.
func NewProjectService(repo ports.ContentRepository[domain.Project], check func(domain.Project) error, log zerolog.Logger) *ContentService[domain.Project] {
	return &ContentService[domain.Project]{
		repo:   repo,
		entity: "project",
		check:  check,
		log:    log,
	}
}

// NewArticleService builds the content service for articles. deleteComments
// implements the comment cascade on article delete.
func NewArticleService(
	repo ports.ContentRepository[domain.Article],
	check func(domain.Article) error,
	deleteComments func(ctx context.Context, articleID string) error,
	log zerolog.Logger,
) *ContentService[domain.Article] {
	return &ContentService[domain.Article]{
		repo:     repo,
		entity:   "article",
		check:    check,
		onDelete: deleteComments,
		log:      log,
	}
}

// List fetches all records ordered by ascending sort order and replaces the
// cache. On store failure the prior cache is left intact.
func (s *ContentService[T]) List(ctx context.Context) ([]T, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("entity", s.entity).Msg("list failed, keeping prior cache")
		return nil, fmt.Errorf("list %s: %w", s.entity, err)
	}

	s.mu.Lock()
	if !s.closed {
		s.cache = records
	}
	s.mu.Unlock()

	return s.snapshot(), nil
}

// ListPublished returns only published records for the public site. It reads
// the store directly and does not touch the admin cache.
func (s *ContentService[T]) ListPublished(ctx context.Context) ([]T, error) {
	records, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published %s: %w", s.entity, err)
	}
	return records, nil
}

// Cached returns a copy of the current cache without hitting the store.
func (s *ContentService[T]) Cached() []T {
	return s.snapshot()
}

// Get retrieves a single record from the store.
func (s *ContentService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the draft, stamps identity and timestamps, inserts it,
// and refreshes the cache from the store.
func (s *ContentService[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := s.check(draft); err != nil {
		return zero, err
	}

	record := draft.Stamped(uuid.NewString(), time.Now().UTC())
	if err := s.repo.Insert(ctx, record); err != nil {
		s.log.Error().Err(err).Str("entity", s.entity).Msg("create failed")
		return zero, fmt.Errorf("create %s: %w", s.entity, err)
	}

	s.log.Info().Str("entity", s.entity).Str("id", record.Key()).Msg("record created")
	s.refresh(ctx)
	return record, nil
}

// Update loads the current record, applies the patch, validates the merged
// result, writes it, and refreshes the cache. A validation failure makes no
// store call; a store failure leaves the cache untouched.
func (s *ContentService[T]) Update(ctx context.Context, id string, apply func(T) T) (T, error) {
	var zero T

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", s.entity, err)
	}

	merged := apply(current).Touched(time.Now().UTC())
	if err := s.check(merged); err != nil {
		return zero, err
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		s.log.Error().Err(err).Str("entity", s.entity).Str("id", id).Msg("update failed")
		return zero, fmt.Errorf("update %s: %w", s.entity, err)
	}

	s.log.Info().Str("entity", s.entity).Str("id", id).Msg("record updated")
	s.refresh(ctx)
	return merged, nil
}

// Delete removes the record from the store, runs the cascade hook, and drops
// the record from the cache optimistically (a pure subtraction needs no
// refetch). Confirmation is the caller's concern; Delete is only ever invoked
// after it.
func (s *ContentService[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.entity, err)
	}

	if s.onDelete != nil {
		if err := s.onDelete(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("entity", s.entity).Str("id", id).Msg("delete cascade failed")
		}
	}

	s.mu.Lock()
	if !s.closed {
		kept := s.cache[:0:0]
		for _, r := range s.cache {
			if r.Key() != id {
				kept = append(kept, r)
			}
		}
		s.cache = kept
	}
	s.mu.Unlock()

	s.log.Info().Str("entity", s.entity).Str("id", id).Msg("record deleted")
	return nil
}

// Close marks the service as torn down. In-flight operation results are
// discarded rather than applied to the stale cache.
func (s *ContentService[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()
}

// refresh re-derives the cache after a successful mutation. The mutation
// already succeeded, so a failed refetch only leaves the cache one step
// behind the store; it is logged and not propagated.
func (s *ContentService[T]) refresh(ctx context.Context) {
	if _, err := s.List(ctx); err != nil {
		s.log.Warn().Err(err).Str("entity", s.entity).Msg("cache refresh failed after mutation")
	}
}

func (s *ContentService[T]) snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.cache))
	copy(out, s.cache)
	return out
}
