package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// CommentDedup abstracts the cross-restart duplicate marker (Redis). The
// in-memory reducer alone guarantees the cache invariant; the marker only
// widens the window across stream restarts.
type CommentDedup interface {
	Seen(ctx context.Context, commentID string) (bool, error)
	Mark(ctx context.Context, commentID string) error
}

// CommentStream maintains a live, append-ordered view of one article's
// comments: an initial snapshot merged with change-stream insert events,
// deduplicated by comment id. The change-stream subscription is the stream's
// one long-lived resource; it is released unconditionally on Stop.
type CommentStream struct {
	articleID string
	repo      ports.CommentRepository
	watcher   ports.CommentWatcher
	dedup     CommentDedup
	// publish is called for each newly merged comment (websocket fan-out).
	publish func(domain.Comment)
	log     zerolog.Logger

	mu       sync.Mutex
	comments []domain.Comment
	sub      ports.CommentSubscription
	started  bool
	closed   bool
	done     chan struct{}
}

func NewCommentStream(
	articleID string,
	repo ports.CommentRepository,
	watcher ports.CommentWatcher,
	dedup CommentDedup,
	publish func(domain.Comment),
	log zerolog.Logger,
) *CommentStream {
	return &CommentStream{
		articleID: articleID,
		repo:      repo,
		watcher:   watcher,
		dedup:     dedup,
		publish:   publish,
		log:       log,
	}
}

// Start fetches the initial snapshot (newest first) and opens the single
// insert-event subscription for the article. Calling Start twice is an error.
func (s *CommentStream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStreamClosed
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("comment stream for article %s already started", s.articleID)
	}
	s.started = true
	s.mu.Unlock()

	snapshot, err := s.repo.ListByArticle(ctx, s.articleID)
	if err != nil {
		return fmt.Errorf("comment snapshot: %w", err)
	}

	sub, err := s.watcher.Watch(ctx, s.articleID)
	if err != nil {
		return fmt.Errorf("comment subscription: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		// Torn down between Start and here: release immediately.
		s.mu.Unlock()
		_ = sub.Close(ctx)
		return domain.ErrStreamClosed
	}
	s.comments = snapshot
	s.sub = sub
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx, sub)
	return nil
}

// run consumes insert events until the subscription ends or ctx is cancelled.
func (s *CommentStream) run(ctx context.Context, sub ports.CommentSubscription) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case comment, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					s.log.Error().Err(err).Str("article_id", s.articleID).Msg("comment subscription ended")
				}
				return
			}
			s.ingest(ctx, comment)
		}
	}
}

// ingest merges one delivered event into the cache. Duplicate deliveries
// (at-least-once channel) are dropped by id; the in-memory check runs first,
// so a duplicate already in the cache costs no store round trip.
func (s *CommentStream) ingest(ctx context.Context, comment domain.Comment) {
	if s.contains(comment.ID) {
		s.log.Debug().Str("comment_id", comment.ID).Msg("duplicate comment event skipped")
		return
	}

	// The marker widens dedup across change-stream restarts only. It is
	// written after the local merge and assumes a single serving process.
	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, comment.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("comment_id", comment.ID).Msg("dedup check failed, merging anyway")
		} else if seen {
			s.log.Debug().Str("comment_id", comment.ID).Msg("duplicate comment event skipped")
			return
		}
	}

	s.mu.Lock()
	if s.closed {
		// Result of an in-flight delivery after teardown is discarded.
		s.mu.Unlock()
		return
	}
	merged, fresh := prependIfAbsent(s.comments, comment)
	s.comments = merged
	s.mu.Unlock()

	if !fresh {
		return
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, comment.ID); err != nil {
			s.log.Warn().Err(err).Str("comment_id", comment.ID).Msg("failed to set dedup key")
		}
	}

	if s.publish != nil {
		s.publish(comment)
	}
}

// Submit validates and inserts a new comment. The inserted record is
// deliberately not added to the local cache: it arrives through the
// live-merge path, so the submit path can never race a second copy in.
func (s *CommentStream) Submit(ctx context.Context, form forms.CommentForm) (*domain.Comment, error) {
	return submitComment(ctx, s.repo, s.articleID, form)
}

// Refetch re-reads the article's comments and merges them with the cache
// through the same id-keyed reducer, so a comment delivered by both paths
// keeps exactly one entry.
func (s *CommentStream) Refetch(ctx context.Context) ([]domain.Comment, error) {
	fetched, err := s.repo.ListByArticle(ctx, s.articleID)
	if err != nil {
		return nil, fmt.Errorf("comment refetch: %w", err)
	}

	s.mu.Lock()
	if !s.closed {
		s.comments = mergeByID(fetched, s.comments)
	}
	merged := s.snapshotLocked()
	s.mu.Unlock()

	return merged, nil
}

// Comments returns a copy of the cache, newest first.
func (s *CommentStream) Comments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Stop tears the stream down, releasing the subscription unconditionally.
// Safe to call multiple times and regardless of whether Start succeeded.
func (s *CommentStream) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sub := s.sub
	done := s.done
	s.mu.Unlock()

	var err error
	if sub != nil {
		err = sub.Close(ctx)
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return err
}

func (s *CommentStream) contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *CommentStream) snapshotLocked() []domain.Comment {
	out := make([]domain.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// prependIfAbsent is the live-merge reducer: it prepends c unless a comment
// with the same id is already present. The bool reports whether c was new.
func prependIfAbsent(list []domain.Comment, c domain.Comment) ([]domain.Comment, bool) {
	for _, existing := range list {
		if existing.ID == c.ID {
			return list, false
		}
	}
	merged := make([]domain.Comment, 0, len(list)+1)
	merged = append(merged, c)
	merged = append(merged, list...)
	return merged, true
}

// mergeByID folds two comment lists into one, keeping the first occurrence
// of each id and restoring newest-first order.
func mergeByID(primary, extra []domain.Comment) []domain.Comment {
	seen := make(map[string]struct{}, len(primary)+len(extra))
	merged := make([]domain.Comment, 0, len(primary)+len(extra))
	for _, list := range [2][]domain.Comment{primary, extra} {
		for _, c := range list {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// submitComment is the shared validated-insert path for the stream and the
// stateless HTTP service.
func submitComment(ctx context.Context, repo ports.CommentRepository, articleID string, form forms.CommentForm) (*domain.Comment, error) {
	parsed, err := forms.ParseComment(form)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:         uuid.NewString(),
		ArticleID:  articleID,
		AuthorName: parsed.AuthorName,
		Content:    parsed.Content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("submit comment: %w", err)
	}
	return comment, nil
}
