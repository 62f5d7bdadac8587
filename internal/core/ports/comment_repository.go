package ports

import (
	"context"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
)

// CommentRepository persists article comments. There is no update operation:
// comment rows are immutable after insert.
type CommentRepository interface {
	// ListByArticle returns all comments for an article, newest first.
	ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error)
	Insert(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	// DeleteByArticle removes every comment of an article (cascade on
	// article delete).
	DeleteByArticle(ctx context.Context, articleID string) error
}

// CommentSubscription is a live insert-event channel for one article. Events
// are delivered at least once; consumers must deduplicate by comment id.
type CommentSubscription interface {
	// Events yields inserted comments until the subscription is closed. The
	// channel is closed when the underlying stream ends for any reason.
	Events() <-chan domain.Comment
	// Err reports why the event channel closed, nil on clean shutdown.
	Err() error
	Close(ctx context.Context) error
}

// CommentWatcher opens change-stream subscriptions on the comments table.
type CommentWatcher interface {
	Watch(ctx context.Context, articleID string) (CommentSubscription, error)
}
