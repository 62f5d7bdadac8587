package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// CommentDedup marks delivered comment ids so a change-stream resume does
// not replay an insert into the live merge. Key format: comment:<id>
type CommentDedup struct {
	client *redis.Client
}

// NewCommentDedup creates a CommentDedup wrapping the given Redis client.
func NewCommentDedup(client *redis.Client) *CommentDedup {
	return &CommentDedup{client: client}
}

// Seen reports whether this comment id has already been merged.
func (d *CommentDedup) Seen(ctx context.Context, commentID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(commentID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this comment id has been merged (expires after dedupTTL).
func (d *CommentDedup) Mark(ctx context.Context, commentID string) error {
	return d.client.Set(ctx, d.key(commentID), "1", dedupTTL).Err()
}

func (d *CommentDedup) key(commentID string) string {
	return "comment:" + commentID
}
