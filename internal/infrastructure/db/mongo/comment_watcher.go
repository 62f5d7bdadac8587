package mongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

const watchBuffer = 64

// CommentWatcher opens change streams on the comments collection, filtered
// to insert operations for one article. Change streams are at-least-once:
// after a resume the same insert may be observed again, so consumers
// deduplicate by comment id.
type CommentWatcher struct {
	col *mongo.Collection
}

func NewCommentWatcher(db *mongo.Database) *CommentWatcher {
	return &CommentWatcher{col: db.Collection(collectionComments)}
}

// Watch starts a change-stream subscription for the article's inserts.
func (w *CommentWatcher) Watch(ctx context.Context, articleID string) (ports.CommentSubscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: "insert"},
			{Key: "fullDocument.article_id", Value: articleID},
		}}},
	}

	streamCtx, cancel := context.WithCancel(ctx)
	cs, err := w.col.Watch(streamCtx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &changeStreamSubscription{
		cs:     cs,
		cancel: cancel,
		events: make(chan domain.Comment, watchBuffer),
	}
	go sub.pump(streamCtx)
	return sub, nil
}

type changeStreamSubscription struct {
	cs     *mongo.ChangeStream
	cancel context.CancelFunc

	events chan domain.Comment

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// pump drains the change stream into the events channel until the stream
// ends or the subscription is closed.
func (s *changeStreamSubscription) pump(ctx context.Context) {
	defer close(s.events)
	defer s.cs.Close(context.Background())

	for s.cs.Next(ctx) {
		var event struct {
			FullDocument domain.Comment `bson:"fullDocument"`
		}
		if err := s.cs.Decode(&event); err != nil {
			s.setErr(err)
			return
		}
		select {
		case s.events <- event.FullDocument:
		case <-ctx.Done():
			return
		}
	}

	// Next returning false with a nil context error means the stream failed.
	if ctx.Err() == nil {
		s.setErr(s.cs.Err())
	}
}

func (s *changeStreamSubscription) Events() <-chan domain.Comment {
	return s.events
}

func (s *changeStreamSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the stream context; the pump goroutine closes the change
// stream and the events channel. Safe to call multiple times.
func (s *changeStreamSubscription) Close(_ context.Context) error {
	s.closeOnce.Do(s.cancel)
	return nil
}

func (s *changeStreamSubscription) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
