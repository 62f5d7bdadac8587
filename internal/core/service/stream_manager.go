package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// StreamManager hands out at most one CommentStream per article, refcounted
// by subscriber. The stream (and its store subscription) is started with the
// first subscriber and stopped with the last, so idle articles hold no
// channel handles.
type StreamManager struct {
	baseCtx context.Context
	repo    ports.CommentRepository
	watcher ports.CommentWatcher
	dedup   CommentDedup
	// publish fans a merged comment out to the article's live subscribers.
	publish func(articleID string, comment domain.Comment)
	log     zerolog.Logger

	mu      sync.Mutex
	streams map[string]*managedStream
}

type managedStream struct {
	stream *CommentStream
	refs   int
	// ready is closed once the first subscriber's Start attempt finished;
	// err carries its outcome for later subscribers.
	ready chan struct{}
	err   error
}

// NewStreamManager creates a manager whose streams live at most as long as
// baseCtx (application lifetime), not any single request.
func NewStreamManager(
	baseCtx context.Context,
	repo ports.CommentRepository,
	watcher ports.CommentWatcher,
	dedup CommentDedup,
	publish func(articleID string, comment domain.Comment),
	log zerolog.Logger,
) *StreamManager {
	return &StreamManager{
		baseCtx: baseCtx,
		repo:    repo,
		watcher: watcher,
		dedup:   dedup,
		publish: publish,
		log:     log,
		streams: make(map[string]*managedStream),
	}
}

// Acquire returns the article's live stream, starting it if this is the
// first subscriber. The release func must be called exactly once when the
// subscriber goes away; the last release stops the stream.
//
// Start runs outside the manager lock: a slow snapshot fetch or
// change-stream open for one article must not block acquisition for every
// other article. Later subscribers for the same article wait on the pending
// entry instead of opening a second subscription.
func (m *StreamManager) Acquire(articleID string) (*CommentStream, func(), error) {
	m.mu.Lock()
	if ms, ok := m.streams[articleID]; ok {
		ms.refs++
		m.mu.Unlock()

		<-ms.ready
		if ms.err != nil {
			return nil, nil, ms.err
		}
		return ms.stream, m.releaseFunc(articleID, ms), nil
	}

	ms := &managedStream{
		stream: NewCommentStream(
			articleID,
			m.repo,
			m.watcher,
			m.dedup,
			func(c domain.Comment) {
				if m.publish != nil {
					m.publish(articleID, c)
				}
			},
			m.log,
		),
		refs:  1,
		ready: make(chan struct{}),
	}
	m.streams[articleID] = ms
	m.mu.Unlock()

	ms.err = ms.stream.Start(m.baseCtx)
	close(ms.ready)

	if ms.err != nil {
		m.mu.Lock()
		if m.streams[articleID] == ms {
			delete(m.streams, articleID)
		}
		m.mu.Unlock()
		// Release whatever Start may have acquired before failing.
		_ = ms.stream.Stop(m.baseCtx)
		return nil, nil, ms.err
	}

	m.log.Debug().Str("article_id", articleID).Msg("comment stream started")
	return ms.stream, m.releaseFunc(articleID, ms), nil
}

func (m *StreamManager) releaseFunc(articleID string, ms *managedStream) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			ms.refs--
			last := ms.refs <= 0
			if last && m.streams[articleID] == ms {
				delete(m.streams, articleID)
			}
			m.mu.Unlock()

			if last {
				if err := ms.stream.Stop(context.Background()); err != nil {
					m.log.Warn().Err(err).Str("article_id", articleID).Msg("comment stream stop failed")
				}
				m.log.Debug().Str("article_id", articleID).Msg("comment stream stopped")
			}
		})
	}
}

// Shutdown stops every active stream. Used on application teardown.
func (m *StreamManager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	streams := m.streams
	m.streams = make(map[string]*managedStream)
	m.mu.Unlock()

	for articleID, ms := range streams {
		if err := ms.stream.Stop(ctx); err != nil {
			m.log.Warn().Err(err).Str("article_id", articleID).Msg("comment stream stop failed")
		}
	}
}
