package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs: repository, subscription, watcher, dedup marker
// ---------------------------------------------------------------------------

type stubCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (r *stubCommentRepo) ListByArticle(_ context.Context, articleID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Comment, 0, len(r.comments))
	// Stored oldest-first; returned newest-first like the real repo.
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].ArticleID == articleID {
			out = append(out, r.comments[i])
		}
	}
	return out, nil
}

func (r *stubCommentRepo) Insert(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.comments {
		if c.ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubCommentRepo) DeleteByArticle(_ context.Context, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0:0]
	for _, c := range r.comments {
		if c.ArticleID != articleID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}

type stubSubscription struct {
	events chan domain.Comment
	mu     sync.Mutex
	closes int
}

func newStubSubscription() *stubSubscription {
	return &stubSubscription{events: make(chan domain.Comment, 16)}
}

func (s *stubSubscription) Events() <-chan domain.Comment { return s.events }
func (s *stubSubscription) Err() error                    { return nil }

func (s *stubSubscription) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closes == 1 {
		close(s.events)
	}
	return nil
}

func (s *stubSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type stubWatcher struct {
	mu      sync.Mutex
	sub     *stubSubscription
	watches int
}

func (w *stubWatcher) Watch(context.Context, string) (ports.CommentSubscription, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watches++
	if w.sub == nil {
		w.sub = newStubSubscription()
	}
	return w.sub, nil
}

func (w *stubWatcher) watchCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watches
}

type stubDedup struct {
	mu        sync.Mutex
	keys      map[string]bool
	seenCalls int
}

func newStubDedup() *stubDedup { return &stubDedup{keys: make(map[string]bool)} }

func (d *stubDedup) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seenCalls++
	return d.keys[id], nil
}

func (d *stubDedup) seenCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seenCalls
}

func (d *stubDedup) Mark(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[id] = true
	return nil
}

func testComment(id, articleID, content string, at time.Time) domain.Comment {
	return domain.Comment{
		ID:         id,
		ArticleID:  articleID,
		AuthorName: "Jo",
		Content:    content,
		CreatedAt:  at,
	}
}

// startStream wires a stream whose publish callback signals merges, so tests
// can wait deterministically for event processing.
func startStream(t *testing.T, repo *stubCommentRepo, watcher *stubWatcher) (*CommentStream, chan domain.Comment) {
	t.Helper()
	published := make(chan domain.Comment, 16)
	stream := NewCommentStream("article-1", repo, watcher, newStubDedup(), func(c domain.Comment) {
		published <- c
	}, discardLogger)
	if err := stream.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return stream, published
}

func waitPublished(t *testing.T, ch chan domain.Comment, wantID string) {
	t.Helper()
	select {
	case c := <-ch:
		if c.ID != wantID {
			t.Fatalf("published %q, want %q", c.ID, wantID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for publish of %q", wantID)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCommentStream_DuplicateDeliveryKeepsOneEntry(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, published := startStream(t, repo, watcher)
	defer stream.Stop(context.Background())

	now := time.Now().UTC()
	a := testComment("c1", "article-1", "first comment", now)

	watcher.sub.events <- a
	waitPublished(t, published, "c1")

	// At-least-once delivery: the same event arrives again, then a second
	// comment. Once the second publish fires, the duplicate has been handled.
	watcher.sub.events <- a
	b := testComment("c2", "article-1", "second comment", now.Add(time.Second))
	watcher.sub.events <- b
	waitPublished(t, published, "c2")

	comments := stream.Comments()
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d: %v", len(comments), comments)
	}
	if comments[0].ID != "c2" || comments[1].ID != "c1" {
		t.Fatalf("expected newest first, got %v", comments)
	}
}

// A duplicate already present in the cache is resolved in memory, without a
// dedup marker lookup.
func TestCommentStream_CachedDuplicateSkipsDedupLookup(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	dedup := newStubDedup()
	published := make(chan domain.Comment, 16)
	stream := NewCommentStream("article-1", repo, watcher, dedup, func(c domain.Comment) {
		published <- c
	}, discardLogger)
	if err := stream.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer stream.Stop(context.Background())

	now := time.Now().UTC()
	a := testComment("c1", "article-1", "first comment", now)

	watcher.sub.events <- a
	waitPublished(t, published, "c1")

	watcher.sub.events <- a
	b := testComment("c2", "article-1", "second comment", now.Add(time.Second))
	watcher.sub.events <- b
	waitPublished(t, published, "c2")

	// One lookup per fresh comment; the in-cache duplicate adds none.
	if n := dedup.seenCount(); n != 2 {
		t.Fatalf("expected 2 dedup lookups, got %d", n)
	}
}

func TestCommentStream_StartLoadsSnapshot(t *testing.T) {
	repo := &stubCommentRepo{}
	now := time.Now().UTC()
	_ = repo.Insert(context.Background(), &domain.Comment{ID: "old", ArticleID: "article-1", AuthorName: "Jo", Content: "hello there", CreatedAt: now})
	watcher := &stubWatcher{}

	stream, _ := startStream(t, repo, watcher)
	defer stream.Stop(context.Background())

	comments := stream.Comments()
	if len(comments) != 1 || comments[0].ID != "old" {
		t.Fatalf("snapshot = %v", comments)
	}
	if err := stream.Start(context.Background()); err == nil {
		t.Fatalf("second start accepted")
	}
}

func TestCommentStream_RefetchMergesById(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, published := startStream(t, repo, watcher)
	defer stream.Stop(context.Background())

	now := time.Now().UTC()

	// One comment reaches the cache through the live path and also lands in
	// the store, so a refetch sees it twice.
	live := testComment("both", "article-1", "seen twice", now.Add(time.Second))
	_ = repo.Insert(context.Background(), &live)
	watcher.sub.events <- live
	waitPublished(t, published, "both")

	// Another exists only in the store (missed event).
	missed := testComment("store-only", "article-1", "missed event", now)
	_ = repo.Insert(context.Background(), &missed)

	merged, err := stream.Refetch(context.Background())
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 comments after refetch, got %v", merged)
	}
	if merged[0].ID != "both" || merged[1].ID != "store-only" {
		t.Fatalf("expected newest first, got %v", merged)
	}
}

func TestCommentStream_SubmitIsNotCachedLocally(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, _ := startStream(t, repo, watcher)
	defer stream.Stop(context.Background())

	created, err := stream.Submit(context.Background(), forms.CommentForm{
		AuthorName: "Jo",
		Content:    "a fresh comment",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID == "" || created.ArticleID != "article-1" {
		t.Fatalf("bad record: %+v", created)
	}

	// The record reaches the cache only through the live event, which the
	// stub store never emits.
	for _, c := range stream.Comments() {
		if c.ID == created.ID {
			t.Fatalf("submitted comment added to cache directly")
		}
	}
}

func TestCommentStream_SubmitRejectsInvalidForm(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, _ := startStream(t, repo, watcher)
	defer stream.Stop(context.Background())

	if _, err := stream.Submit(context.Background(), forms.CommentForm{AuthorName: "J", Content: "Hi"}); err == nil {
		t.Fatalf("invalid form accepted")
	}
	repo.mu.Lock()
	stored := len(repo.comments)
	repo.mu.Unlock()
	if stored != 0 {
		t.Fatalf("rejected comment reached the store")
	}
}

func TestCommentStream_StopReleasesSubscription(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, _ := startStream(t, repo, watcher)

	if err := stream.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if n := watcher.sub.closeCount(); n != 1 {
		t.Fatalf("expected 1 close, got %d", n)
	}

	// Stop is idempotent.
	if err := stream.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if n := watcher.sub.closeCount(); n != 1 {
		t.Fatalf("second stop closed again: %d", n)
	}
}

func TestCommentStream_EventsAfterTeardownDiscarded(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	stream, _ := startStream(t, repo, watcher)

	if err := stream.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// An in-flight delivery completing after teardown is dropped, not merged.
	stream.ingest(context.Background(), testComment("late", "article-1", "too late", time.Now()))
	if got := stream.Comments(); len(got) != 0 {
		t.Fatalf("post-teardown event merged: %v", got)
	}
}

func TestStreamManager_SharesOneSubscriptionPerArticle(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := &stubWatcher{}
	mgr := NewStreamManager(context.Background(), repo, watcher, newStubDedup(), nil, discardLogger)

	first, releaseFirst, err := mgr.Acquire("article-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	second, releaseSecond, err := mgr.Acquire("article-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if first != second {
		t.Fatalf("expected shared stream instance")
	}
	if n := watcher.watchCount(); n != 1 {
		t.Fatalf("expected 1 watch, got %d", n)
	}

	releaseFirst()
	if n := watcher.sub.closeCount(); n != 0 {
		t.Fatalf("stream stopped while still referenced")
	}

	releaseSecond()
	releaseSecond() // release is single-shot
	if n := watcher.sub.closeCount(); n != 1 {
		t.Fatalf("expected subscription closed once, got %d", n)
	}

	// A fresh acquire after full release starts a new subscription.
	watcher.mu.Lock()
	watcher.sub = nil
	watcher.mu.Unlock()
	_, release, err := mgr.Acquire("article-1")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	defer release()
	if n := watcher.watchCount(); n != 2 {
		t.Fatalf("expected 2 watches, got %d", n)
	}
}

// gatedWatcher blocks Watch for one article until released, so tests can
// hold a stream start open.
type gatedWatcher struct {
	gated   string
	entered chan struct{}
	gate    chan struct{}

	mu   sync.Mutex
	subs map[string]*stubSubscription
}

func newGatedWatcher(gated string) *gatedWatcher {
	return &gatedWatcher{
		gated:   gated,
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
		subs:    make(map[string]*stubSubscription),
	}
}

func (w *gatedWatcher) Watch(_ context.Context, articleID string) (ports.CommentSubscription, error) {
	if articleID == w.gated {
		close(w.entered)
		<-w.gate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	sub := newStubSubscription()
	w.subs[articleID] = sub
	return sub, nil
}

func TestStreamManager_SlowStartDoesNotBlockOtherArticles(t *testing.T) {
	repo := &stubCommentRepo{}
	watcher := newGatedWatcher("slow")
	mgr := NewStreamManager(context.Background(), repo, watcher, newStubDedup(), nil, discardLogger)

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		if _, release, err := mgr.Acquire("slow"); err == nil {
			release()
		}
	}()

	select {
	case <-watcher.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("slow stream never began starting")
	}

	// With one stream held mid-start, another article acquires promptly.
	fastDone := make(chan error, 1)
	go func() {
		_, release, err := mgr.Acquire("fast")
		if err == nil {
			release()
		}
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("acquire fast: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("acquire for another article blocked by a slow stream start")
	}

	close(watcher.gate)
	select {
	case <-slowDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("slow acquire never completed")
	}
}

func TestMergeByID(t *testing.T) {
	now := time.Now().UTC()
	a := testComment("a", "x", "oldest", now)
	b := testComment("b", "x", "middle", now.Add(time.Second))
	bStale := b
	bStale.Content = "stale copy"
	c := testComment("c", "x", "newest", now.Add(2*time.Second))

	merged := mergeByID([]domain.Comment{c, b}, []domain.Comment{bStale, a})
	if len(merged) != 3 {
		t.Fatalf("expected 3 comments, got %v", merged)
	}
	for i, want := range []string{"c", "b", "a"} {
		if merged[i].ID != want {
			t.Fatalf("order[%d] = %q, want %q", i, merged[i].ID, want)
		}
	}
	// First occurrence wins.
	if merged[1].Content != "middle" {
		t.Fatalf("stale copy won the merge: %q", merged[1].Content)
	}
}
