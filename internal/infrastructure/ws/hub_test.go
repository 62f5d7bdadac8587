package ws

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
	sendErr  error
	closed   bool
}

func (f *fakeSubscriber) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}

func TestHub_BroadcastReachesOnlyArticleSubscribers(t *testing.T) {
	hub := NewHub()
	a := &fakeSubscriber{}
	b := &fakeSubscriber{}
	other := &fakeSubscriber{}

	hub.Register("article-1", a)
	hub.Register("article-1", b)
	hub.Register("article-2", other)
	waitFor(t, func() bool { return hub.Subscribers("article-1") == 2 }, "registration")

	hub.Broadcast("article-1", []byte("hello"))
	waitFor(t, func() bool { return a.received() == 1 && b.received() == 1 }, "broadcast delivery")

	if other.received() != 0 {
		t.Fatalf("subscriber of another article received the payload")
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Register("article-1", sub)
	waitFor(t, func() bool { return hub.Subscribers("article-1") == 1 }, "registration")

	hub.Unregister("article-1", sub)
	waitFor(t, func() bool { return hub.Subscribers("article-1") == 0 }, "unregistration")

	hub.Broadcast("article-1", []byte("late"))
	// Broadcast to an empty set is a no-op; give the hub loop a beat.
	time.Sleep(20 * time.Millisecond)
	if sub.received() != 0 {
		t.Fatalf("unregistered subscriber received a payload")
	}
}

func TestHub_FailedSendEvictsSubscriber(t *testing.T) {
	hub := NewHub()
	broken := &fakeSubscriber{sendErr: errors.New("connection gone")}
	healthy := &fakeSubscriber{}

	hub.Register("article-1", broken)
	hub.Register("article-1", healthy)
	waitFor(t, func() bool { return hub.Subscribers("article-1") == 2 }, "registration")

	hub.Broadcast("article-1", []byte("hello"))
	waitFor(t, func() bool { return hub.Subscribers("article-1") == 1 }, "eviction")

	broken.mu.Lock()
	closed := broken.closed
	broken.mu.Unlock()
	if !closed {
		t.Fatalf("evicted subscriber not closed")
	}
	if healthy.received() != 1 {
		t.Fatalf("healthy subscriber missed the payload")
	}
}
