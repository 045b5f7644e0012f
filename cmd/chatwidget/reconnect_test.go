package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/makers-tech/chatsocket"
)

type fakeRedialer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRedialer) Redial(address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, address)
	return f.err
}

func (f *fakeRedialer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func testReconnector(client redialer, b backoff.BackOff) *reconnector {
	return &reconnector{
		client:  client,
		address: "ws://chat.test/ws",
		backoff: b,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		after:   immediate,
	}
}

func TestReconnector_RedialsOnClose(t *testing.T) {
	client := &fakeRedialer{}
	r := testReconnector(client, &backoff.ZeroBackOff{})

	statuses := make(chan chatsocket.Status, 4)
	statuses <- chatsocket.StatusClosed
	statuses <- chatsocket.StatusOpen
	statuses <- chatsocket.StatusClosed
	close(statuses)

	r.run(context.Background(), statuses)

	if client.count() != 2 {
		t.Fatalf("Redial calls = %d, want 2", client.count())
	}
	if client.calls[0] != "ws://chat.test/ws" {
		t.Errorf("Redial address = %s", client.calls[0])
	}
}

func TestReconnector_GivesUp(t *testing.T) {
	client := &fakeRedialer{}
	r := testReconnector(client, &backoff.StopBackOff{})

	statuses := make(chan chatsocket.Status, 1)
	statuses <- chatsocket.StatusClosed

	r.run(context.Background(), statuses)

	if client.count() != 0 {
		t.Errorf("Redial calls = %d, want 0", client.count())
	}
}

func TestReconnector_StopsOnRedialError(t *testing.T) {
	client := &fakeRedialer{err: errors.New("closed")}
	r := testReconnector(client, &backoff.ZeroBackOff{})

	statuses := make(chan chatsocket.Status, 2)
	statuses <- chatsocket.StatusClosed
	statuses <- chatsocket.StatusClosed

	r.run(context.Background(), statuses)

	if client.count() != 1 {
		t.Errorf("Redial calls = %d, want 1", client.count())
	}
}

func TestReconnector_StopsOnContext(t *testing.T) {
	client := &fakeRedialer{}
	r := testReconnector(client, &backoff.ZeroBackOff{})
	r.after = func(time.Duration) <-chan time.Time { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	statuses := make(chan chatsocket.Status, 1)
	statuses <- chatsocket.StatusClosed

	finished := make(chan struct{})
	go func() {
		r.run(ctx, statuses)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
	if client.count() != 0 {
		t.Errorf("Redial calls = %d, want 0", client.count())
	}
}
