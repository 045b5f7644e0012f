package chatsocket

import "sync"

// notifier delivers snapshots to a listener from its own goroutine, in the
// order they were pushed. Pushing never blocks, so the listener may call
// back into the client.
type notifier struct {
	fn func(Snapshot)

	mu      sync.Mutex
	queue   []Snapshot
	stopped bool

	wake     chan struct{}
	quit     chan struct{}
	stopOnce sync.Once
}

func newNotifier(fn func(Snapshot)) *notifier {
	return &notifier{
		fn:   fn,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// push queues s for delivery. Snapshots pushed after stop are dropped.
func (n *notifier) push(s Snapshot) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.queue = append(n.queue, s)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	for {
		select {
		case <-n.wake:
			n.drain()
		case <-n.quit:
			n.drain()
			return
		}
	}
}

func (n *notifier) drain() {
	for {
		n.mu.Lock()
		batch := n.queue
		n.queue = nil
		n.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, s := range batch {
			n.fn(s)
		}
	}
}

// stop delivers what is queued and ends the goroutine. It does not wait,
// so it is safe to call from the listener.
func (n *notifier) stop() {
	n.stopOnce.Do(func() {
		n.mu.Lock()
		n.stopped = true
		n.mu.Unlock()
		close(n.quit)
	})
}
