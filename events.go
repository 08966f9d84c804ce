package authcore

import "sync"

// invalidationFeed fans authenticated-session invalidations out to an
// arbitrary number of subscribers. Publishing never blocks: a subscriber
// whose buffer is full loses the event, which is acceptable because the
// table itself remains the source of truth for session existence.
type invalidationFeed struct {
	mu     sync.Mutex
	subs   map[chan InvalidatedSession]struct{}
	buffer int
	closed bool
}

func newInvalidationFeed(buffer int) *invalidationFeed {
	if buffer < 1 {
		buffer = 1
	}
	return &invalidationFeed{
		subs:   make(map[chan InvalidatedSession]struct{}),
		buffer: buffer,
	}
}

func (f *invalidationFeed) subscribe() (<-chan InvalidatedSession, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan InvalidatedSession, f.buffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	f.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subs[ch]; ok {
				delete(f.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

func (f *invalidationFeed) publish(ev InvalidatedSession) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (f *invalidationFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.subs {
		close(ch)
	}
	f.subs = nil
}
