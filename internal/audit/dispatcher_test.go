package audit

import (
	"context"
	"testing"
	"time"
)

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	d.Emit(context.Background(), Event{EventType: EventSessionObtained})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherFlushesOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: EventSessionUpdated})
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != 5 {
		t.Fatalf("expected all queued events flushed on close, got %d", delivered)
	}

	d.Emit(context.Background(), Event{EventType: EventSessionUpdated})
	if d.Dropped() != 0 {
		t.Fatal("emit after close must be a no-op, not a drop")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-block })
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the sink, second fills the buffer, the rest drop.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), Event{EventType: EventSessionInvalidated})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops under backpressure")
	}

	close(block)
	d.Close()
}

func TestDispatcherStampsMissingTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{EventType: EventSessionObtained})
	d.Close()

	select {
	case ev := <-sink.Events():
		if ev.Timestamp.IsZero() {
			t.Fatal("expected dispatcher to stamp missing timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
