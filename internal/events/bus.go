package events

import (
	"sync"
	"time"

	"xplore/pkg/logging"
)

// DefaultTickInterval is the tick producer's period.
const DefaultTickInterval = 250 * time.Millisecond

// DefaultBufferSize is the bus channel capacity. Producers block when the
// consumer falls this far behind, which keeps ordering strict and memory
// bounded.
const DefaultBufferSize = 256

// Bus is the single FIFO channel every event flows through. Arrival
// order is delivery order; because the consumer is one goroutine, that
// order is also application order.
type Bus struct {
	ch     chan Event
	stopCh chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// BusOption configures the bus.
type BusOption func(*busConfig)

type busConfig struct {
	buffer int
}

// WithBufferSize overrides the channel capacity.
func WithBufferSize(n int) BusOption {
	return func(c *busConfig) { c.buffer = n }
}

// NewBus creates a bus. Producers are attached separately.
func NewBus(opts ...BusOption) *Bus {
	cfg := busConfig{buffer: DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		ch:     make(chan Event, cfg.buffer),
		stopCh: make(chan struct{}),
	}
}

// Events is the consumer's end of the bus.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Done is closed when the bus shuts down. Consumers select on it
// alongside Events; the event channel itself is never closed, so a
// racing Publish from a late completion can never panic.
func (b *Bus) Done() <-chan struct{} {
	return b.stopCh
}

// Publish places an event on the bus, blocking if the buffer is full.
// Publishing after Close is a silent no-op: late completions from
// in-flight fetches must not panic a shutting-down session.
func (b *Bus) Publish(e Event) {
	select {
	case <-b.stopCh:
	case b.ch <- e:
	}
}

// PublishIntent wraps and publishes an intent.
func (b *Bus) PublishIntent(intent Intent) {
	b.Publish(IntentEvent(intent))
}

// PublishCompletion wraps and publishes a completion.
func (b *Bus) PublishCompletion(completion Completion) {
	b.Publish(CompletionEvent(completion))
}

// StartTicker attaches the tick producer. Interval <= 0 uses the
// default.
func (b *Bus) StartTicker(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stopCh:
				return
			case <-ticker.C:
				b.Publish(TickEvent())
			}
		}
	}()
}

// AttachInput forwards lines from an input source onto the bus. The
// producer exits when the source channel closes or the bus stops.
func (b *Bus) AttachInput(lines <-chan string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.stopCh:
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				b.Publish(InputEvent(line))
			}
		}
	}()
}

// Close stops the producers and signals Done. Further publishes are
// dropped; events already enqueued stay readable for draining.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.stopCh)
	b.mu.Unlock()

	b.wg.Wait()
	logging.Debug("Events", "Bus closed")
}
