package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FIFOWithinProducer(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	for i := 0; i < 10; i++ {
		bus.Publish(InputEvent(fmt.Sprintf("line-%d", i)))
	}

	for i := 0; i < 10; i++ {
		select {
		case e := <-bus.Events():
			require.NotNil(t, e.Input)
			assert.Equal(t, fmt.Sprintf("line-%d", i), *e.Input)
		case <-time.After(time.Second):
			t.Fatal("bus delivered too few events")
		}
	}
}

func TestBus_ArrivalOrderAcrossProducers(t *testing.T) {
	// Concurrent producers publish; the consumer must observe a
	// sequence that preserves each producer's internal order.
	bus := NewBus(WithBufferSize(1024))
	defer bus.Close()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				bus.Publish(InputEvent(fmt.Sprintf("%d:%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	lastSeen := make(map[string]int)
	for n := 0; n < producers*perProducer; n++ {
		select {
		case e := <-bus.Events():
			require.NotNil(t, e.Input)
			var p, i int
			_, err := fmt.Sscanf(*e.Input, "%d:%d", &p, &i)
			require.NoError(t, err)
			key := fmt.Sprintf("%d", p)
			if prev, ok := lastSeen[key]; ok {
				assert.Equal(t, prev+1, i, "producer %d events out of order", p)
			} else {
				assert.Equal(t, 0, i)
			}
			lastSeen[key] = i
		case <-time.After(time.Second):
			t.Fatalf("bus delivered %d of %d events", n, producers*perProducer)
		}
	}
}

func TestBus_TickerProducesTicks(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.StartTicker(10 * time.Millisecond)

	ticks := 0
	deadline := time.After(2 * time.Second)
	for ticks < 3 {
		select {
		case e := <-bus.Events():
			if e.Tick {
				ticks++
			}
		case <-deadline:
			t.Fatalf("saw only %d ticks", ticks)
		}
	}
}

func TestBus_AttachInputForwardsLines(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	lines := make(chan string, 3)
	bus.AttachInput(lines)

	lines <- ":home"
	lines <- ":quit"
	close(lines)

	for _, want := range []string{":home", ":quit"} {
		select {
		case e := <-bus.Events():
			require.NotNil(t, e.Input)
			assert.Equal(t, want, *e.Input)
		case <-time.After(time.Second):
			t.Fatal("input line not forwarded")
		}
	}
}

func TestBus_PublishAfterCloseDoesNotPanic(t *testing.T) {
	bus := NewBus()
	bus.Close()

	// A late completion from an in-flight fetch.
	bus.PublishCompletion(TweetsLoaded{Intent: NewFetchIntent(FetchHome, "", "")})

	select {
	case <-bus.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}
}

func TestBus_CloseIdempotent(t *testing.T) {
	bus := NewBus()
	bus.StartTicker(time.Millisecond)
	bus.Close()
	bus.Close()
}

func TestNewFetchIntent_FreshIdentity(t *testing.T) {
	a := NewFetchIntent(FetchSearch, "golang", "")
	b := NewFetchIntent(FetchSearch, "golang", "")

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID, "each intent carries its own identity")
	assert.Equal(t, "golang", a.Subject)
}

func TestEventWrappers(t *testing.T) {
	e := TickEvent()
	assert.True(t, e.Tick)
	assert.Nil(t, e.Intent)

	e = IntentEvent(QuitIntent{})
	_, ok := e.Intent.(QuitIntent)
	assert.True(t, ok)

	e = CompletionEvent(AuthChanged{})
	_, ok = e.Completion.(AuthChanged)
	assert.True(t, ok)
}
