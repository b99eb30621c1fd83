package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"xplore/internal/api"
	"xplore/internal/events"
	"xplore/pkg/logging"
)

// DefaultMaxInFlight bounds concurrent network fetches. High enough
// that paging ahead never stalls interactive fetches, low enough that a
// scroll burst cannot open dozens of sockets against a rate-limited API.
const DefaultMaxInFlight = 8

// Dispatcher turns fetch intents into API calls. Each intent runs in
// its own goroutine, bounded by a weighted semaphore, and produces
// exactly one completion on the bus tagged with the intent's identity.
type Dispatcher struct {
	client   *api.Client
	bus      *events.Bus
	sem      *semaphore.Weighted
	pageSize int

	wg sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxInFlight overrides the concurrency ceiling.
func WithMaxInFlight(n int64) DispatcherOption {
	return func(d *Dispatcher) { d.sem = semaphore.NewWeighted(n) }
}

// WithPageSize sets the max_results used for list fetches.
func WithPageSize(n int) DispatcherOption {
	return func(d *Dispatcher) { d.pageSize = n }
}

// NewDispatcher creates a dispatcher publishing completions to the bus.
func NewDispatcher(client *api.Client, bus *events.Bus, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		bus:      bus,
		sem:      semaphore.NewWeighted(DefaultMaxInFlight),
		pageSize: 20,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one fetch intent asynchronously. Exactly one completion
// reaches the bus for it, success or failure.
func (d *Dispatcher) Dispatch(ctx context.Context, intent events.FetchIntent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.bus.PublishCompletion(d.failed(intent, err))
			return
		}
		defer d.sem.Release(1)

		logging.Debug("App", "Dispatching %s (%s)", intent.Kind, intent.ID)
		d.bus.PublishCompletion(d.run(ctx, intent))
	}()
}

// Wait blocks until every dispatched fetch has completed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// run executes the API call for an intent and wraps the result.
func (d *Dispatcher) run(ctx context.Context, intent events.FetchIntent) events.Completion {
	page := api.Page{MaxResults: d.pageSize, Token: intent.PageToken}

	switch intent.Kind {
	case events.FetchHome:
		resp, err := d.client.HomeTimeline(ctx, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchUserTimeline:
		resp, err := d.client.UserTimeline(ctx, intent.Subject, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchTweet:
		resp, err := d.client.Tweet(ctx, intent.Subject)
		return events.TweetLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchThread:
		resp, err := d.client.ConversationThread(ctx, intent.Subject, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchUser:
		resp, err := d.client.UserByUsername(ctx, intent.Subject)
		return events.UserLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchSearch:
		resp, err := d.client.SearchRecent(ctx, intent.Subject, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchMentions:
		resp, err := d.client.Mentions(ctx, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchBookmarks:
		resp, err := d.client.Bookmarks(ctx, page)
		return events.TweetsLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchFollowers:
		resp, err := d.client.Followers(ctx, intent.Subject, page)
		return events.UsersLoaded{Intent: intent, Resp: resp, Err: err}
	case events.FetchFollowing:
		resp, err := d.client.Following(ctx, intent.Subject, page)
		return events.UsersLoaded{Intent: intent, Resp: resp, Err: err}
	default:
		return d.failed(intent, fmt.Errorf("unknown fetch kind %d", intent.Kind))
	}
}

// failed wraps an error in the completion type matching the intent.
func (d *Dispatcher) failed(intent events.FetchIntent, err error) events.Completion {
	switch intent.Kind {
	case events.FetchTweet:
		return events.TweetLoaded{Intent: intent, Err: err}
	case events.FetchUser:
		return events.UserLoaded{Intent: intent, Err: err}
	case events.FetchFollowers, events.FetchFollowing:
		return events.UsersLoaded{Intent: intent, Err: err}
	default:
		return events.TweetsLoaded{Intent: intent, Err: err}
	}
}
