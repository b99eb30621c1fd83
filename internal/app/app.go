package app

import (
	"context"
	"fmt"

	"xplore/internal/api"
	"xplore/internal/command"
	"xplore/internal/events"
	"xplore/pkg/logging"
)

// Presenter renders application state to the terminal. The consumer
// loop calls it on ticks after the state changed.
type Presenter interface {
	Render(state *State)
}

// LoginFunc runs the interactive OAuth login flow. It is injected so
// the loop does not depend on the flow wiring.
type LoginFunc func(ctx context.Context) error

// App is the event consumer. It owns the State: every mutation happens
// on the loop goroutine, in the order events arrived on the bus.
type App struct {
	bus        *events.Bus
	dispatcher *Dispatcher
	state      *State
	presenter  Presenter
	login      LoginFunc

	// dirty is set by any state change and cleared by a render.
	dirty bool
}

// AppOption configures an App.
type AppOption func(*App)

// WithLogin sets the login flow invoked by the auth command.
func WithLogin(login LoginFunc) AppOption {
	return func(a *App) { a.login = login }
}

// WithAuthenticated seeds the initial auth state.
func WithAuthenticated(ok bool) AppOption {
	return func(a *App) { a.state.Authenticated = ok }
}

// New creates the consumer with the given starting view.
func New(bus *events.Bus, dispatcher *Dispatcher, presenter Presenter, start events.View, opts ...AppOption) *App {
	a := &App{
		bus:        bus,
		dispatcher: dispatcher,
		state:      NewState(start),
		presenter:  presenter,
		dirty:      true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State exposes the application state. Callers outside the loop may
// only inspect it after Run has returned.
func (a *App) State() *State {
	return a.state
}

// Start fetches the initial view's content.
func (a *App) Start(ctx context.Context) {
	if intent, ok := fetchForView(a.state.CurrentView()); ok {
		a.beginFetch(ctx, intent)
	}
}

// Run consumes bus events until the context ends, the bus closes, or a
// quit intent arrives.
func (a *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.bus.Done():
			return nil
		case ev := <-a.bus.Events():
			if !a.handle(ctx, ev) {
				return nil
			}
		}
	}
}

// handle applies one event. Returns false when the session should end.
func (a *App) handle(ctx context.Context, ev events.Event) bool {
	switch {
	case ev.Tick:
		if a.dirty && a.presenter != nil {
			a.presenter.Render(a.state)
			a.dirty = false
		}
	case ev.Input != nil:
		a.handleInput(ctx, *ev.Input)
	case ev.Intent != nil:
		return a.handleIntent(ctx, ev.Intent)
	case ev.Completion != nil:
		a.handleCompletion(ctx, ev.Completion)
	}
	return true
}

// handleInput parses a prompt line into intents and applies them.
func (a *App) handleInput(ctx context.Context, line string) {
	cmd, ok := command.Parse(line)
	if !ok {
		a.setStatus("unknown command; :help lists commands")
		return
	}

	switch cmd.Kind {
	case command.KindUser:
		a.setStatus(fmt.Sprintf("loading @%s", cmd.Arg))
		a.beginFetch(ctx, events.NewFetchIntent(events.FetchUser, cmd.Arg, ""))
	case command.KindSearch:
		a.handleIntent(ctx, events.PushViewIntent{View: events.View{Kind: events.ViewSearch, Subject: cmd.Arg}})
	case command.KindOpen:
		id, ok := command.ParseTweetID(cmd.Arg)
		if !ok {
			a.setStatus("not a tweet ID or URL")
			return
		}
		a.setStatus("loading tweet " + id)
		a.beginFetch(ctx, events.NewFetchIntent(events.FetchTweet, id, ""))
	case command.KindHome:
		a.handleIntent(ctx, events.SwitchViewIntent{View: events.View{Kind: events.ViewHome}})
	case command.KindMentions:
		a.handleIntent(ctx, events.SwitchViewIntent{View: events.View{Kind: events.ViewMentions}})
	case command.KindBookmarks:
		a.handleIntent(ctx, events.SwitchViewIntent{View: events.View{Kind: events.ViewBookmarks}})
	case command.KindHelp:
		a.handleIntent(ctx, events.PushViewIntent{View: events.View{Kind: events.ViewHelp}})
	case command.KindAuth:
		a.handleIntent(ctx, events.AuthLoginIntent{})
	case command.KindQuit:
		a.bus.PublishIntent(events.QuitIntent{})
	}
}

// handleIntent applies one intent. Returns false for quit.
func (a *App) handleIntent(ctx context.Context, intent events.Intent) bool {
	switch it := intent.(type) {
	case events.QuitIntent:
		return false
	case events.PushViewIntent:
		a.state.Push(it.View)
		a.dirty = true
		if fetch, ok := fetchForView(it.View); ok {
			a.beginFetch(ctx, fetch)
		}
	case events.PopViewIntent:
		a.state.Pop()
		a.dirty = true
	case events.SwitchViewIntent:
		a.state.Switch(it.View)
		a.dirty = true
		if fetch, ok := fetchForView(it.View); ok {
			a.beginFetch(ctx, fetch)
		}
	case events.FetchIntent:
		a.beginFetch(ctx, it)
	case events.AuthLoginIntent:
		a.startLogin(ctx)
	}
	return true
}

// beginFetch marks the target loading and hands the intent to the
// dispatcher.
func (a *App) beginFetch(ctx context.Context, intent events.FetchIntent) {
	a.beginFetchState(intent)
	a.dispatcher.Dispatch(ctx, intent)
}

// beginFetchState records an in-flight fetch on its target.
func (a *App) beginFetchState(intent events.FetchIntent) {
	switch intent.Kind {
	case events.FetchFollowers, events.FetchFollowing:
		ul := a.state.UserList(intent.Kind, intent.Subject)
		ul.Loading = true
		ul.pending = intent.ID
	case events.FetchTweet, events.FetchUser:
		// No list slot; the status line already reflects these.
	default:
		if kind, ok := viewKindForFetch(intent.Kind); ok {
			tl := a.state.Timeline(kind, intent.Subject)
			tl.Loading = true
			tl.pending = intent.ID
		}
	}
	a.dirty = true
}

// startLogin runs the login flow off the loop and reports the outcome
// back through the bus.
func (a *App) startLogin(ctx context.Context) {
	if a.login == nil {
		a.setStatus("login is not available in this session")
		return
	}
	a.setStatus("opening browser for authorization")
	go func() {
		a.bus.PublishCompletion(events.AuthChanged{Err: a.login(ctx)})
	}()
}

// handleCompletion applies one finished network task to the state.
func (a *App) handleCompletion(ctx context.Context, completion events.Completion) {
	switch c := completion.(type) {
	case events.TweetsLoaded:
		a.applyTweets(c)
	case events.TweetLoaded:
		a.applyTweet(ctx, c)
	case events.UserLoaded:
		a.applyUser(ctx, c)
	case events.UsersLoaded:
		a.applyUsers(c)
	case events.AuthChanged:
		a.state.Authenticated = c.Err == nil
		if c.Err != nil {
			a.fail(c.Err)
		} else {
			a.setStatus("authenticated")
		}
	}
	a.dirty = true
}

// applyTweets merges a tweet-list completion into its timeline.
func (a *App) applyTweets(c events.TweetsLoaded) {
	kind, ok := viewKindForFetch(c.Intent.Kind)
	if !ok {
		return
	}
	tl := a.state.Timeline(kind, c.Intent.Subject)
	if tl.pending == c.Intent.ID {
		tl.Loading = false
	}
	if c.Err != nil {
		a.fail(c.Err)
		return
	}
	if c.Resp == nil {
		a.fail(fmt.Errorf("%s returned no data", c.Intent.Kind))
		return
	}
	if c.Intent.PageToken != "" {
		tl.Tweets = append(tl.Tweets, c.Resp.Data...)
	} else {
		tl.Tweets = c.Resp.Data
	}
	tl.NextToken = ""
	if c.Resp.Meta != nil {
		tl.NextToken = c.Resp.Meta.NextToken
	}
	a.setStatus(fmt.Sprintf("%s: %d tweets", c.Intent.Kind, len(tl.Tweets)))
}

// applyTweet resolves an opened tweet into its thread view.
func (a *App) applyTweet(ctx context.Context, c events.TweetLoaded) {
	if c.Err != nil {
		a.fail(c.Err)
		return
	}
	// A deleted or protected tweet comes back as a 200 with no data
	// object; the loop must survive that, not panic.
	if c.Resp == nil || c.Resp.Data == nil {
		a.fail(fmt.Errorf("tweet %s is unavailable", c.Intent.Subject))
		return
	}
	tweet := c.Resp.Data
	conversation := tweet.ConversationID
	if conversation == "" {
		conversation = tweet.ID
	}

	// Seed the thread with the opened tweet so the view is not empty
	// while the search runs.
	tl := a.state.Timeline(events.ViewThread, conversation)
	tl.Tweets = []api.Tweet{*tweet}
	a.state.Push(events.View{Kind: events.ViewThread, Subject: conversation})
	a.beginFetch(ctx, events.NewFetchIntent(events.FetchThread, conversation, ""))
}

// applyUser resolves a looked-up user into a profile view and starts
// loading their timeline.
func (a *App) applyUser(ctx context.Context, c events.UserLoaded) {
	if c.Err != nil {
		a.fail(c.Err)
		return
	}
	if c.Resp == nil || c.Resp.Data == nil {
		a.fail(fmt.Errorf("user @%s is unavailable", c.Intent.Subject))
		return
	}
	user := *c.Resp.Data
	a.state.SetProfile(user)
	a.state.Push(events.View{Kind: events.ViewProfile, Subject: user.Username})
	a.beginFetch(ctx, events.NewFetchIntent(events.FetchUserTimeline, user.ID, ""))
	a.setStatus("@" + user.Username)
}

// applyUsers merges a follower/following completion into its list.
func (a *App) applyUsers(c events.UsersLoaded) {
	ul := a.state.UserList(c.Intent.Kind, c.Intent.Subject)
	if ul.pending == c.Intent.ID {
		ul.Loading = false
	}
	if c.Err != nil {
		a.fail(c.Err)
		return
	}
	if c.Resp == nil {
		a.fail(fmt.Errorf("%s returned no data", c.Intent.Kind))
		return
	}
	if c.Intent.PageToken != "" {
		ul.Users = append(ul.Users, c.Resp.Data...)
	} else {
		ul.Users = c.Resp.Data
	}
	ul.NextToken = ""
	if c.Resp.Meta != nil {
		ul.NextToken = c.Resp.Meta.NextToken
	}
}

func (a *App) setStatus(status string) {
	a.state.Status = status
	a.dirty = true
}

func (a *App) fail(err error) {
	logging.Error("App", err, "Operation failed")
	a.state.LastError = err
	a.setStatus(err.Error())
}

// fetchForView maps a view to the fetch that fills it, when it has one.
func fetchForView(v events.View) (events.FetchIntent, bool) {
	switch v.Kind {
	case events.ViewHome:
		return events.NewFetchIntent(events.FetchHome, "", ""), true
	case events.ViewUserTimeline:
		return events.NewFetchIntent(events.FetchUserTimeline, v.Subject, ""), true
	case events.ViewThread:
		return events.NewFetchIntent(events.FetchThread, v.Subject, ""), true
	case events.ViewSearch:
		return events.NewFetchIntent(events.FetchSearch, v.Subject, ""), true
	case events.ViewMentions:
		return events.NewFetchIntent(events.FetchMentions, "", ""), true
	case events.ViewBookmarks:
		return events.NewFetchIntent(events.FetchBookmarks, "", ""), true
	default:
		return events.FetchIntent{}, false
	}
}

// viewKindForFetch maps a tweet-list fetch to the view it fills.
func viewKindForFetch(kind events.FetchKind) (events.ViewKind, bool) {
	switch kind {
	case events.FetchHome:
		return events.ViewHome, true
	case events.FetchUserTimeline:
		return events.ViewUserTimeline, true
	case events.FetchThread:
		return events.ViewThread, true
	case events.FetchSearch:
		return events.ViewSearch, true
	case events.FetchMentions:
		return events.ViewMentions, true
	case events.FetchBookmarks:
		return events.ViewBookmarks, true
	default:
		return 0, false
	}
}
