package events

import (
	"github.com/google/uuid"

	"xplore/internal/api"
)

// ViewKind identifies a view on the navigation stack.
type ViewKind int

const (
	ViewHome ViewKind = iota
	ViewUserTimeline
	ViewThread
	ViewProfile
	ViewSearch
	ViewMentions
	ViewBookmarks
	ViewHelp
)

func (v ViewKind) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewUserTimeline:
		return "user-timeline"
	case ViewThread:
		return "thread"
	case ViewProfile:
		return "profile"
	case ViewSearch:
		return "search"
	case ViewMentions:
		return "mentions"
	case ViewBookmarks:
		return "bookmarks"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// View pairs a view kind with its subject (user ID, conversation ID,
// username, or search query, depending on the kind).
type View struct {
	Kind    ViewKind
	Subject string
}

// Intent is the union of things the user can ask for. Implementations
// are the *Intent structs in this package and nothing else.
type Intent interface {
	isIntent()
}

// QuitIntent ends the session.
type QuitIntent struct{}

// PushViewIntent pushes a view onto the navigation stack.
type PushViewIntent struct {
	View View
}

// PopViewIntent returns to the previous view.
type PopViewIntent struct{}

// SwitchViewIntent replaces the current view.
type SwitchViewIntent struct {
	View View
}

// FetchKind names a network fetch operation.
type FetchKind int

const (
	FetchHome FetchKind = iota
	FetchUserTimeline
	FetchTweet
	FetchThread
	FetchUser
	FetchSearch
	FetchMentions
	FetchBookmarks
	FetchFollowers
	FetchFollowing
)

func (k FetchKind) String() string {
	switch k {
	case FetchHome:
		return "home timeline"
	case FetchUserTimeline:
		return "user timeline"
	case FetchTweet:
		return "tweet"
	case FetchThread:
		return "thread"
	case FetchUser:
		return "user"
	case FetchSearch:
		return "search"
	case FetchMentions:
		return "mentions"
	case FetchBookmarks:
		return "bookmarks"
	case FetchFollowers:
		return "followers"
	case FetchFollowing:
		return "following"
	default:
		return "unknown"
	}
}

// FetchIntent asks the dispatcher to run one network fetch. ID ties the
// eventual completion back to this intent; NewFetchIntent assigns it.
type FetchIntent struct {
	ID   uuid.UUID
	Kind FetchKind

	// Subject depends on Kind: user ID for timelines/followers/following,
	// tweet ID for tweet, conversation ID for thread, username for user,
	// query for search. Empty for the authenticated-user fetches.
	Subject string

	// PageToken requests the next page of an earlier fetch.
	PageToken string
}

// NewFetchIntent creates a fetch intent with a fresh identity.
func NewFetchIntent(kind FetchKind, subject, pageToken string) FetchIntent {
	return FetchIntent{
		ID:        uuid.New(),
		Kind:      kind,
		Subject:   subject,
		PageToken: pageToken,
	}
}

// AuthLoginIntent starts the interactive OAuth login flow.
type AuthLoginIntent struct{}

func (QuitIntent) isIntent()       {}
func (PushViewIntent) isIntent()   {}
func (PopViewIntent) isIntent()    {}
func (SwitchViewIntent) isIntent() {}
func (FetchIntent) isIntent()      {}
func (AuthLoginIntent) isIntent()  {}

// Completion is the union of results delivered back to the consumer
// loop. Exactly one completion is published per dispatched intent.
type Completion interface {
	isCompletion()
}

// TweetsLoaded is the completion of a tweet-list fetch (home, user
// timeline, thread, search, mentions, bookmarks).
type TweetsLoaded struct {
	Intent FetchIntent
	Resp   *api.TweetsResponse
	Err    error
}

// TweetLoaded is the completion of a single-tweet fetch.
type TweetLoaded struct {
	Intent FetchIntent
	Resp   *api.TweetResponse
	Err    error
}

// UserLoaded is the completion of a user lookup.
type UserLoaded struct {
	Intent FetchIntent
	Resp   *api.UserResponse
	Err    error
}

// UsersLoaded is the completion of a user-list fetch (followers,
// following).
type UsersLoaded struct {
	Intent FetchIntent
	Resp   *api.UsersResponse
	Err    error
}

// AuthChanged reports the outcome of a login flow or an externally
// adopted token.
type AuthChanged struct {
	Err error
}

func (TweetsLoaded) isCompletion() {}
func (TweetLoaded) isCompletion()  {}
func (UserLoaded) isCompletion()   {}
func (UsersLoaded) isCompletion()  {}
func (AuthChanged) isCompletion()  {}

// Event is the bus wrapper: exactly one field is set.
type Event struct {
	// Tick is true for timer events.
	Tick bool

	// Input is a line of user input, when non-nil.
	Input *string

	// Intent is set for user-originated events.
	Intent Intent

	// Completion is set for finished network tasks.
	Completion Completion
}

// TickEvent returns a tick event.
func TickEvent() Event {
	return Event{Tick: true}
}

// InputEvent wraps a line of user input.
func InputEvent(line string) Event {
	return Event{Input: &line}
}

// IntentEvent wraps an intent.
func IntentEvent(intent Intent) Event {
	return Event{Intent: intent}
}

// CompletionEvent wraps a completion.
func CompletionEvent(completion Completion) Event {
	return Event{Completion: completion}
}
