package app

import (
	"fmt"

	"github.com/google/uuid"

	"xplore/internal/api"
	"xplore/internal/events"
)

// Timeline is the loaded content of one tweet-list view.
type Timeline struct {
	Tweets    []api.Tweet
	NextToken string
	Loading   bool

	// pending is the most recent fetch for this timeline. Completions
	// are applied in arrival order regardless; pending only drives the
	// loading indicator.
	pending uuid.UUID
}

// UserList is the loaded content of a followers/following view.
type UserList struct {
	Users     []api.User
	NextToken string
	Loading   bool
	pending   uuid.UUID
}

// State is the application state. It is owned by the consumer loop;
// only the loop reads or writes it.
type State struct {
	// viewStack is the navigation history; the last element is current.
	viewStack []events.View

	// timelines keys tweet-list state by view identity.
	timelines map[string]*Timeline

	// userLists keys follower/following state by view identity.
	userLists map[string]*UserList

	// profiles holds fetched user objects by username, for profile views.
	profiles map[string]api.User

	// Status is the one-line status shown at the prompt.
	Status string

	// LastError is the most recent completion error, if any.
	LastError error

	// Authenticated reflects the latest auth outcome.
	Authenticated bool
}

// NewState creates a state starting at the given view.
func NewState(start events.View) *State {
	return &State{
		viewStack: []events.View{start},
		timelines: make(map[string]*Timeline),
		userLists: make(map[string]*UserList),
		profiles:  make(map[string]api.User),
	}
}

// CurrentView returns the top of the navigation stack.
func (s *State) CurrentView() events.View {
	return s.viewStack[len(s.viewStack)-1]
}

// Push adds a view to the stack.
func (s *State) Push(v events.View) {
	s.viewStack = append(s.viewStack, v)
}

// Pop returns to the previous view. The root view never pops.
func (s *State) Pop() {
	if len(s.viewStack) > 1 {
		s.viewStack = s.viewStack[:len(s.viewStack)-1]
	}
}

// Switch replaces the current view.
func (s *State) Switch(v events.View) {
	s.viewStack[len(s.viewStack)-1] = v
}

// Depth returns the navigation stack depth.
func (s *State) Depth() int {
	return len(s.viewStack)
}

// viewKey identifies the timeline/list storage slot for a view.
func viewKey(kind events.ViewKind, subject string) string {
	return fmt.Sprintf("%s/%s", kind, subject)
}

// Timeline returns the timeline for a view, creating it empty.
func (s *State) Timeline(kind events.ViewKind, subject string) *Timeline {
	key := viewKey(kind, subject)
	tl, ok := s.timelines[key]
	if !ok {
		tl = &Timeline{}
		s.timelines[key] = tl
	}
	return tl
}

// UserList returns the list for one relation of one user, creating it
// empty. Keyed by fetch kind so a user's followers and following lists
// stay separate.
func (s *State) UserList(kind events.FetchKind, subject string) *UserList {
	key := fmt.Sprintf("%s/%s", kind, subject)
	ul, ok := s.userLists[key]
	if !ok {
		ul = &UserList{}
		s.userLists[key] = ul
	}
	return ul
}

// SetProfile stores a fetched user for profile views.
func (s *State) SetProfile(user api.User) {
	s.profiles[user.Username] = user
}

// Profile returns the fetched user for a username, if loaded.
func (s *State) Profile(username string) (api.User, bool) {
	u, ok := s.profiles[username]
	return u, ok
}
