// Package app owns the interactive session: the application state, the
// single-threaded consumer loop that is the only writer of that state,
// and the dispatcher that turns fetch intents into bounded concurrent
// API calls.
//
// Concurrency model: any number of fetches may be in flight, but every
// result comes back as a Completion on the event bus and is applied by
// the consumer loop in arrival order. Nothing outside the loop ever
// touches the state.
package app
