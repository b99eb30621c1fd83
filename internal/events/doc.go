// Package events defines the event model of the interactive session and
// the bus that serializes it.
//
// Two disjoint unions flow through the system: Intent (what the user
// asked for) and Completion (what a finished network task produced).
// They only meet inside Event, the wrapper type carried on the bus.
// The bus is a single FIFO channel fed by the tick timer, the input
// producer, and the dispatcher's completion callbacks; the consumer
// loop drains it one event at a time, so all state mutation is
// single-threaded regardless of how many fetches run concurrently.
package events
