package api

import (
	"strings"
	"sync"
)

// UsersCache holds the user objects seen in response includes, keyed by
// user ID. The most recently seen version of a user wins; the cache never
// evicts (the working set is bounded by whoever appears in fetched
// timelines).
type UsersCache struct {
	mu    sync.RWMutex
	byID  map[string]User
	byKey map[string]string // lowercased username -> ID
}

// NewUsersCache creates an empty cache.
func NewUsersCache() *UsersCache {
	return &UsersCache{
		byID:  make(map[string]User),
		byKey: make(map[string]string),
	}
}

// Add inserts or replaces a user.
func (c *UsersCache) Add(user User) {
	if user.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[user.ID] = user
	if user.Username != "" {
		c.byKey[strings.ToLower(user.Username)] = user.ID
	}
}

// AddAll inserts every user from a response's includes.
func (c *UsersCache) AddAll(users []User) {
	for _, u := range users {
		c.Add(u)
	}
}

// Get returns the cached user for an ID.
func (c *UsersCache) Get(id string) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byID[id]
	return u, ok
}

// GetByUsername returns the cached user for a handle, case-insensitive.
func (c *UsersCache) GetByUsername(username string) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byKey[strings.ToLower(username)]
	if !ok {
		return User{}, false
	}
	u, ok := c.byID[id]
	return u, ok
}

// Len returns the number of cached users.
func (c *UsersCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
