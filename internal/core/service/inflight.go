package service

import "sync"

// InFlight tracks users with a generation currently in progress. It
// replaces ad-hoc "waiting list" state with an atomic claim: a second
// request from the same user is rejected until the first releases.
type InFlight struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{active: make(map[int64]struct{})}
}

// Claim marks the user as busy. Returns false if already claimed.
func (f *InFlight) Claim(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.active[userID]; busy {
		return false
	}
	f.active[userID] = struct{}{}
	return true
}

// Release frees the user's slot. Releasing an unclaimed slot is a no-op.
func (f *InFlight) Release(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, userID)
}
