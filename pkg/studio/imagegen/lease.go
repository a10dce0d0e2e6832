package imagegen

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Leases is the per-session mutual-exclusion token for generation. The
// upstream UI disables its button while a generation is in flight, but the
// lease makes the one-at-a-time rule hold even for a second UI surface or
// an automation hitting the same session.
type Leases struct {
	cache *cache.Cache
}

func NewLeases() *Leases {
	// A generation that outlives the TTL is assumed dead; the lease
	// expires so the session is not locked forever.
	return &Leases{
		cache: cache.New(5*time.Minute, time.Minute),
	}
}

// Acquire takes the lease for a session. Returns false when another
// generation already holds it.
func (l *Leases) Acquire(sessionID string) bool {
	return l.cache.Add(sessionID, struct{}{}, cache.DefaultExpiration) == nil
}

func (l *Leases) Release(sessionID string) {
	l.cache.Delete(sessionID)
}
