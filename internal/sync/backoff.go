package sync

import (
	"math/rand"
	"time"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// nextBackoff returns the delay before reconnection attempt n (0-based):
// exponential growth capped at backoffCap, with up to 50% random jitter so a
// fleet of sessions does not reconnect in lockstep.
func nextBackoff(attempt int) time.Duration {
	d := backoffBase
	for i := 0; i < attempt && d < backoffCap; i++ {
		d *= 2
	}
	if d > backoffCap {
		d = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	return d + jitter
}
