// Package lock serializes cart mutations and checkout per user.
package lock

import "errors"

// ErrNotAcquired is returned when the lock could not be taken before the
// wait limit or the caller's context ran out.
var ErrNotAcquired = errors.New("lock not acquired")
