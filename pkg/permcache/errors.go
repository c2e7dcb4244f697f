package permcache

import "errors"

var (
	ErrInvalidUserID = errors.New("permcache.invalid_user_id")

	// ErrTornDown is returned to Get callers whose user was torn down while
	// they waited for a fetch.
	ErrTornDown = errors.New("permcache.torn_down")

	// errDiscarded completes a fetch whose entry was invalidated, replaced
	// or evicted while it was in flight. Waiters retry.
	errDiscarded = errors.New("permcache.fetch_discarded")
)
