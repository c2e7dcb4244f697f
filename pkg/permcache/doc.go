// Package permcache keeps one permission set per signed-in user and refreshes
// it from the permission authority.
//
// Reads never block on a known set: a fresh set is returned as is, a stale one
// is returned while a single background fetch replaces it. A user with no set
// yet waits for the fetch, shared with every concurrent caller.
//
//	perms := permcache.New(authorityClient,
//		permcache.WithTTL(time.Minute),
//		permcache.WithLogger(log),
//	)
//	set, err := perms.Get(ctx, principal.UserID)
//
// Fetch failures never grant access. A user without a set gets rbac.EmptySet;
// a user with a set keeps it until a later fetch succeeds. Errors only reach
// the logger.
//
// Invalidate, Set and Teardown supersede fetches already in flight: a result
// whose entry changed meanwhile is dropped, and anyone waiting on it retries.
//
// With WithStore, first loads consult a shared Store (see pkg/redis) before
// calling the fetcher, and successful fetches are written back.
package permcache
