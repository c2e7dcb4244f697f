// Package async provides a small generic Future for running a computation in
// the background and letting several callers wait on the same result.
//
// Async starts the function in its own goroutine and returns immediately. Each
// waiter calls Await with its own context, so a caller that gives up does not
// cancel the work for the others:
//
//	f := async.Async(ctx, userID, fetch)
//	set, err := f.Await(reqCtx)
//
// Done exposes the completion channel for select statements and IsComplete
// polls without blocking.
package async
