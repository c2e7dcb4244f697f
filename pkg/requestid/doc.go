// Package requestid propagates a per-request correlation id.
//
// Middleware accepts an inbound X-Request-ID when it is well formed and
// generates a UUID otherwise. Outbound clients call Ensure so one id follows a
// permission fetch from the application to the authority and back into logs:
//
//	ctx, id := requestid.Ensure(ctx)
//	req.Header.Set(requestid.Header, id)
package requestid
