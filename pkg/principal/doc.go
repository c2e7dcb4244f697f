// Package principal turns an identity provider's answer into the session
// principal and carries it between requests.
//
// A principal holds only the user id, the canonical role and the profile id.
// FromIdentity resolves the role from the provider's raw role strings in
// precedence order (see RoleSources).
//
// Codec signs principals into compact HS256 tokens:
//
//	codec, _ := principal.NewCodec(key)
//	token, _ := codec.Issue(principal.FromIdentity(uid, pid, identity), 12*time.Hour)
//
// Middleware verifies the token on each request and stores the principal in
// the context, where FromContext finds it.
package principal
