// Package auth supplies bearer credentials for outbound calls.
//
// A TokenSource produces the token; CachingTokenSource reuses a token until
// shortly before its JWT exp claim; Transport attaches it to every request.
// Tokens are never verified here: the identity provider issued them and the
// remote service verifies them.
package auth
