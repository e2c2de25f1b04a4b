// Package analysis is the client for the remote resume analysis service.
//
// Client.Analyze answers from the result cache when it can. On a miss it
// POSTs to <BaseURL>/v1/analyses with a bearer token, paced by a local rate
// limiter, guarded by a circuit breaker and retried on server errors. The
// response carries its own expiry and the remote call budget, both of which
// feed the cache.
//
// Resume ids may arrive as opaque tokens minted by the router. When a codec
// is configured they are decoded before use, so every token for the same
// resume shares one cache entry.
package analysis
