// Package backoff paces connection retries during lane establishment.
//
// Establishment dials every peer with a fixed, short delay between
// attempts and no overall deadline (both endpoints are assumed
// eventually reachable). The same calculator supports exponential
// growth with jitter for callers that reconnect after a session was
// already up.
package backoff
