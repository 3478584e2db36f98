// Package profile keeps the rolling behavioural history of each identity and
// the threat rating of each network origin. Both feed risk analysis.
//
// Profiles are created lazily on first sight and live for the life of the
// process. Activity older than 24 hours is pruned inline on every write, so a
// profile's memory is bounded by its own request rate; the number of profiles
// is not bounded (see Store.EvictIdle).
package profile
