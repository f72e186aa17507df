// Package routes enumerates the static route list of a content repository.
//
// A Collector walks every page of a documents search, maps each document to
// a route path through a Resolver and merges the result with extra routes the
// build already knows about. Any failure voids the whole walk: an incomplete
// route list is never returned.
package routes
