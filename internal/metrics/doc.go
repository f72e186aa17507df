// Package metrics provides observability hooks for route collection runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never need nil checks at call sites:
//
//	collector := routes.NewCollector(client, resolver, routes.WithRecorder(metrics.NoopRecorder{}))
//
// When a metrics file is requested, swap in a PrometheusRecorder bound to a
// private registry and dump it with WriteTextfile once the run completes.
// Short-lived CLI runs have no scrape endpoint, so the textfile collector is
// the delivery path.
package metrics
