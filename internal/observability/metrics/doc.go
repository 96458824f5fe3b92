// Package metrics holds the Prometheus collectors for refresh runs.
//
// Collectors are registered on the default registry at package init and
// exposed by the worker's /metrics endpoint. The Record* helpers keep label
// values consistent across call sites.
package metrics
