// Package api implements the exporter's HTTP surface.
//
// New(cfg, sink, logger) builds a Handler that serves:
//
//	GET <metrics_path>  run one collection pass, then render the whole registry
//	GET /healthz        {"status":"ok"}
//	GET /               HTML page linking the metrics path
//
// The scrape endpoint reads the target from the ONTAP_IP, ONTAP_USER and
// ONTAP_PASS query parameters or a Basic Authorization header, falling back to
// the environment, the config file and built-in defaults. Upstream failures
// never turn into an HTTP error: the registry is rendered regardless.
//
// Every endpoint returns 405 with a JSON error for non-GET methods.
// Reload swaps the configuration atomically; scrapes in flight finish on the
// configuration they started with.
package api
