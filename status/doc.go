// Package status serves the pipeline's health, statistics and build
// information over HTTP while a run is in progress.
//
// # Routes
//
//   - GET /healthz: health of every registered component, 503 when any is unhealthy
//   - GET /livez: process liveness
//   - GET /stats: the prefetcher's counters
//   - GET /version: build information
//   - GET /events: server-sent progress events, when WithEvents is set
//
// The server runs as a component, so bootstrap starts it after the
// prefetcher and stops it first. Setting tls.cert_file and tls.key_file
// serves HTTPS; adding tls.ca_file requires client certificates.
package status
