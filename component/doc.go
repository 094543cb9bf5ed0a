// Package component defines the lifecycle contract shared by the storage
// backend, the prefetcher and the status server.
//
// Components are registered in dependency order, started in that order and
// stopped in reverse. Stopping the prefetcher joins its worker, so storage
// stays open until the last in-flight read has finished.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line startup summary
//   - RouteProvider: HTTP routes for the startup summary
package component
