// Package sse streams pipeline events to HTTP clients as Server-Sent
// Events.
//
// A Hub fans published events out to connected clients. Each client
// subscribes with a glob filter on the event type ("*", "batch",
// "epoch"). Publishing never blocks: events for a client whose buffer is
// full are dropped and counted.
//
//	hub := sse.NewHub(log)
//	go hub.Run()
//	_ = hub.Publish(sse.EventBatch, sse.BatchEvent{Seq: 3, Filled: 16})
package sse
