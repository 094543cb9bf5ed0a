package sse

import "time"

// Event types.
const (
	EventConnected = "connected"
	EventBatch     = "batch"
	EventEpoch     = "epoch"
	EventFinished  = "finished"
)

// Publisher publishes typed events. *Hub implements it.
type Publisher interface {
	Publish(eventType string, data any) error
}

// ConnectedEvent is the first event every client receives.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
	Filter   string `json:"filter"`
}

// BatchEvent describes one consumed batch.
type BatchEvent struct {
	Iteration int           `json:"iteration"`
	Seq       int64         `json:"seq"`
	Epoch     int           `json:"epoch"`
	Filled    int           `json:"filled"`
	Size      int           `json:"size"`
	FillTime  time.Duration `json:"fill_ns"`
}

// EpochEvent is published when the consumer sees a new epoch.
type EpochEvent struct {
	Epoch int   `json:"epoch"`
	Seq   int64 `json:"seq"`
}

// FinishedEvent closes a run.
type FinishedEvent struct {
	Batches  int     `json:"batches"`
	Examples int     `json:"examples"`
	Elapsed  string  `json:"elapsed"`
	Rate     float64 `json:"examples_per_sec"`
	Error    string  `json:"error,omitempty"`
}
