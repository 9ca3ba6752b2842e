package outbox

import "time"

type HealthStatus struct {
	Healthy         bool      `json:"healthy"`
	Publisher       string    `json:"publisher"`
	NATSConnected   bool      `json:"nats_connected"`
	PendingEvents   int       `json:"pending_events"`
	EventsPublished uint64    `json:"events_published"`
	EventsFailed    uint64    `json:"events_failed"`
	EventsDropped   uint64    `json:"events_dropped"`
	LastEventTime   time.Time `json:"last_event_time"`
	Errors          []string  `json:"errors"`
}

// connectionChecker is implemented by publishers that hold a network connection
type connectionChecker interface {
	Connected() bool
}

// Health reports the relay's state. A publisher without a connection is always considered connected.
func (w *Worker) Health(stats *StatsCollector) HealthStatus {
	status := HealthStatus{
		Healthy:       true,
		Publisher:     "log",
		NATSConnected: true,
		PendingEvents: w.Pending(),
		Errors:        []string{},
	}

	if cc, ok := w.inner.(connectionChecker); ok {
		status.Publisher = "jetstream"
		status.NATSConnected = cc.Connected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if stats != nil {
		s := stats.Snapshot()
		status.EventsPublished = s.Published
		status.EventsFailed = s.Failed
		status.EventsDropped = s.Dropped
		status.LastEventTime = s.LastPublished
	}

	if status.PendingEvents >= w.config.QueueSize {
		status.Healthy = false
		status.Errors = append(status.Errors, "outbox queue saturated")
	}
	return status
}
