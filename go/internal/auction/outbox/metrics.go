package outbox

import (
	"context"
	"sync"
	"time"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordPublishAttempt(eventType string, attempt int, success bool)
	RecordDropped(eventType string)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventProcessed(eventType string, success bool, duration time.Duration) {}
func (n *NoOpMetricsCollector) RecordPublishAttempt(eventType string, attempt int, success bool)            {}
func (n *NoOpMetricsCollector) RecordDropped(eventType string)                                              {}

// MetricPublisher wraps an EventPublisher with metrics collection
type MetricPublisher struct {
	publisher EventPublisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher EventPublisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	start := time.Now()

	err := p.publisher.Publish(ctx, event)

	p.metrics.RecordEventProcessed(event.EventType, err == nil, time.Since(start))
	return err
}

// Stats is a snapshot of StatsCollector counters
type Stats struct {
	Published     uint64            `json:"published"`
	Failed        uint64            `json:"failed"`
	Retries       uint64            `json:"retries"`
	Dropped       uint64            `json:"dropped"`
	ByType        map[string]uint64 `json:"by_type"`
	LastPublished time.Time         `json:"last_published"`
	MeanLatency   time.Duration     `json:"mean_latency"`
}

// StatsCollector keeps in-process counters that the health endpoint reports
type StatsCollector struct {
	mu           sync.Mutex
	stats        Stats
	totalLatency time.Duration
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{stats: Stats{ByType: make(map[string]uint64)}}
}

func (c *StatsCollector) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !success {
		c.stats.Failed++
		return
	}
	c.stats.Published++
	c.stats.ByType[eventType]++
	c.stats.LastPublished = time.Now()
	c.totalLatency += duration
}

func (c *StatsCollector) RecordPublishAttempt(eventType string, attempt int, success bool) {
	if attempt <= 1 {
		return
	}
	c.mu.Lock()
	c.stats.Retries++
	c.mu.Unlock()
}

func (c *StatsCollector) RecordDropped(eventType string) {
	c.mu.Lock()
	c.stats.Dropped++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters
func (c *StatsCollector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.ByType = make(map[string]uint64, len(c.stats.ByType))
	for k, v := range c.stats.ByType {
		out.ByType[k] = v
	}
	if c.stats.Published > 0 {
		out.MeanLatency = c.totalLatency / time.Duration(c.stats.Published)
	}
	return out
}
