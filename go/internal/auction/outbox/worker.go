package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned by Enqueue when the relay is saturated
var ErrQueueFull = errors.New("outbox queue full")

type Config struct {
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:  1024,
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Worker relays events from auction sessions to a publisher off the engine's
// path, retrying transient failures.
type Worker struct {
	inner     EventPublisher
	publisher EventPublisher
	metrics   MetricsCollector
	config    Config

	queue chan OutboxEvent

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(publisher EventPublisher, metrics MetricsCollector, cfg Config) *Worker {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Worker{
		inner:     publisher,
		publisher: NewMetricPublisher(publisher, metrics),
		metrics:   metrics,
		config:    cfg,
		queue:     make(chan OutboxEvent, cfg.QueueSize),
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Int("queue_size", w.config.QueueSize).
		Int("max_retries", w.config.MaxRetries).
		Msg("outbox worker started")

	return nil
}

// Stop publishes what is already queued and then returns
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

// Enqueue hands an event to the relay without blocking the caller
func (w *Worker) Enqueue(event OutboxEvent) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.metrics.RecordDropped(event.EventType)
		log.Warn().
			Str("session_id", event.SessionID).
			Str("event_type", event.EventType).
			Msg("outbox queue full, dropping event")
		return ErrQueueFull
	}
}

// Pending returns the number of queued events
func (w *Worker) Pending() int {
	return len(w.queue)
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			w.drain(ctx)
			return
		case event := <-w.queue:
			w.process(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.process(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, event OutboxEvent) {
	if err := w.publishWithRetry(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("session_id", event.SessionID).
			Msg("failed to publish event")
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, event OutboxEvent) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		err := w.publisher.Publish(ctx, event)
		w.metrics.RecordPublishAttempt(event.EventType, attempt+1, err == nil)
		if err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", event.ID).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}

		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
