package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisEventService implements the EventPublisher interface using Redis Pub/Sub.
// Events for a business are published on the "business:{businessID}" channel.
type RedisEventService struct {
	redisClient      *redis.Client
	log              *zap.SugaredLogger
	metrics          *EventMetrics
	handlers         map[types.EventType][]types.EventHandler
	mu               sync.RWMutex
	subscriptions    map[string]subscription // Key: businessID:userID
	publishTimeout   time.Duration
	subscribeTimeout time.Duration
	bufferSize       int
}

var _ types.EventPublisher = (*RedisEventService)(nil)

type EventMetrics struct {
	publishLatency   prometheus.Histogram
	subscribeLatency prometheus.Histogram
	errorCount       prometheus.Counter
	eventCount       *prometheus.CounterVec
}

type subscription struct {
	pubsub    *redis.PubSub
	cancelCtx context.CancelFunc
}

func initEventMetrics(reg prometheus.Registerer) *EventMetrics {
	m := &EventMetrics{
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vyaparsathi_event_publish_duration_seconds",
			Help:    "Time taken to publish events",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		subscribeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vyaparsathi_event_subscribe_duration_seconds",
			Help:    "Time taken to establish subscriptions",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_event_errors_total",
			Help: "Total number of event processing errors",
		}),
		eventCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vyaparsathi_events_processed_total",
			Help: "Total number of events processed",
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.publishLatency, m.subscribeLatency, m.errorCount, m.eventCount)
	return m
}

// NewRedisEventService returns a new instance of RedisEventService with
// default timeouts.
func NewRedisEventService(redisClient *redis.Client) *RedisEventService {
	return NewRedisEventServiceWithConfig(redisClient, config.EventServiceConfig{
		PublishTimeoutSeconds: 5,
		EventBufferSize:       100,
	})
}

// NewRedisEventServiceWithConfig builds the service from the EVENT_SERVICE
// config section. Zero values fall back to defaults.
func NewRedisEventServiceWithConfig(redisClient *redis.Client, cfg config.EventServiceConfig) *RedisEventService {
	return NewRedisEventServiceWithRegistry(redisClient, cfg, prometheus.DefaultRegisterer)
}

func NewRedisEventServiceWithRegistry(redisClient *redis.Client, cfg config.EventServiceConfig, reg prometheus.Registerer) *RedisEventService {
	publishTimeout := time.Duration(cfg.PublishTimeoutSeconds) * time.Second
	if publishTimeout <= 0 {
		publishTimeout = 5 * time.Second
	}
	subscribeTimeout := time.Duration(cfg.SubscribeTimeoutSeconds) * time.Second
	if subscribeTimeout <= 0 {
		subscribeTimeout = 10 * time.Second
	}
	bufferSize := cfg.EventBufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &RedisEventService{
		redisClient:      redisClient,
		log:              logger.GetLogger(),
		metrics:          initEventMetrics(reg),
		handlers:         make(map[types.EventType][]types.EventHandler),
		subscriptions:    make(map[string]subscription),
		publishTimeout:   publishTimeout,
		subscribeTimeout: subscribeTimeout,
		bufferSize:       bufferSize,
	}
}

// Publish serializes the event and publishes it on the business channel.
func (r *RedisEventService) Publish(ctx context.Context, businessID string, event types.Event) error {
	startTime := time.Now()
	defer func() {
		r.metrics.publishLatency.Observe(time.Since(startTime).Seconds())
	}()

	// Set default values if missing
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Version == 0 {
		event.Version = 1
	}

	if err := event.Validate(); err != nil {
		r.metrics.errorCount.Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	channel := fmt.Sprintf("business:%s", businessID)

	data, err := json.Marshal(event)
	if err != nil {
		r.metrics.errorCount.Inc()
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	r.metrics.eventCount.WithLabelValues(string(event.Type)).Inc()

	r.log.Debugw("Publishing event",
		"channel", channel,
		"eventType", event.Type,
		"eventID", event.ID,
		"correlationID", event.Metadata.CorrelationID,
		"payloadSize", len(data),
	)

	publishCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	if err := r.redisClient.Publish(publishCtx, channel, data).Err(); err != nil {
		r.metrics.errorCount.Inc()
		return fmt.Errorf("failed to publish event: %w", err)
	}

	// Process locally registered handlers
	r.mu.RLock()
	handlers := r.handlers[event.Type]
	r.mu.RUnlock()

	for _, handler := range handlers {
		handler := handler
		go func() {
			handlerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := handler(handlerCtx, event); err != nil {
				r.log.Errorw("Event handler failed",
					"error", err,
					"eventType", event.Type,
					"eventID", event.ID,
				)
			}
		}()
	}

	return nil
}

// Subscribe registers a consumer for a business channel. An existing
// subscription for the same business/user pair is replaced.
func (r *RedisEventService) Subscribe(ctx context.Context, businessID string, userID string, filters ...types.EventType) (<-chan types.Event, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.subscribeLatency.Observe(time.Since(startTime).Seconds())
	}()

	subscriptionKey := fmt.Sprintf("%s:%s", businessID, userID)
	r.mu.Lock()
	if _, exists := r.subscriptions[subscriptionKey]; exists {
		r.mu.Unlock()
		if err := r.Unsubscribe(ctx, businessID, userID); err != nil {
			r.log.Warnw("Failed to clean up existing subscription",
				"error", err,
				"businessID", businessID,
				"userID", userID)
		}
		r.mu.Lock()
	}
	r.mu.Unlock()

	channelName := fmt.Sprintf("business:%s", businessID)
	pubsub := r.redisClient.Subscribe(ctx, channelName)

	// Wait for the subscription confirmation so callers never stream from a
	// channel that was never established.
	confirmCtx, cancelConfirm := context.WithTimeout(ctx, r.subscribeTimeout)
	defer cancelConfirm()
	if _, err := pubsub.Receive(confirmCtx); err != nil {
		_ = pubsub.Close()
		r.metrics.errorCount.Inc()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channelName, err)
	}

	eventChan := make(chan types.Event, r.bufferSize)

	subCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.subscriptions[subscriptionKey] = subscription{
		pubsub:    pubsub,
		cancelCtx: cancel,
	}
	r.mu.Unlock()

	go r.processSubscription(subCtx, pubsub, eventChan, businessID, userID, subscriptionKey, filters)

	return eventChan, nil
}

func (r *RedisEventService) processSubscription(
	ctx context.Context,
	pubsub *redis.PubSub,
	eventChan chan types.Event,
	businessID string,
	userID string,
	subscriptionKey string,
	filters []types.EventType,
) {
	defer func() {
		close(eventChan)

		r.mu.Lock()
		delete(r.subscriptions, subscriptionKey)
		r.mu.Unlock()

		if err := pubsub.Close(); err != nil {
			r.log.Warnw("Error closing Redis pubsub", "error", err)
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.log.Infow("Redis pubsub channel closed",
					"businessID", businessID,
					"userID", userID)
				return
			}

			var event types.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.log.Errorw("Failed to unmarshal event",
					"error", err,
					"payload", msg.Payload)
				r.metrics.errorCount.Inc()
				continue
			}

			if len(filters) > 0 {
				matched := false
				for _, filter := range filters {
					if event.Type == filter {
						matched = true
						break
					}
				}
				if !matched {
					continue
				}
			}

			// Non-blocking send so a slow consumer cannot stall the loop
			select {
			case eventChan <- event:
				r.metrics.eventCount.WithLabelValues(string(event.Type)).Inc()
			default:
				r.log.Warnw("Event channel full, dropping event",
					"eventType", event.Type,
					"eventID", event.ID,
					"businessID", businessID,
					"userID", userID)
			}

		case <-ctx.Done():
			r.log.Infow("Subscription context canceled",
				"businessID", businessID,
				"userID", userID)
			return
		}
	}
}

// RegisterHandler attaches an in-process handler invoked on every
// published event of the given type.
func (r *RedisEventService) RegisterHandler(eventType types.EventType, handler types.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[eventType] = append(r.handlers[eventType], handler)
	r.log.Infow("Registered event handler", "eventType", eventType)
}

// Shutdown closes all active subscriptions.
func (r *RedisEventService) Shutdown(ctx context.Context) error {
	r.log.Info("Shutting down event service")

	r.mu.Lock()
	for key, sub := range r.subscriptions {
		r.log.Debugw("Closing subscription during shutdown", "key", key)
		sub.cancelCtx()
		if err := sub.pubsub.Close(); err != nil {
			r.log.Warnw("Error closing subscription", "key", key, "error", err)
		}
	}
	r.subscriptions = make(map[string]subscription)
	r.mu.Unlock()

	return nil
}

func (r *RedisEventService) HealthCheck(ctx context.Context) error {
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("event service unhealthy: %w", err)
	}
	return nil
}

func (r *RedisEventService) Unsubscribe(ctx context.Context, businessID string, userID string) error {
	key := fmt.Sprintf("%s:%s", businessID, userID)

	r.mu.Lock()
	sub, exists := r.subscriptions[key]
	if !exists {
		r.mu.Unlock()
		return nil
	}

	delete(r.subscriptions, key)
	r.mu.Unlock()

	sub.cancelCtx()

	if err := sub.pubsub.Close(); err != nil {
		r.log.Errorw("Failed to close Redis subscription",
			"error", err,
			"businessID", businessID,
			"userID", userID)
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	r.log.Debugw("Successfully unsubscribed",
		"businessID", businessID,
		"userID", userID)

	return nil
}
