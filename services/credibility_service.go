package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/models/credibility"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	scoreCacheKeyPrefix     = "credibility:score:"
	recalcDebounceKeyPrefix = "credibility:debounce:"
)

// TierNotifier is the slice of the email service the credibility service
// needs. Kept narrow so tests can stub it.
type TierNotifier interface {
	SendTierChangeEmail(ctx context.Context, business types.Business, oldTier, newTier types.TrustTier) error
}

type CredibilityMetrics struct {
	computeDuration prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	recalculations  prometheus.Counter
	tierChanges     prometheus.Counter
}

func initCredibilityMetrics(reg prometheus.Registerer) *CredibilityMetrics {
	m := &CredibilityMetrics{
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vyaparsathi_score_compute_duration_seconds",
			Help:    "Time taken to compute a credibility score",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_score_cache_hits_total",
			Help: "Credibility score snapshots served from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_score_cache_misses_total",
			Help: "Credibility score snapshots computed fresh",
		}),
		recalculations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_score_recalculations_total",
			Help: "Explicit score recalculation requests served",
		}),
		tierChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_tier_changes_total",
			Help: "Trust tier transitions observed during recalculation",
		}),
	}
	reg.MustRegister(m.computeDuration, m.cacheHits, m.cacheMisses, m.recalculations, m.tierChanges)
	return m
}

// CredibilityService computes deterministic credibility snapshots from the
// stored document and proof corpus. The scoring itself lives in
// models/credibility and is pure; this service adds caching, debouncing,
// event fan-out and tier-change notification around it.
type CredibilityService struct {
	store          istore.Store
	redisClient    *redis.Client
	eventPublisher types.EventPublisher
	notifier       TierNotifier
	cfg            config.ScoringConfig
	metrics        *CredibilityMetrics
	log            *zap.SugaredLogger

	// now is swappable in tests; production uses time.Now.
	now func() time.Time
}

func NewCredibilityService(
	store istore.Store,
	redisClient *redis.Client,
	eventPublisher types.EventPublisher,
	notifier TierNotifier,
	cfg config.ScoringConfig,
) *CredibilityService {
	return NewCredibilityServiceWithRegistry(store, redisClient, eventPublisher, notifier, cfg, prometheus.DefaultRegisterer)
}

func NewCredibilityServiceWithRegistry(
	store istore.Store,
	redisClient *redis.Client,
	eventPublisher types.EventPublisher,
	notifier TierNotifier,
	cfg config.ScoringConfig,
	reg prometheus.Registerer,
) *CredibilityService {
	return &CredibilityService{
		store:          store,
		redisClient:    redisClient,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		cfg:            cfg,
		metrics:        initCredibilityMetrics(reg),
		log:            logger.GetLogger(),
		now:            time.Now,
	}
}

// GetScore returns the current credibility snapshot for a business, serving
// from the Redis cache when a fresh snapshot exists.
func (s *CredibilityService) GetScore(ctx context.Context, businessID string) (*types.CredibilityScore, error) {
	if cached := s.cachedScore(ctx, businessID); cached != nil {
		s.metrics.cacheHits.Inc()
		return cached, nil
	}
	s.metrics.cacheMisses.Inc()

	score, err := s.computeScore(ctx, businessID)
	if err != nil {
		return nil, err
	}
	s.cacheScore(ctx, businessID, score)
	return score, nil
}

// Recalculate forces a fresh computation, publishes a score event, and fires
// tier-change notifications when the trust tier moved. Requests arriving
// inside the debounce window return the last snapshot without recomputing,
// which keeps bulk uploads from triggering a recomputation storm.
func (s *CredibilityService) Recalculate(ctx context.Context, businessID string, userID string) (*types.CredibilityScore, error) {
	debounced, err := s.isDebounced(ctx, businessID)
	if err != nil {
		s.log.Warnw("Debounce check failed, proceeding with recalculation",
			"error", err, "businessID", businessID)
	}
	if debounced {
		if cached := s.cachedScore(ctx, businessID); cached != nil {
			s.log.Debugw("Recalculation debounced, serving cached snapshot",
				"businessID", businessID)
			return cached, nil
		}
		// No snapshot to fall back on, compute anyway.
	}

	previous := s.cachedScore(ctx, businessID)

	score, err := s.computeScore(ctx, businessID)
	if err != nil {
		return nil, err
	}
	s.metrics.recalculations.Inc()
	s.cacheScore(ctx, businessID, score)

	s.publishScoreEvent(ctx, businessID, userID, score)

	if previous != nil && previous.TrustTier.Tier != score.TrustTier.Tier {
		s.handleTierChange(ctx, businessID, userID, previous.TrustTier.Tier, score.TrustTier.Tier)
	}

	return score, nil
}

// Invalidate drops the cached snapshot so the next read recomputes. Called
// on every document mutation.
func (s *CredibilityService) Invalidate(ctx context.Context, businessID string) {
	if err := s.redisClient.Del(ctx, scoreCacheKeyPrefix+businessID).Err(); err != nil {
		s.log.Warnw("Failed to invalidate score cache",
			"error", err, "businessID", businessID)
	}
}

func (s *CredibilityService) computeScore(ctx context.Context, businessID string) (*types.CredibilityScore, error) {
	start := time.Now()
	defer func() {
		s.metrics.computeDuration.Observe(time.Since(start).Seconds())
	}()

	if _, err := s.store.Businesses().GetBusiness(ctx, businessID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.BusinessNotFound(businessID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	docs, err := s.store.Documents().ListDocuments(ctx, businessID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	proofs, err := s.store.Proofs().ListProofs(ctx, businessID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	score := credibility.Score(docs, proofs, s.now().UTC())

	s.log.Infow("Credibility score computed",
		"businessID", businessID,
		"totalScore", score.TotalScore,
		"tier", score.TrustTier.Tier,
		"documents", len(docs),
		"proofs", len(proofs),
		"anomalies", len(score.Anomalies),
	)
	return &score, nil
}

func (s *CredibilityService) cachedScore(ctx context.Context, businessID string) *types.CredibilityScore {
	data, err := s.redisClient.Get(ctx, scoreCacheKeyPrefix+businessID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnw("Score cache read failed", "error", err, "businessID", businessID)
		}
		return nil
	}
	var score types.CredibilityScore
	if err := json.Unmarshal(data, &score); err != nil {
		s.log.Warnw("Discarding corrupt cached score", "error", err, "businessID", businessID)
		return nil
	}
	return &score
}

func (s *CredibilityService) cacheScore(ctx context.Context, businessID string, score *types.CredibilityScore) {
	data, err := json.Marshal(score)
	if err != nil {
		s.log.Errorw("Failed to marshal score for caching", "error", err, "businessID", businessID)
		return
	}
	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	if err := s.redisClient.Set(ctx, scoreCacheKeyPrefix+businessID, data, ttl).Err(); err != nil {
		s.log.Warnw("Failed to cache score", "error", err, "businessID", businessID)
	}
}

// isDebounced reports whether a recalculation happened inside the configured
// window. The debounce key is claimed with SetNX; the first caller through
// wins and subsequent callers are debounced until the key expires.
func (s *CredibilityService) isDebounced(ctx context.Context, businessID string) (bool, error) {
	if s.cfg.RecalculateDebounceSeconds <= 0 {
		return false, nil
	}
	window := time.Duration(s.cfg.RecalculateDebounceSeconds) * time.Second
	claimed, err := s.redisClient.SetNX(ctx, recalcDebounceKeyPrefix+businessID, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("debounce claim failed: %w", err)
	}
	return !claimed, nil
}

func (s *CredibilityService) publishScoreEvent(ctx context.Context, businessID, userID string, score *types.CredibilityScore) {
	payload, err := json.Marshal(map[string]interface{}{
		"totalScore":      score.TotalScore,
		"confidenceLevel": score.ConfidenceLevel,
		"tier":            score.TrustTier.Tier,
		"lastCalculated":  score.LastCalculated,
	})
	if err != nil {
		s.log.Errorw("Failed to marshal score event payload", "error", err)
		return
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			Type:       types.EventTypeScoreRecalculated,
			BusinessID: businessID,
			UserID:     userID,
			Timestamp:  s.now().UTC(),
		},
		Metadata: types.EventMetadata{Source: "credibility_service"},
		Payload:  payload,
	}
	if err := s.eventPublisher.Publish(ctx, businessID, event); err != nil {
		s.log.Errorw("Failed to publish score event",
			"error", err, "businessID", businessID)
	}
}

func (s *CredibilityService) handleTierChange(ctx context.Context, businessID, userID string, oldTier, newTier types.TrustTier) {
	s.metrics.tierChanges.Inc()
	s.log.Infow("Trust tier changed",
		"businessID", businessID,
		"oldTier", oldTier,
		"newTier", newTier,
	)

	payload, err := json.Marshal(map[string]interface{}{
		"oldTier":      oldTier,
		"newTier":      newTier,
		"oldTierLabel": oldTier.Label(),
		"newTierLabel": newTier.Label(),
	})
	if err != nil {
		s.log.Errorw("Failed to marshal tier change payload", "error", err)
		return
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			Type:       types.EventTypeTierChanged,
			BusinessID: businessID,
			UserID:     userID,
			Timestamp:  s.now().UTC(),
		},
		Metadata: types.EventMetadata{Source: "credibility_service"},
		Payload:  payload,
	}
	if err := s.eventPublisher.Publish(ctx, businessID, event); err != nil {
		s.log.Errorw("Failed to publish tier change event",
			"error", err, "businessID", businessID)
	}

	if s.notifier == nil {
		return
	}
	business, err := s.store.Businesses().GetBusiness(ctx, businessID)
	if err != nil {
		s.log.Warnw("Could not load business for tier notification",
			"error", err, "businessID", businessID)
		return
	}
	if err := s.notifier.SendTierChangeEmail(ctx, *business, oldTier, newTier); err != nil {
		s.log.Errorw("Tier change email failed",
			"error", err, "businessID", businessID)
	}
}
