package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/models/credibility"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

var fixedNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

// stubStore is an in-memory istore.Store for service tests.
type stubStore struct {
	business *types.Business
	docs     []types.Document
	proofs   []types.VerificationProof

	mu            sync.Mutex
	businessReads int
	docListReads  int
}

func (s *stubStore) Businesses() istore.BusinessStore { return (*stubBusinessStore)(s) }
func (s *stubStore) Documents() istore.DocumentStore  { return (*stubDocumentStore)(s) }
func (s *stubStore) Proofs() istore.ProofStore        { return (*stubProofStore)(s) }

type stubBusinessStore stubStore

func (s *stubBusinessStore) GetPool() *pgxpool.Pool { return nil }
func (s *stubBusinessStore) CreateBusiness(ctx context.Context, b *types.Business) (string, error) {
	return "", nil
}
func (s *stubBusinessStore) GetBusiness(ctx context.Context, id string) (*types.Business, error) {
	s.mu.Lock()
	s.businessReads++
	s.mu.Unlock()
	if s.business == nil || s.business.ID != id {
		return nil, istore.ErrNotFound
	}
	b := *s.business
	return &b, nil
}
func (s *stubBusinessStore) GetBusinessByOwner(ctx context.Context, ownerID string) (*types.Business, error) {
	if s.business == nil || s.business.OwnerID != ownerID {
		return nil, istore.ErrNotFound
	}
	b := *s.business
	return &b, nil
}
func (s *stubBusinessStore) UpdateBusiness(ctx context.Context, id string, update *types.BusinessUpdate) error {
	return nil
}

type stubDocumentStore stubStore

func (s *stubDocumentStore) GetPool() *pgxpool.Pool { return nil }
func (s *stubDocumentStore) CreateDocument(ctx context.Context, doc *types.Document) (string, error) {
	return "", nil
}
func (s *stubDocumentStore) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	return nil, istore.ErrNotFound
}
func (s *stubDocumentStore) ListDocuments(ctx context.Context, businessID string) ([]types.Document, error) {
	s.mu.Lock()
	s.docListReads++
	s.mu.Unlock()
	return s.docs, nil
}
func (s *stubDocumentStore) UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error {
	return nil
}
func (s *stubDocumentStore) SetExtractionResult(ctx context.Context, id string, result *types.ExtractionResult) error {
	return nil
}
func (s *stubDocumentStore) DeleteDocument(ctx context.Context, id string) error { return nil }

type stubProofStore stubStore

func (s *stubProofStore) GetPool() *pgxpool.Pool { return nil }
func (s *stubProofStore) ListProofs(ctx context.Context, businessID string) ([]types.VerificationProof, error) {
	return s.proofs, nil
}

// capturingPublisher records published events.
type capturingPublisher struct {
	mu     sync.Mutex
	events []types.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, businessID string, event types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
func (p *capturingPublisher) Subscribe(ctx context.Context, businessID string, userID string, eventTypes ...types.EventType) (<-chan types.Event, error) {
	return nil, nil
}
func (p *capturingPublisher) Unsubscribe(ctx context.Context, businessID string, userID string) error {
	return nil
}

func (p *capturingPublisher) eventTypes() []types.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type capturingNotifier struct {
	mu    sync.Mutex
	calls []types.TrustTier
}

func (n *capturingNotifier) SendTierChangeEmail(ctx context.Context, business types.Business, oldTier, newTier types.TrustTier) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, newTier)
	return nil
}

const testBusinessID = "biz-1"

func newTestCredibilityService(t *testing.T, store *stubStore) (*CredibilityService, redismock.ClientMock, *capturingPublisher, *capturingNotifier) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	publisher := &capturingPublisher{}
	notifier := &capturingNotifier{}
	svc := NewCredibilityServiceWithRegistry(
		store, client, publisher, notifier,
		config.ScoringConfig{CacheTTLSeconds: 300, RecalculateDebounceSeconds: 10},
		prometheus.NewRegistry(),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, publisher, notifier
}

func emptyCorpusStore() *stubStore {
	return &stubStore{
		business: &types.Business{
			ID:      testBusinessID,
			OwnerID: "user-1",
			Name:    "Test Kirana",
			Email:   "owner@example.com",
		},
	}
}

func expectedScoreJSON(t *testing.T, store *stubStore) []byte {
	t.Helper()
	score := credibility.Score(store.docs, store.proofs, fixedNow)
	data, err := json.Marshal(&score)
	require.NoError(t, err)
	return data
}

func TestGetScoreCacheMissComputesAndCaches(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, _, _ := newTestCredibilityService(t, store)

	key := scoreCacheKeyPrefix + testBusinessID
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, expectedScoreJSON(t, store), 300*time.Second).SetVal("OK")

	score, err := svc.GetScore(context.Background(), testBusinessID)
	require.NoError(t, err)
	assert.Equal(t, 0, score.TotalScore)
	assert.Equal(t, types.TierSelfDeclared, score.TrustTier.Tier)
	assert.Equal(t, 1, store.docListReads)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScoreCacheHitSkipsStore(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, _, _ := newTestCredibilityService(t, store)

	cached := credibility.Score(nil, nil, fixedNow)
	cached.TotalScore = 42
	data, err := json.Marshal(&cached)
	require.NoError(t, err)

	mock.ExpectGet(scoreCacheKeyPrefix + testBusinessID).SetVal(string(data))

	score, err := svc.GetScore(context.Background(), testBusinessID)
	require.NoError(t, err)
	assert.Equal(t, 42, score.TotalScore)
	assert.Equal(t, 0, store.docListReads)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScoreUnknownBusiness(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, _, _ := newTestCredibilityService(t, store)

	mock.ExpectGet(scoreCacheKeyPrefix + "missing").RedisNil()

	_, err := svc.GetScore(context.Background(), "missing")
	require.Error(t, err)
}

func TestRecalculatePublishesScoreEvent(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, publisher, _ := newTestCredibilityService(t, store)

	key := scoreCacheKeyPrefix + testBusinessID
	mock.ExpectSetNX(recalcDebounceKeyPrefix+testBusinessID, "1", 10*time.Second).SetVal(true)
	mock.ExpectGet(key).RedisNil() // no previous snapshot
	mock.ExpectSet(key, expectedScoreJSON(t, store), 300*time.Second).SetVal("OK")

	score, err := svc.Recalculate(context.Background(), testBusinessID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, score.TotalScore)

	require.Equal(t, []types.EventType{types.EventTypeScoreRecalculated}, publisher.eventTypes())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecalculateFiresTierChange(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, publisher, notifier := newTestCredibilityService(t, store)

	// Previous snapshot claims tier 3; the empty corpus recomputes to tier 0.
	previous := credibility.Score(nil, nil, fixedNow)
	previous.TrustTier.Tier = types.TierVerified
	prevData, err := json.Marshal(&previous)
	require.NoError(t, err)

	key := scoreCacheKeyPrefix + testBusinessID
	mock.ExpectSetNX(recalcDebounceKeyPrefix+testBusinessID, "1", 10*time.Second).SetVal(true)
	mock.ExpectGet(key).SetVal(string(prevData))
	mock.ExpectSet(key, expectedScoreJSON(t, store), 300*time.Second).SetVal("OK")

	_, err = svc.Recalculate(context.Background(), testBusinessID, "user-1")
	require.NoError(t, err)

	assert.Equal(t,
		[]types.EventType{types.EventTypeScoreRecalculated, types.EventTypeTierChanged},
		publisher.eventTypes())
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, types.TierSelfDeclared, notifier.calls[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecalculateDebouncedServesCachedSnapshot(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, publisher, _ := newTestCredibilityService(t, store)

	cached := credibility.Score(nil, nil, fixedNow)
	cached.TotalScore = 17
	data, err := json.Marshal(&cached)
	require.NoError(t, err)

	mock.ExpectSetNX(recalcDebounceKeyPrefix+testBusinessID, "1", 10*time.Second).SetVal(false)
	mock.ExpectGet(scoreCacheKeyPrefix + testBusinessID).SetVal(string(data))

	score, err := svc.Recalculate(context.Background(), testBusinessID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 17, score.TotalScore)
	assert.Empty(t, publisher.eventTypes())
	assert.Equal(t, 0, store.docListReads)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateDropsCacheKey(t *testing.T) {
	store := emptyCorpusStore()
	svc, mock, _, _ := newTestCredibilityService(t, store)

	mock.ExpectDel(scoreCacheKeyPrefix + testBusinessID).SetVal(1)

	svc.Invalidate(context.Background(), testBusinessID)
	require.NoError(t, mock.ExpectationsWereMet())
}
