package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitTestService(t *testing.T) (*RateLimitService, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	svc := NewRateLimitService(client, config.RateLimitConfig{
		UploadsPerWindow: 5,
		WindowSeconds:    3600,
	})
	return svc, mock
}

func TestRateLimitService_CheckLimit_UnderLimit(t *testing.T) {
	svc, mock := newRateLimitTestService(t)

	mock.ExpectIncr("rate_limit:api:user-1").SetVal(3)
	mock.ExpectExpire("rate_limit:api:user-1", time.Minute).SetVal(true)

	allowed, retryAfter, err := svc.CheckLimit(context.Background(), "api:user-1", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitService_CheckLimit_OverLimit(t *testing.T) {
	svc, mock := newRateLimitTestService(t)

	mock.ExpectIncr("rate_limit:api:user-1").SetVal(6)
	mock.ExpectExpire("rate_limit:api:user-1", time.Minute).SetVal(true)
	mock.ExpectTTL("rate_limit:api:user-1").SetVal(42 * time.Second)

	allowed, retryAfter, err := svc.CheckLimit(context.Background(), "api:user-1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 42*time.Second, retryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitService_CheckLimit_RedisError(t *testing.T) {
	svc, mock := newRateLimitTestService(t)

	mock.ExpectIncr("rate_limit:api:user-1").SetErr(errors.New("connection refused"))

	_, _, err := svc.CheckLimit(context.Background(), "api:user-1", 5, time.Minute)
	assert.Error(t, err)
}

func TestRateLimitService_CheckUploadLimit_UsesConfiguredWindow(t *testing.T) {
	svc, mock := newRateLimitTestService(t)

	mock.ExpectIncr("rate_limit:uploads:biz-1").SetVal(1)
	mock.ExpectExpire("rate_limit:uploads:biz-1", time.Hour).SetVal(true)

	allowed, _, err := svc.CheckUploadLimit(context.Background(), "biz-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitService_CheckUploadLimit_QuotaExhausted(t *testing.T) {
	svc, mock := newRateLimitTestService(t)

	mock.ExpectIncr("rate_limit:uploads:biz-1").SetVal(6)
	mock.ExpectExpire("rate_limit:uploads:biz-1", time.Hour).SetVal(true)
	mock.ExpectTTL("rate_limit:uploads:biz-1").SetVal(30 * time.Minute)

	allowed, retryAfter, err := svc.CheckUploadLimit(context.Background(), "biz-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 30*time.Minute, retryAfter)
}
