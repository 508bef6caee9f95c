package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSCache is a thread-safe cache for JWKS keys fetched from the Supabase
// auth endpoint.
type JWKSCache struct {
	keys        map[string]jwk.Key // kid -> key mapping
	expiresAt   time.Time
	mutex       sync.RWMutex
	jwksURL     string
	anonKey     string
	ttl         time.Duration
	refreshLock sync.Mutex
	httpClient  *http.Client
}

// NewJWKSCache creates a cache that fetches keys lazily on first use.
func NewJWKSCache(jwksURL, anonKey string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		keys:      make(map[string]jwk.Key),
		expiresAt: time.Now(), // expire immediately to force initial fetch
		jwksURL:   jwksURL,
		anonKey:   anonKey,
		ttl:       ttl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetKey returns a key by its ID (kid), fetching/refreshing the JWKS if
// necessary.
func (c *JWKSCache) GetKey(kid string) (jwk.Key, error) {
	log := logger.GetLogger()

	c.mutex.RLock()
	key, found := c.keys[kid]
	isExpired := time.Now().After(c.expiresAt)
	c.mutex.RUnlock()

	if found && !isExpired {
		return key, nil
	}

	log.Infow("JWKS cache miss or expired, refreshing", "kid", kid, "expired", isExpired)
	refreshedKey, err := c.refreshCache(kid)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh JWKS cache for kid %s: %w", kid, err)
	}

	if refreshedKey == nil {
		// Another goroutine's refresh may have picked the key up.
		c.mutex.RLock()
		key, found = c.keys[kid]
		c.mutex.RUnlock()
		if !found {
			return nil, fmt.Errorf("key with kid '%s' not found in JWKS after refresh", kid)
		}
		return key, nil
	}
	return refreshedKey, nil
}

// refreshCache fetches the latest keys from the JWKS endpoint. The
// refreshLock prevents a fetch stampede; all keys are cached, the targetKid
// is returned directly if present.
func (c *JWKSCache) refreshCache(targetKid string) (jwk.Key, error) {
	log := logger.GetLogger()

	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	c.mutex.RLock()
	if !time.Now().After(c.expiresAt) {
		key := c.keys[targetKid]
		c.mutex.RUnlock()
		return key, nil
	}
	c.mutex.RUnlock()

	if c.jwksURL == "" || c.anonKey == "" {
		return nil, fmt.Errorf("JWKS URL or anon key is not configured")
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", c.jwksURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("JWKS endpoint returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response body: %w", err)
	}

	keySet, err := jwk.Parse(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS keys: %w", err)
	}

	newKeys := make(map[string]jwk.Key)
	var foundTargetKey jwk.Key

	it := keySet.Keys(context.Background())
	for it.Next(context.Background()) {
		pair := it.Pair()
		key := pair.Value.(jwk.Key)
		kid := key.KeyID()
		if kid == "" {
			log.Warnw("Found JWK without a 'kid', skipping")
			continue
		}
		newKeys[kid] = key
		if kid == targetKid {
			foundTargetKey = key
		}
	}

	c.mutex.Lock()
	c.keys = newKeys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mutex.Unlock()

	log.Infow("JWKS cache refreshed",
		"keys_cached", len(newKeys),
		"target_kid_found", foundTargetKey != nil,
	)
	return foundTargetKey, nil
}
