package middleware

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like 'sub') is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
	// ErrValidationMethodUnavailable is returned if neither HS256 nor JWKS can be attempted.
	ErrValidationMethodUnavailable = errors.New("no validation method available for token")
	// ErrJWKSKeyNotFound is returned if the key specified by 'kid' is not found in JWKS.
	ErrJWKSKeyNotFound = errors.New("jwks key not found")
)

// Validator defines the interface for validating tokens.
type Validator interface {
	Validate(tokenString string) (string, error)
}

// JWTValidator validates Supabase access tokens using the project's static
// HS256 secret and/or its JWKS endpoint.
type JWTValidator struct {
	jwksCache    *JWKSCache
	staticSecret []byte
}

var _ Validator = (*JWTValidator)(nil)

// NewJWTValidator creates a validator instance from the Supabase settings.
func NewJWTValidator(cfg *config.SupabaseConfig) (Validator, error) {
	log := logger.GetLogger()
	var staticSecret []byte
	var jwksCache *JWKSCache

	if cfg.JWTSecret != "" {
		staticSecret = []byte(cfg.JWTSecret)
		log.Info("JWT Validator: HS256 validation enabled")
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" && cfg.URL != "" {
		jwksURL = fmt.Sprintf("%s/auth/v1/jwks", cfg.URL)
	}
	if jwksURL != "" && cfg.AnonKey != "" {
		jwksCache = NewJWKSCache(jwksURL, cfg.AnonKey, 15*time.Minute)
		log.Infow("JWT Validator: JWKS validation enabled", "url", jwksURL)
	}

	if staticSecret == nil && jwksCache == nil {
		return nil, fmt.Errorf("JWT validator configuration error: at least one validation method (HS256 secret or JWKS URL+key) must be configured")
	}

	return &JWTValidator{
		jwksCache:    jwksCache,
		staticSecret: staticSecret,
	}, nil
}

// Validate parses and validates the token using the configured methods. It
// tries HS256 first, then JWKS when the token names a key ID. Returns the
// subject claim as the user ID.
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	log := logger.GetLogger()

	var staticErr error
	if len(v.staticSecret) > 0 {
		userID, err := v.validateHS256(tokenString)
		if err == nil {
			return userID, nil
		}
		staticErr = err
	}

	var jwksErr error
	if v.jwksCache != nil {
		kid, alg, err := v.extractKIDAndAlg(tokenString)
		if err != nil {
			if staticErr != nil {
				return "", staticErr
			}
			return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		}

		if kid != "" {
			userID, err := v.validateJWKS(tokenString, kid, alg)
			if err == nil {
				return userID, nil
			}
			jwksErr = err
			log.Debugw("JWKS validation failed", "kid", kid, "error", jwksErr)
		}
	}

	if errors.Is(staticErr, ErrTokenExpired) || errors.Is(jwksErr, ErrTokenExpired) {
		return "", ErrTokenExpired
	}
	if errors.Is(jwksErr, ErrJWKSKeyNotFound) {
		return "", jwksErr
	}
	if staticErr != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, staticErr)
	}
	if jwksErr != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, jwksErr)
	}
	return "", ErrValidationMethodUnavailable
}

// extractKIDAndAlg parses the JWT header without validation to get the key
// ID and algorithm.
func (v *JWTValidator) extractKIDAndAlg(tokenString string) (kid string, alg string, err error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("invalid token format, expected 3 parts, got %d", len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to decode token header: %w", err)
	}

	var headerMap map[string]interface{}
	if err := json.Unmarshal(headerBytes, &headerMap); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal token header JSON: %w", err)
	}

	if k, ok := headerMap["kid"].(string); ok {
		kid = k
	}
	if a, ok := headerMap["alg"].(string); ok {
		alg = a
	}
	return kid, alg, nil
}

// validateHS256 attempts validation using the static secret.
func (v *JWTValidator) validateHS256(tokenString string) (string, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.staticSecret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("hs256 parse/validation failed: %w", err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", ErrTokenMissingClaim
	}
	return sub, nil
}

// validateJWKS attempts validation using a key fetched from the JWKS cache.
func (v *JWTValidator) validateJWKS(tokenString string, kid string, alg string) (string, error) {
	log := logger.GetLogger()

	key, err := v.jwksCache.GetKey(kid)
	if err != nil {
		if strings.Contains(err.Error(), "not found in JWKS") {
			return "", fmt.Errorf("%w: %w", ErrJWKSKeyNotFound, err)
		}
		return "", fmt.Errorf("failed to get key '%s' from jwks cache: %w", kid, err)
	}

	keyAlg := key.Algorithm()
	headerAlg := jwa.SignatureAlgorithm(alg)
	if alg != "" && keyAlg != jwa.NoSignature && headerAlg.String() != keyAlg.String() {
		log.Warnw("Token 'alg' header mismatches JWK algorithm",
			"header_alg", headerAlg.String(),
			"key_alg", keyAlg.String(),
			"kid", kid)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(key.Algorithm(), key),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("jwks validation failed for kid '%s': %w", kid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", ErrTokenMissingClaim
	}
	return sub, nil
}
