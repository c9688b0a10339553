// Package auth issues and parses unlock tokens. An unlock token grants a
// caller an access tier above free; anything wrong with the token simply
// resolves to the free tier.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// UnlockClaims represents the custom claims of an unlock token
type UnlockClaims struct {
	jwt.RegisteredClaims
	Tier  string `json:"tier"`
	Email string `json:"email,omitempty"`
}

// UnlockToken is an issued token together with its metadata
type UnlockToken struct {
	Token     string           `json:"token"`
	TokenID   string           `json:"token_id"`
	Tier      audit.AccessTier `json:"tier"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// UnlockService handles unlock token operations
type UnlockService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewUnlockService creates a new UnlockService
func NewUnlockService(cfg config.UnlockConfig) *UnlockService {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &UnlockService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
	}
}

// Issue generates a signed unlock token for the given tier.
func (s *UnlockService) Issue(tier audit.AccessTier, email string) (*UnlockToken, error) {
	if !tier.IsValid() {
		return nil, ErrInvalidClaims
	}

	now := time.Now()
	jti := uuid.New().String()

	claims := &UnlockClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Tier:  tier.String(),
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &UnlockToken{
		Token:     signed,
		TokenID:   jti,
		Tier:      tier,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// Parse validates a token string and returns its claims.
func (s *UnlockService) Parse(tokenString string) (*UnlockClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UnlockClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UnlockClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if !audit.AccessTier(claims.Tier).IsValid() {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// ResolveTier maps a token string to an access tier. A missing, invalid
// or expired token is the free tier, never an error; an audit must not
// fail because the caller presented a stale token.
func (s *UnlockService) ResolveTier(tokenString string) audit.AccessTier {
	if tokenString == "" {
		return audit.TierFree
	}
	claims, err := s.Parse(tokenString)
	if err != nil {
		return audit.TierFree
	}
	return audit.AccessTier(claims.Tier)
}
