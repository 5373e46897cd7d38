package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// DefaultTokenTTL is the absolute lifetime of a session token. Tokens are never refreshed.
const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, logger *zap.Logger) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, logger: logger, now: time.Now}
}

// Claims describes the token payload: the profile snapshot plus registered claims.
// ID carries the backend session id.
type Claims struct {
	domain.SessionUser
	jwt.RegisteredClaims
}

// SessionID returns the backend session bound to the token.
func (c *Claims) SessionID() string {
	return c.ID
}

// TTL returns the lifetime applied to issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs the profile snapshot for the given backend session.
func (tm *TokenManager) Issue(user domain.SessionUser, sessionID string) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		SessionUser: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token and returns its claims, or nil when the token is malformed,
// carries a bad signature, has expired or was signed with another key. The reason is
// logged for diagnostics only.
func (tm *TokenManager) Verify(tokenStr string) *Claims {
	claims, err := tm.parse(tokenStr)
	if err != nil {
		tm.logger.Debug("session token rejected", zap.String("reason", rejectReason(err)), zap.Error(err))
		return nil
	}
	return claims
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "invalid"
	}
}
