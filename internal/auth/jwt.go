package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired marks a token whose signature is valid but whose
	// expiry has passed; the middleware may attempt a silent refresh.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures and malformed payloads.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	AccountID   uint `json:"aid"`
	AccessLevel int  `json:"level"`
	jwt.RegisteredClaims
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret        []byte
	issuer        string
	expiry        time.Duration
	refreshExpiry time.Duration
}

// NewManager creates a new JWT manager. The secret is mandatory; there is
// no fallback key.
func NewManager(secret, issuer string, expiry, refreshExpiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	if refreshExpiry <= 0 {
		refreshExpiry = time.Hour * 24 * 7
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "biblioteca"
	}
	return &Manager{
		secret:        []byte(trimmed),
		issuer:        issuer,
		expiry:        expiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// GenerateToken issues the short-lived access token.
func (m *Manager) GenerateToken(accountID uint, accessLevel int) (string, time.Time, error) {
	return m.generate(accountID, accessLevel, m.expiry)
}

// GenerateRefreshToken issues the long-lived refresh token.
func (m *Manager) GenerateRefreshToken(accountID uint, accessLevel int) (string, time.Time, error) {
	return m.generate(accountID, accessLevel, m.refreshExpiry)
}

func (m *Manager) generate(accountID uint, accessLevel int, ttl time.Duration) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if accountID == 0 {
		return "", time.Time{}, errors.New("invalid account for token generation")
	}
	now := time.Now().UTC()
	expiry := now.Add(ttl)

	claims := Claims{
		AccountID:   accountID,
		AccessLevel: accessLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", accountID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ParseToken validates the token and returns claims. Expired tokens are
// reported as ErrTokenExpired so callers can offer a refresh.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
