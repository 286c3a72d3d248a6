package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// KindEmployee is the claim value distinguishing employee tokens from the
// customer tokens issued without a type claim.
const KindEmployee = "employee"

var (
	// ErrInvalidToken is returned when a token cannot be parsed or fails
	// signature or expiry verification.
	ErrInvalidToken = errors.New("token: invalid or expired")
)

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject string
	Kind    string
}

// IsEmployee reports whether the token was issued for an employee account.
func (c Claims) IsEmployee() bool {
	return c.Kind == KindEmployee
}

type tokenClaims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the bearer tokens used by both caller kinds.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager with the given signing secret and token TTL.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewManagerWithClock builds a Manager with an injected clock for tests.
func NewManagerWithClock(secret string, ttl time.Duration, now func() time.Time) *Manager {
	m := NewManager(secret, ttl)
	if now != nil {
		m.now = now
	}
	return m
}

// IssueCustomerToken signs a token identifying a customer account.
func (m *Manager) IssueCustomerToken(id string) (string, error) {
	return m.issue(id, "")
}

// IssueEmployeeToken signs a token identifying an employee account.
func (m *Manager) IssueEmployeeToken(id string) (string, error) {
	return m.issue(id, KindEmployee)
}

func (m *Manager) issue(id, kind string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("token manager is nil")
	}
	now := m.now()
	claims := tokenClaims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a signed token and returns its claims.
func (m *Manager) Verify(signed string) (Claims, error) {
	if m == nil {
		return Claims{}, fmt.Errorf("token manager is nil")
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: claims.Subject, Kind: claims.Type}, nil
}
