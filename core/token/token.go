// Package token issues and verifies the HS256 bearer tokens of tenants.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for tokens that fail parsing or verification.
var ErrInvalid = errors.New("invalid token")

// Config holds configuration for bearer tokens.
type Config struct {
	// Secret signs the tokens (HS256).
	Secret string `mapstructure:"jwt_secret" default:"change-me"`
	// TTLHours is the token lifetime.
	TTLHours int `mapstructure:"token_ttl_hours" default:"168"`
	// Issuer is written to and required in the iss claim.
	Issuer string `mapstructure:"issuer" default:"commerce-sync"`
}

// Claims identify a tenant.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and verifies tenant tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager creates a manager from the configuration.
func NewManager(cfg Config) *Manager {
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{secret: []byte(cfg.Secret), ttl: ttl, issuer: cfg.Issuer, now: time.Now}
}

// Issue signs a token for the tenant.
func (m *Manager) Issue(tenantID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		TenantID: tenantID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, expiry and issuer of raw.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.TenantID == "" {
		return nil, fmt.Errorf("%w: missing tenant", ErrInvalid)
	}
	return claims, nil
}
