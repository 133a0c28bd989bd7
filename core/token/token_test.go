package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret", TTLHours: 1, Issuer: "commerce-sync"})

	raw, err := m.Issue("tenant-1", "owner@shop.com")
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "owner@shop.com", claims.Email)
	assert.Equal(t, "tenant-1", claims.Subject)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret", TTLHours: 1, Issuer: "commerce-sync"})
	raw, err := m.Issue("tenant-1", "owner@shop.com")
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewManager(Config{Secret: "other", TTLHours: 1, Issuer: "commerce-sync"})
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewManager(Config{Secret: "s3cret", TTLHours: 1, Issuer: "someone-else"})
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("Expired", func(t *testing.T) {
		later := NewManager(Config{Secret: "s3cret", TTLHours: 1, Issuer: "commerce-sync"})
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := NewManager(Config{Secret: "x"})
	assert.Equal(t, 7*24*time.Hour, m.ttl)
}
