package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "hostel-app", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "tokens carry a unique jti")
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	// Two logins in the same instant still mint distinct tokens.
	second, err := GenerateToken(42)
	require.NoError(t, err)
	assert.NotEqual(t, token, second)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", bad)
	}
}

func TestTokenBlacklist(t *testing.T) {
	token, err := GenerateToken(7)
	require.NoError(t, err)

	assert.False(t, IsTokenBlacklisted(token))

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))

	// An already-expired blacklist entry is pointless and is not stored.
	BlacklistToken("long-dead", time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted("long-dead"))
}

func TestBlacklistSweeper(t *testing.T) {
	blacklistMutex.Lock()
	blacklistedTokens["stale-entry"] = time.Now().Add(-time.Minute)
	blacklistedTokens["live-entry"] = time.Now().Add(time.Hour)
	blacklistMutex.Unlock()

	sweepBlacklist()

	blacklistMutex.RLock()
	_, staleKept := blacklistedTokens["stale-entry"]
	_, liveKept := blacklistedTokens["live-entry"]
	blacklistMutex.RUnlock()

	assert.False(t, staleKept)
	assert.True(t, liveKept)
}
