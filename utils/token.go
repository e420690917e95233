package utils

import (
	"context"
	"sync"
	"time"
)

// Logged-out tokens are blacklisted until their natural expiry. Redis holds
// the entries when configured; otherwise they live in this process map.
var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// BlacklistToken voids a token until the given expiry.
func BlacklistToken(token string, until time.Time) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}

	if client := GetRedis(); client != nil {
		if err := client.Set(context.Background(), blacklistKey(token), "1", ttl).Err(); err == nil {
			return
		}
		// Redis write failed; keep the token out via the local map.
	}

	blacklistMutex.Lock()
	blacklistedTokens[token] = until
	blacklistMutex.Unlock()
}

// IsTokenBlacklisted reports whether the token was logged out.
func IsTokenBlacklisted(token string) bool {
	if client := GetRedis(); client != nil {
		n, err := client.Exists(context.Background(), blacklistKey(token)).Result()
		if err == nil && n > 0 {
			return true
		}
	}

	blacklistMutex.RLock()
	until, exists := blacklistedTokens[token]
	blacklistMutex.RUnlock()
	if !exists {
		return false
	}
	if time.Now().Before(until) {
		return true
	}

	blacklistMutex.Lock()
	delete(blacklistedTokens, token)
	blacklistMutex.Unlock()
	return false
}

func sweepBlacklist() {
	now := time.Now()
	blacklistMutex.Lock()
	for token, until := range blacklistedTokens {
		if now.After(until) {
			delete(blacklistedTokens, token)
		}
	}
	blacklistMutex.Unlock()
}

// StartBlacklistSweeper periodically drops expired entries from the local
// fallback map. Redis entries expire on their own. Close the returned
// channel to stop the sweeper.
func StartBlacklistSweeper(interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweepBlacklist()
			case <-stop:
				return
			}
		}
	}()
	return stop
}
