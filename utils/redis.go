package utils

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	rdb   *redis.Client
	rdbMu sync.RWMutex
)

// ConnectRedis wires the optional Redis client used for the token blacklist.
// An empty addr is not an error: the in-process fallback stays in place.
func ConnectRedis(addr, password string, db int) error {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	rdbMu.Lock()
	rdb = client
	rdbMu.Unlock()
	return nil
}

// GetRedis returns the Redis client, or nil when none is configured.
func GetRedis() *redis.Client {
	rdbMu.RLock()
	defer rdbMu.RUnlock()
	return rdb
}

func CloseRedis() {
	rdbMu.Lock()
	defer rdbMu.Unlock()
	if rdb != nil {
		_ = rdb.Close()
		rdb = nil
	}
}
