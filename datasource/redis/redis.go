package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	Name   string
	Client *redis.Client
}

var (
	mu             sync.RWMutex
	redisInstances = make(map[string]*RedisClient)
)

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  200 * time.Millisecond,
		WriteTimeout: 200 * time.Millisecond,
		PoolSize:     100,
	})
}

// RegisterRedisClient pings the client and stores it under name.
func RegisterRedisClient(ctx context.Context, name string, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("register redis %s: %w", name, err)
	}
	mu.Lock()
	defer mu.Unlock()
	redisInstances[name] = &RedisClient{Name: name, Client: client}
	return nil
}

func GetRedisClient(name string) (*RedisClient, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := redisInstances[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("RedisClient not found, name:%s", name)
}

func (r *RedisClient) GetClient() *redis.Client {
	return r.Client
}
