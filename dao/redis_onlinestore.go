package dao

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

// RedisEventTimeField is the hash field holding the write time in unix milliseconds.
const RedisEventTimeField = "_ts"

// RedisOnlineStore keeps one hash per entity key. Feature values are stored
// as strings and decoded with the table schema.
type RedisOnlineStore struct {
	client *redis.Client
}

func NewRedisOnlineStore(client *redis.Client) *RedisOnlineStore {
	return &RedisOnlineStore{client: client}
}

// RedisKeyPrefix is four hex chars of md5(project_table_online) and "_".
func RedisKeyPrefix(table TableSchema) string {
	return utils.Md5(table.OnlineTableName())[:4] + "_"
}

func RedisKey(table TableSchema, key domain.EntityKey) string {
	return RedisKeyPrefix(table) + keyString(key)
}

func (s *RedisOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	fields := make([]string, 0, len(features)+1)
	fields = append(fields, features...)
	fields = append(fields, RedisEventTimeField)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, RedisKey(table, key), fields...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis hmget %s: %w", table.Name, err)
	}

	result := make([]FeatureRow, len(keys))
	for i, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("redis hmget %s: %w", table.Name, err)
		}
		found := false
		for _, v := range values {
			if v != nil {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		row := FeatureRow{Features: make(map[string]interface{}, len(features))}
		for j, feature := range features {
			if values[j] == nil {
				continue
			}
			v, err := decodeValue(values[j], table.FieldType(feature))
			if err != nil {
				return nil, fmt.Errorf("redis decode %s.%s: %w", table.Name, feature, err)
			}
			row.Features[feature] = v
		}
		if ts, ok := values[len(features)].(string); ok {
			if ms, err := strconv.ParseInt(ts, 10, 64); err == nil {
				row.EventTime = time.UnixMilli(ms)
			}
		}
		result[i] = row
	}
	return result, nil
}
