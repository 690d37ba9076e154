package dao

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/natskv"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

const natsKVReadConcurrency = 16

// NatsKVValue is the JSON document stored per entity key.
type NatsKVValue struct {
	EventTime int64                  `json:"ts"`
	Features  map[string]interface{} `json:"features"`
}

// NatsKVOnlineStore keeps one JetStream key value bucket per project and one
// entry per table and entity key.
type NatsKVOnlineStore struct {
	client *natskv.KVClient

	mu      sync.Mutex
	buckets map[string]jetstream.KeyValue
}

func NewNatsKVOnlineStore(client *natskv.KVClient) *NatsKVOnlineStore {
	return &NatsKVOnlineStore{client: client, buckets: make(map[string]jetstream.KeyValue)}
}

// NatsKVBucket maps a project name onto the bucket name alphabet.
func NatsKVBucket(project string) string {
	return "featurestore_" + strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, project)
}

func NatsKVKey(table string, key domain.EntityKey) string {
	return table + "." + hex.EncodeToString(key.Serialize())
}

func (s *NatsKVOnlineStore) bucket(ctx context.Context, project string) (jetstream.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kv, ok := s.buckets[project]; ok {
		return kv, nil
	}
	kv, err := s.client.Bucket(ctx, NatsKVBucket(project))
	if err != nil {
		return nil, err
	}
	s.buckets[project] = kv
	return kv, nil
}

func (s *NatsKVOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	kv, err := s.bucket(ctx, table.Project)
	if err != nil {
		return nil, fmt.Errorf("natskv bucket %s: %w", table.Project, err)
	}

	result := make([]FeatureRow, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(natsKVReadConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			entry, err := kv.Get(gctx, NatsKVKey(table.Name, key))
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("natskv get %s: %w", table.Name, err)
			}
			var value NatsKVValue
			if err := json.Unmarshal(entry.Value(), &value); err != nil {
				return fmt.Errorf("natskv decode %s: %w", table.Name, err)
			}
			row := FeatureRow{Features: make(map[string]interface{}, len(features))}
			for _, feature := range features {
				raw, ok := value.Features[feature]
				if !ok || raw == nil {
					continue
				}
				v, err := decodeValue(raw, table.FieldType(feature))
				if err != nil {
					return fmt.Errorf("decode %s.%s: %w", table.Name, feature, err)
				}
				row.Features[feature] = v
			}
			if value.EventTime > 0 {
				row.EventTime = time.UnixMilli(value.EventTime)
			}
			result[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
