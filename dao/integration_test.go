package dao

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/natskv"
	fsredis "github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/redis"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

// These tests talk to live datasources and only run when their address is exported.

func TestRedisOnlineStore(t *testing.T) {
	addr := os.Getenv("FEATURESTORE_REDIS_ADDR")
	if addr == "" {
		t.Skip("FEATURESTORE_REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewOnlineStore(ctx, DaoConfig{DatasourceType: constants.Datasource_Type_Redis, DatasourceName: "redis_it", RedisAddr: addr})
	if err != nil {
		t.Fatal(err)
	}
	client, err := fsredis.GetRedisClient("redis_it")
	if err != nil {
		t.Fatal(err)
	}

	schema := driverSchema()
	key := RedisKey(schema, driverKey(1))
	if err := client.GetClient().HSet(ctx, key, "conv_rate", "0.5", RedisEventTimeField, "1700000000000").Err(); err != nil {
		t.Fatal(err)
	}
	defer client.GetClient().Del(ctx, key)

	rows, err := store.OnlineRead(ctx, schema, []domain.EntityKey{driverKey(1), driverKey(424242)}, []string{"conv_rate", "acc_rate"})
	assert.Equal(t, err, nil)
	assert.Equal(t, rows[0].Features["conv_rate"], interface{}(0.5))
	assert.Equal(t, rows[0].EventTime.UnixMilli(), int64(1700000000000))
	assert.Equal(t, rows[1].Found(), false)
}

func TestNatsKVOnlineStore(t *testing.T) {
	url := os.Getenv("FEATURESTORE_NATS_URL")
	if url == "" {
		t.Skip("FEATURESTORE_NATS_URL not set")
	}
	ctx := context.Background()
	store, err := NewOnlineStore(ctx, DaoConfig{DatasourceType: constants.Datasource_Type_NatsKV, DatasourceName: "nats_it", NatsURL: url})
	if err != nil {
		t.Fatal(err)
	}
	client, err := natskv.GetKVClient("nats_it")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	schema := driverSchema()
	kv, err := client.Bucket(ctx, NatsKVBucket(schema.Project))
	if err != nil {
		t.Fatal(err)
	}
	value, _ := json.Marshal(NatsKVValue{EventTime: 1700000000000, Features: map[string]interface{}{"conv_rate": 0.5}})
	if _, err := kv.Put(ctx, NatsKVKey(schema.Name, driverKey(1)), value); err != nil {
		t.Fatal(err)
	}

	rows, err := store.OnlineRead(ctx, schema, []domain.EntityKey{driverKey(1), driverKey(424242)}, []string{"conv_rate"})
	assert.Equal(t, err, nil)
	assert.Equal(t, rows[0].Features["conv_rate"], interface{}(0.5))
	assert.Equal(t, rows[1].Found(), false)
}

func TestTableStoreOnlineStore(t *testing.T) {
	endpoint := os.Getenv("FEATURESTORE_TABLESTORE_ENDPOINT")
	if endpoint == "" {
		t.Skip("FEATURESTORE_TABLESTORE_ENDPOINT not set")
	}
	cfg, err := LoadDaoConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.DatasourceType = constants.Datasource_Type_TableStore
	store, err := NewOnlineStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	// demo_driver_stats_online is expected to hold driver_id=1 and no driver_id=424242.
	rows, err := store.OnlineRead(context.Background(), driverSchema(), []domain.EntityKey{driverKey(1), driverKey(424242)}, []string{"conv_rate"})
	assert.Equal(t, err, nil)
	assert.Equal(t, rows[0].Found(), true)
	assert.Equal(t, rows[1].Found(), false)
}
