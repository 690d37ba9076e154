package dao

import (
	"context"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

func driverKey(id int64) domain.EntityKey {
	return domain.EntityKey{JoinKeys: []string{"driver_id"}, Values: []interface{}{id}}
}

func driverSchema() TableSchema {
	return TableSchema{
		Project:  "demo",
		Name:     "driver_stats",
		JoinKeys: []string{"driver_id"},
		Fields: []domain.Field{
			{Name: "driver_id", Type: constants.FS_INT64},
			{Name: "conv_rate", Type: constants.FS_DOUBLE},
			{Name: "acc_rate", Type: constants.FS_DOUBLE},
		},
	}
}

func TestMemoryOnlineStore(t *testing.T) {
	store := NewMemoryOnlineStore()
	ts := time.UnixMilli(1700000000000)
	store.Write("demo", "driver_stats", driverKey(1), ts, map[string]interface{}{"conv_rate": 0.5, "acc_rate": 0.9})
	store.Write("demo", "driver_stats", driverKey(3), ts, map[string]interface{}{"conv_rate": 0.7})

	rows, err := store.OnlineRead(context.Background(), driverSchema(), []domain.EntityKey{driverKey(1), driverKey(2), driverKey(3)}, []string{"conv_rate", "acc_rate"})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(rows), 3)

	assert.Equal(t, rows[0].Found(), true)
	assert.Equal(t, rows[0].Features["conv_rate"], interface{}(0.5))
	assert.Equal(t, rows[0].EventTime.Equal(ts), true)

	assert.Equal(t, rows[1].Found(), false)

	assert.Equal(t, rows[2].Found(), true)
	_, hasAcc := rows[2].Features["acc_rate"]
	assert.Equal(t, hasAcc, false)
	assert.Equal(t, store.ReadCount("demo", "driver_stats"), 1)
}

func TestDecodeValue(t *testing.T) {
	v, err := decodeValue("0.25", constants.FS_DOUBLE)
	assert.Equal(t, err, nil)
	assert.Equal(t, v, interface{}(0.25))

	v, err = decodeValue([]byte("12"), constants.FS_INT64)
	assert.Equal(t, err, nil)
	assert.Equal(t, v, interface{}(int64(12)))

	v, err = decodeValue(`["a","b"]`, constants.FS_ARRAY_STRING)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.([]string), []string{"a", "b"})

	v, err = decodeValue([]interface{}{1.0, 2.0}, constants.FS_ARRAY_INT64)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.([]int64), []int64{1, 2})

	v, err = decodeValue(nil, constants.FS_STRING)
	assert.Equal(t, err, nil)
	assert.Equal(t, v, nil)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, keyString(driverKey(7)), "7")
	composite := domain.EntityKey{JoinKeys: []string{"user_id", "item_id"}, Values: []interface{}{"u1", int64(9)}}
	assert.Equal(t, keyString(composite), "u1|9")

	left := domain.EntityKey{JoinKeys: []string{"a", "b"}, Values: []interface{}{"a|b", "c"}}
	right := domain.EntityKey{JoinKeys: []string{"a", "b"}, Values: []interface{}{"a", "b|c"}}
	assert.Equal(t, keyString(left), `a\|b|c`)
	assert.Equal(t, keyString(right), `a|b\|c`)
	if keyString(left) == keyString(right) {
		t.Fatal("distinct composite keys share one string")
	}
	slash := domain.EntityKey{JoinKeys: []string{"a", "b"}, Values: []interface{}{`x\`, "|y"}}
	assert.Equal(t, keyString(slash), `x\\|\|y`)
}

func TestNewOnlineStoreUnknownType(t *testing.T) {
	if _, err := NewOnlineStore(context.Background(), DaoConfig{DatasourceType: "cassandra"}); err == nil {
		t.Fatal("expected unsupported datasource error")
	}
	store, err := NewOnlineStore(context.Background(), DaoConfig{DatasourceType: constants.Datasource_Type_Memory})
	assert.Equal(t, err, nil)
	_, ok := store.(*MemoryOnlineStore)
	assert.Equal(t, ok, true)
}

func TestLoadDaoConfig(t *testing.T) {
	t.Setenv("FEATURESTORE_DATASOURCE_TYPE", "redis")
	t.Setenv("FEATURESTORE_REDIS_ADDR", "127.0.0.1:6379")
	cfg, err := LoadDaoConfig()
	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.DatasourceType, "redis")
	assert.Equal(t, cfg.DatasourceName, "default")
	assert.Equal(t, cfg.RedisAddr, "127.0.0.1:6379")
}
