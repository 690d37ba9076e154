package dao

import (
	"context"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/sqldb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

func newSQLiteStore(t *testing.T, name string) (OnlineStore, *sqldb.SQLDB) {
	store, err := NewOnlineStore(context.Background(), DaoConfig{
		DatasourceType: constants.Datasource_Type_Sqlite,
		DatasourceName: name,
		DSN:            ":memory:",
	})
	if err != nil {
		t.Fatal(err)
	}
	db, err := sqldb.GetSQLDB(name)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqldb.RemoveSQLDB(name) })
	return store, db
}

func TestSQLOnlineStoreSingleKey(t *testing.T) {
	store, db := newSQLiteStore(t, "sqlite_single")
	stmts := []string{
		`CREATE TABLE demo_driver_stats_online (driver_id INTEGER PRIMARY KEY, conv_rate REAL, acc_rate REAL, event_timestamp INTEGER)`,
		`INSERT INTO demo_driver_stats_online VALUES (1, 0.5, NULL, 1700000000000)`,
		`INSERT INTO demo_driver_stats_online VALUES (3, 0.7, 0.9, 1700000001000)`,
	}
	for _, stmt := range stmts {
		if _, err := db.DB.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	schema := driverSchema()
	schema.EventTimeField = "event_timestamp"
	rows, err := store.OnlineRead(context.Background(), schema, []domain.EntityKey{driverKey(1), driverKey(2), driverKey(3)}, []string{"conv_rate", "acc_rate"})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(rows), 3)

	assert.Equal(t, rows[0].Found(), true)
	assert.Equal(t, rows[0].Features["conv_rate"], interface{}(0.5))
	_, hasAcc := rows[0].Features["acc_rate"]
	assert.Equal(t, hasAcc, false)
	assert.Equal(t, rows[0].EventTime.Equal(time.UnixMilli(1700000000000)), true)

	assert.Equal(t, rows[1].Found(), false)

	assert.Equal(t, rows[2].Features["acc_rate"], interface{}(0.9))
}

func TestSQLOnlineStoreCompositeKey(t *testing.T) {
	store, db := newSQLiteStore(t, "sqlite_composite")
	stmts := []string{
		`CREATE TABLE demo_user_item_online (user_id TEXT, item_id INTEGER, clicks INTEGER)`,
		`INSERT INTO demo_user_item_online VALUES ('u1', 10, 4)`,
		`INSERT INTO demo_user_item_online VALUES ('u1', 11, 5)`,
		`INSERT INTO demo_user_item_online VALUES ('u2', 10, 6)`,
	}
	for _, stmt := range stmts {
		if _, err := db.DB.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	schema := TableSchema{
		Project:  "demo",
		Name:     "user_item",
		JoinKeys: []string{"user_id", "item_id"},
		Fields: []domain.Field{
			{Name: "user_id", Type: constants.FS_STRING},
			{Name: "item_id", Type: constants.FS_INT64},
			{Name: "clicks", Type: constants.FS_INT64},
		},
	}
	key := func(user string, item int64) domain.EntityKey {
		return domain.EntityKey{JoinKeys: schema.JoinKeys, Values: []interface{}{user, item}}
	}
	rows, err := store.OnlineRead(context.Background(), schema, []domain.EntityKey{key("u2", 10), key("u1", 11), key("u2", 11)}, []string{"clicks"})
	assert.Equal(t, err, nil)
	assert.Equal(t, rows[0].Features["clicks"], interface{}(int64(6)))
	assert.Equal(t, rows[1].Features["clicks"], interface{}(int64(5)))
	assert.Equal(t, rows[2].Found(), false)
}
