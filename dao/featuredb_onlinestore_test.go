package dao

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/featuredb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/featuredb/fdbserverfb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

// encodeFeatureDBValue writes conv_rate DOUBLE, city STRING, tags ARRAY<STRING>, event_timestamp TIMESTAMP.
func encodeFeatureDBValue(convRate *float64, city string, tags []string, ts int64) []byte {
	b := []byte{FeatureDB_Protocal_Version_F, FeatureDB_IfNull_Flag_Version_1}
	if convRate == nil {
		b = append(b, 1)
	} else {
		b = append(b, 0)
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(*convRate))
	}
	b = append(b, 0)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(city)))
	b = append(b, city...)

	b = append(b, 0)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(tags)))
	if len(tags) > 0 {
		offset := uint32(0)
		b = binary.LittleEndian.AppendUint32(b, offset)
		for _, tag := range tags {
			offset += uint32(len(tag))
			b = binary.LittleEndian.AppendUint32(b, offset)
		}
		for _, tag := range tags {
			b = append(b, tag...)
		}
	}

	b = append(b, 0)
	b = binary.LittleEndian.AppendUint64(b, uint64(ts))
	return b
}

func TestFeatureDBOnlineStore(t *testing.T) {
	rate := 0.5
	stored := map[string][]byte{
		"1": encodeFeatureDBValue(&rate, "hangzhou", []string{"a", "bc"}, 1700000000000),
		"3": encodeFeatureDBValue(nil, "beijing", nil, 1700000001000),
	}

	var gotPath, gotAuth, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Auth")
		gotToken = r.Header.Get("Authorization")

		var body struct {
			Keys []string `json:"keys"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		values := make([][]byte, len(body.Keys))
		for i, k := range body.Keys {
			values[i] = stored[k]
		}
		block := fdbserverfb.BuildRecordBlock(values)
		frame := binary.LittleEndian.AppendUint32(nil, uint32(len(block)))
		w.Write(append(frame, block...))
	}))
	defer server.Close()

	client := featuredb.NewFeatureDBClient(server.URL, "token", featuredb.Signature("user", "pwd"))
	store, err := NewFeatureDBOnlineStore(client, "db1")
	assert.Equal(t, err, nil)

	schema := TableSchema{
		Project:  "demo",
		Name:     "driver_profile",
		JoinKeys: []string{"driver_id"},
		Fields: []domain.Field{
			{Name: "driver_id", Type: constants.FS_INT64},
			{Name: "conv_rate", Type: constants.FS_DOUBLE},
			{Name: "city", Type: constants.FS_STRING},
			{Name: "tags", Type: constants.FS_ARRAY_STRING},
			{Name: "event_timestamp", Type: constants.FS_TIMESTAMP},
		},
		EventTimeField: "event_timestamp",
	}
	rows, err := store.OnlineRead(context.Background(), schema, []domain.EntityKey{driverKey(1), driverKey(2), driverKey(3)}, []string{"conv_rate", "tags"})
	assert.Equal(t, err, nil)
	assert.Equal(t, gotPath, "/api/v1/tables/db1/demo/driver_profile/batch_get_kv2")
	assert.Equal(t, gotAuth, featuredb.Signature("user", "pwd"))
	assert.Equal(t, gotToken, "token")

	assert.Equal(t, len(rows), 3)
	assert.Equal(t, rows[0].Features["conv_rate"], interface{}(0.5))
	assert.Equal(t, rows[0].Features["tags"].([]string), []string{"a", "bc"})
	_, hasCity := rows[0].Features["city"]
	assert.Equal(t, hasCity, false)
	assert.Equal(t, rows[0].EventTime.Equal(time.UnixMilli(1700000000000)), true)

	assert.Equal(t, rows[1].Found(), false)

	assert.Equal(t, rows[2].Found(), true)
	_, hasRate := rows[2].Features["conv_rate"]
	assert.Equal(t, hasRate, false)
	assert.Equal(t, rows[2].Features["tags"].([]string), []string{})
}

func TestFeatureDBOnlineStoreStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"bad token"}`))
	}))
	defer server.Close()

	store, err := NewFeatureDBOnlineStore(featuredb.NewFeatureDBClient(server.URL, "token", "sig"), "db1")
	assert.Equal(t, err, nil)
	if _, err := store.OnlineRead(context.Background(), driverSchema(), []domain.EntityKey{driverKey(1)}, []string{"conv_rate"}); err == nil {
		t.Fatal("expected status error")
	}
}
