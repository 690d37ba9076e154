package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

const demoYAML = `
projects:
  demo:
    entities:
      - name: driver
        join_key: driver_id
        value_type: INT64
    standard_tables:
      - name: driver_stats
        entities: [driver]
        ttl: 24h
        event_time_field: event_timestamp
        features:
          - {name: conv_rate, type: DOUBLE}
          - {name: acc_rate, type: double}
    computed_tables:
      - name: conv_rate_pct
        features:
          - {name: conv_rate_pct, type: DOUBLE}
        sources:
          - name: driver_stats
            features: [conv_rate]
        expressions:
          conv_rate_pct: conv_rate * 100
    feature_bundles:
      - name: model_v1
        projections:
          - name: driver_stats
            name_alias: ds
            features: [acc_rate]
            join_key_map: {driver_id: driver_ref}
          - name: conv_rate_pct
`

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileRegistry(t *testing.T) {
	r := NewFileRegistry(writeFile(t, demoYAML))
	ctx := context.Background()

	entities, err := r.ListEntities(ctx, "demo")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(entities), 1)
	assert.Equal(t, entities[0].JoinKey, "driver_id")
	assert.Equal(t, entities[0].ValueType, constants.FS_INT64)

	tables, err := r.ListTables(ctx, "demo")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(tables), 2)
	stats := tables[0].(*domain.StandardTable)
	assert.Equal(t, stats.Online, true)
	assert.Equal(t, stats.TTL, 24*time.Hour)
	assert.Equal(t, stats.Features[1].Type, constants.FS_DOUBLE)

	pct := tables[1].(*domain.ComputedTable)
	assert.Equal(t, pct.Sources[0].Features, []domain.Field{{Name: "conv_rate", Type: constants.FS_DOUBLE}})
	assert.Equal(t, pct.Expressions["conv_rate_pct"], "conv_rate * 100")

	bundles, err := r.ListFeatureBundles(ctx, "demo")
	assert.Equal(t, err, nil)
	assert.Equal(t, bundles[0].FeatureReferences(), []string{"ds:acc_rate", "conv_rate_pct:conv_rate_pct"})
	assert.Equal(t, bundles[0].Projections[0].JoinKeyName("driver_id"), "driver_ref")

	if _, err := r.ListTables(ctx, "missing"); err == nil {
		t.Fatal("expected unknown project error")
	}
}

func TestFileRegistryUnknownBundleFeature(t *testing.T) {
	r := NewFileRegistry(writeFile(t, `
projects:
  demo:
    standard_tables:
      - name: t
        features: [{name: a, type: INT64}]
    feature_bundles:
      - name: b
        projections:
          - name: t
            features: [nope]
`))
	if _, err := r.ListFeatureBundles(context.Background(), "demo"); err == nil {
		t.Fatal("expected unknown feature error")
	}
}

func TestStaticRegistry(t *testing.T) {
	r := NewStaticRegistry()
	r.AddEntity("demo", &domain.Entity{Name: "driver", JoinKey: "driver_id", ValueType: constants.FS_INT64})
	r.AddTable("demo", &domain.StandardTable{Name: "driver_stats"})
	r.AddTable("demo", &domain.StandardTable{Name: "driver_stats", Online: true})

	tables, err := r.ListTables(context.Background(), "demo")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(tables), 1)
	assert.Equal(t, tables[0].(*domain.StandardTable).Online, true)
	assert.Equal(t, r.Fetches(), int64(1))

	boom := errors.New("boom")
	r.SetError(boom)
	_, err = r.ListEntities(context.Background(), "demo")
	assert.Equal(t, err, boom)
}
