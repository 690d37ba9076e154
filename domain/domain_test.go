package domain

import (
	"bytes"
	"testing"

	"fortio.org/assert"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

func TestParseFeatureReference(t *testing.T) {
	ref, err := ParseFeatureReference("driver_stats:conv_rate")
	assert.Equal(t, err, nil)
	assert.Equal(t, ref.TableName, "driver_stats")
	assert.Equal(t, ref.FeatureName, "conv_rate")
	assert.Equal(t, ref.String(), "driver_stats:conv_rate")
	assert.Equal(t, ref.OutputName(true), "driver_stats__conv_rate")
	assert.Equal(t, ref.OutputName(false), "conv_rate")

	for _, bad := range []string{"conv_rate", "a:b:c", ":x", "x:"} {
		if _, err := ParseFeatureReference(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestEntityKeyEncoding(t *testing.T) {
	a := EntityKey{JoinKeys: []string{"driver_id"}, Values: []interface{}{int32(1)}}
	b := EntityKey{JoinKeys: []string{"driver_id"}, Values: []interface{}{int64(1)}}
	c := EntityKey{JoinKeys: []string{"driver_id"}, Values: []interface{}{"1"}}
	assert.Equal(t, bytes.Equal(a.Serialize(), b.Serialize()), true)
	assert.Equal(t, bytes.Equal(a.Serialize(), c.Serialize()), false)

	l1 := EntityKey{JoinKeys: []string{"k"}, Values: []interface{}{[]int64{1, 2}}}
	l2 := EntityKey{JoinKeys: []string{"k"}, Values: []interface{}{[]int64{1, 2}}}
	assert.Equal(t, bytes.Equal(l1.Serialize(), l2.Serialize()), true)

	m1 := EntityKey{JoinKeys: []string{"k"}, Values: []interface{}{map[string]int{"a": 1, "b": 2}}}
	m2 := EntityKey{JoinKeys: []string{"k"}, Values: []interface{}{map[string]int{"b": 2, "a": 1}}}
	assert.Equal(t, bytes.Equal(m1.Serialize(), m2.Serialize()), true)
}

func TestSortKeyOrder(t *testing.T) {
	key := func(v interface{}) []byte {
		return EntityKey{JoinKeys: []string{"k"}, Values: []interface{}{v}}.SortKey()
	}
	assert.Equal(t, bytes.Compare(key(int64(-5)), key(int64(3))) < 0, true)
	assert.Equal(t, bytes.Compare(key(-1.5), key(0.25)) < 0, true)
	assert.Equal(t, bytes.Compare(key(2.0), key(10.0)) < 0, true)
	assert.Equal(t, bytes.Compare(key(0.0), key(-0.0)), 0)
}

func TestNewProject(t *testing.T) {
	tables := []Table{
		&StandardTable{Name: "driver_stats", Entities: []string{"driver"}, Features: []Field{{Name: "conv_rate", Type: constants.FS_DOUBLE}}, Online: true},
		&ComputedTable{Name: "conv_rate_pct", Features: []Field{{Name: "conv_rate_pct", Type: constants.FS_DOUBLE}}},
		&RequestTable{Name: "req", Fields: []Field{{Name: "val", Type: constants.FS_INT64}}},
	}
	entities := []*Entity{{Name: "driver", JoinKey: "driver_id", ValueType: constants.FS_INT64}}
	p, err := NewProject("demo", tables, entities, nil)
	assert.Equal(t, err, nil)

	table, ok := p.GetTable("conv_rate_pct")
	assert.Equal(t, ok, true)
	_, isComputed := table.(*ComputedTable)
	assert.Equal(t, isComputed, true)
	assert.Equal(t, len(p.ListTables()), 3)
	assert.Equal(t, len(p.ListEntities()), 1)
	assert.Equal(t, p.GetEntity(constants.DummyEntityName).JoinKey, constants.DummyEntityId)

	_, err = NewProject("demo", append(tables, &StandardTable{Name: "Driver_Stats"}), entities, nil)
	if err == nil {
		t.Fatal("expected case insensitive duplicate error")
	}
}

func TestFeatureBundleReferences(t *testing.T) {
	b := &FeatureBundle{Name: "model_v1", Projections: []Projection{
		{Name: "driver_stats", NameAlias: "ds", Features: []Field{{Name: "conv_rate"}, {Name: "acc_rate"}}},
		{Name: "conv_rate_pct", Features: []Field{{Name: "conv_rate_pct"}}},
	}}
	assert.Equal(t, b.FeatureReferences(), []string{"ds:conv_rate", "ds:acc_rate", "conv_rate_pct:conv_rate_pct"})
}

func TestStandardTableDefaults(t *testing.T) {
	table := &StandardTable{Name: "global_stats"}
	assert.Equal(t, table.EntityNames(), []string{constants.DummyEntityName})
	p := Projection{Name: "driver_stats", JoinKeyMap: map[string]string{"driver_id": "driver"}}
	assert.Equal(t, p.JoinKeyName("driver_id"), "driver")
	assert.Equal(t, p.JoinKeyName("other"), "other")
}
