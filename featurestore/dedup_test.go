package featurestore

import (
	"testing"

	"fortio.org/assert"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

func TestUniqueEntityKeysPartition(t *testing.T) {
	keys := []keyColumn{{joinKey: "driver_id", column: "driver_id", valueType: constants.FS_INT64}}
	columns := map[string][]interface{}{"driver_id": {int64(3), 1, "3", int64(2), int32(1)}}

	set, err := uniqueEntityKeys(keys, columns, 5)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(set.keys))
	assert.Equal(t, [][]int{{1, 4}, {3}, {0, 2}}, set.indexes)
	assert.Equal(t, []interface{}{int64(1)}, set.keys[0].Values)

	seen := make(map[int]bool)
	for _, rows := range set.indexes {
		for _, row := range rows {
			if seen[row] {
				t.Fatalf("row %d in two groups", row)
			}
			seen[row] = true
		}
	}
	assert.Equal(t, 5, len(seen))
}

func TestUniqueEntityKeysComposite(t *testing.T) {
	keys := []keyColumn{
		{joinKey: "user_id", column: "uid", valueType: constants.FS_STRING},
		{joinKey: "item_id", column: "item_id", valueType: constants.FS_INT64},
	}
	columns := map[string][]interface{}{
		"uid":     {"u1", "u1", "u2", "u1"},
		"item_id": {10, 11, 10, 10},
	}

	set, err := uniqueEntityKeys(keys, columns, 4)
	assert.NoError(t, err)
	assert.Equal(t, [][]int{{0, 3}, {1}, {2}}, set.indexes)
	assert.Equal(t, []string{"user_id", "item_id"}, set.keys[0].JoinKeys)
}

func TestUniqueEntityKeysEmpty(t *testing.T) {
	set, err := uniqueEntityKeys(nil, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(set.keys))
}
