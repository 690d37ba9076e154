package featurestore

import (
	"bytes"
	"sort"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

// uniqueKeySet holds the distinct keys of a table in sorted order. indexes[i]
// lists the request rows carrying keys[i]; together they cover every row once.
type uniqueKeySet struct {
	keys    []domain.EntityKey
	indexes [][]int
}

func uniqueEntityKeys(keys []keyColumn, columns map[string][]interface{}, numRows int) (*uniqueKeySet, error) {
	joinKeys := make([]string, len(keys))
	for i, k := range keys {
		joinKeys[i] = k.joinKey
	}

	rowKeys := make([]domain.EntityKey, numRows)
	sortKeys := make([][]byte, numRows)
	for row := 0; row < numRows; row++ {
		values := make([]interface{}, len(keys))
		for i, k := range keys {
			v, err := utils.Coerce(columns[k.column][row], k.valueType)
			if err != nil {
				return nil, invalidRequest("join key %s at row %d: %v", k.column, row, err)
			}
			values[i] = v
		}
		rowKeys[row] = domain.EntityKey{JoinKeys: joinKeys, Values: values}
		sortKeys[row] = rowKeys[row].SortKey()
	}

	order := make([]int, numRows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bytes.Compare(sortKeys[order[a]], sortKeys[order[b]]) < 0
	})

	set := &uniqueKeySet{}
	for i, row := range order {
		if i == 0 || !bytes.Equal(sortKeys[row], sortKeys[order[i-1]]) {
			set.keys = append(set.keys, rowKeys[row])
			set.indexes = append(set.indexes, nil)
		}
		last := len(set.indexes) - 1
		set.indexes[last] = append(set.indexes[last], row)
	}
	return set, nil
}
