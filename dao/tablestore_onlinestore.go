package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-tablestore-go-sdk/tablestore"
	"golang.org/x/sync/errgroup"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

const tablestoreBatchSize = 100

// TableStoreOnlineStore reads rows with BatchGetRow, 100 keys per call. The
// join keys are the primary key columns.
type TableStoreOnlineStore struct {
	client *tablestore.TableStoreClient
}

func NewTableStoreOnlineStore(client *tablestore.TableStoreClient) *TableStoreOnlineStore {
	return &TableStoreOnlineStore{client: client}
}

func primaryKeyValue(v interface{}, t constants.FSType) (interface{}, error) {
	switch t {
	case constants.FS_INT32, constants.FS_INT64:
		c, err := utils.Coerce(v, constants.FS_INT64)
		if err != nil {
			return nil, err
		}
		return c, nil
	case constants.FS_STRING:
		return utils.ToString(v, ""), nil
	case constants.FS_BYTES:
		return utils.Coerce(v, constants.FS_BYTES)
	}
	return nil, fmt.Errorf("primary key type %s is not supported by TableStore", t)
}

func (s *TableStoreOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	columns := make([]string, 0, len(features)+1)
	columns = append(columns, features...)
	if table.EventTimeField != "" {
		columns = append(columns, table.EventTimeField)
	}

	positions := make(map[string][]int, len(keys))
	for i, key := range keys {
		k, err := normalizeKey(table, key.Values)
		if err != nil {
			return nil, fmt.Errorf("tablestore key %s: %w", table.Name, err)
		}
		positions[k] = append(positions[k], i)
	}

	result := make([]FeatureRow, len(keys))
	var g errgroup.Group
	for start := 0; start < len(keys); start += tablestoreBatchSize {
		end := start + tablestoreBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		g.Go(func() error {
			// keys are distinct, so chunks write disjoint positions of result
			return s.readBatch(table, batch, columns, features, positions, result)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TableStoreOnlineStore) readBatch(table TableSchema, keys []domain.EntityKey, columns, features []string, positions map[string][]int, result []FeatureRow) error {
	mqCriteria := &tablestore.MultiRowQueryCriteria{
		TableName:    table.OnlineTableName(),
		ColumnsToGet: columns,
		MaxVersion:   1,
	}
	for _, key := range keys {
		pkToGet := new(tablestore.PrimaryKey)
		for i, name := range table.JoinKeys {
			v, err := primaryKeyValue(key.Values[i], table.FieldType(name))
			if err != nil {
				return err
			}
			pkToGet.AddPrimaryKeyColumn(name, v)
		}
		mqCriteria.AddRow(pkToGet)
	}

	batchGetReq := &tablestore.BatchGetRowRequest{}
	batchGetReq.MultiRowQueryCriteria = append(batchGetReq.MultiRowQueryCriteria, mqCriteria)
	batchGetResponse, err := s.client.BatchGetRow(batchGetReq)
	if err != nil {
		return fmt.Errorf("tablestore batch get %s: %w", table.Name, err)
	}

	for _, rowResults := range batchGetResponse.TableToRowsResult {
		for _, rowResult := range rowResults {
			if rowResult.Error.Message != "" {
				return errors.New(rowResult.Error.Message)
			}
			if len(rowResult.PrimaryKey.PrimaryKeys) == 0 {
				continue
			}
			pkValues := make(map[string]interface{}, len(rowResult.PrimaryKey.PrimaryKeys))
			for _, pk := range rowResult.PrimaryKey.PrimaryKeys {
				pkValues[pk.ColumnName] = pk.Value
			}
			values := make([]interface{}, len(table.JoinKeys))
			for i, name := range table.JoinKeys {
				values[i] = pkValues[name]
			}
			k, err := normalizeKey(table, values)
			if err != nil {
				return err
			}
			idx, ok := positions[k]
			if !ok {
				continue
			}

			row := FeatureRow{Features: make(map[string]interface{}, len(features))}
			var latest int64
			for _, column := range rowResult.Columns {
				if column.Timestamp > latest {
					latest = column.Timestamp
				}
				if column.ColumnName == table.EventTimeField {
					if ts, ok := utils.ToTime(column.Value); ok {
						row.EventTime = ts
					}
					continue
				}
				v, err := decodeValue(column.Value, table.FieldType(column.ColumnName))
				if err != nil {
					return fmt.Errorf("decode %s.%s: %w", table.Name, column.ColumnName, err)
				}
				row.Features[column.ColumnName] = v
			}
			if row.EventTime.IsZero() && latest > 0 {
				row.EventTime = time.UnixMilli(latest)
			}
			row.Features = selectFeatures(row.Features, features)
			for _, i := range idx {
				result[i] = row
			}
		}
	}
	return nil
}
