package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

const sqlBatchSize = 500

// SQLOnlineStore reads <project>_<table>_online tables with one column per
// join key and feature. Works against MySQL, Hologres and SQLite.
type SQLOnlineStore struct {
	db     *sql.DB
	flavor sqlbuilder.Flavor
}

func NewSQLOnlineStore(db *sql.DB, datasourceType string) (*SQLOnlineStore, error) {
	var flavor sqlbuilder.Flavor
	switch datasourceType {
	case constants.Datasource_Type_Mysql:
		flavor = sqlbuilder.MySQL
	case constants.Datasource_Type_Hologres:
		flavor = sqlbuilder.PostgreSQL
	case constants.Datasource_Type_Sqlite:
		flavor = sqlbuilder.SQLite
	default:
		return nil, fmt.Errorf("not supported sql datasource type: %s", datasourceType)
	}
	return &SQLOnlineStore{db: db, flavor: flavor}, nil
}

func (s *SQLOnlineStore) buildQuery(table TableSchema, keys []domain.EntityKey, features []string) (string, []interface{}) {
	columns := make([]string, 0, len(table.JoinKeys)+len(features)+1)
	for _, k := range table.JoinKeys {
		columns = append(columns, s.flavor.Quote(k))
	}
	for _, f := range features {
		columns = append(columns, s.flavor.Quote(f))
	}
	if table.EventTimeField != "" {
		columns = append(columns, s.flavor.Quote(table.EventTimeField))
	}

	sb := s.flavor.NewSelectBuilder()
	sb.Select(columns...).From(s.flavor.Quote(table.OnlineTableName()))

	if len(table.JoinKeys) == 1 {
		values := make([]interface{}, len(keys))
		for i, key := range keys {
			values[i] = key.Values[0]
		}
		sb.Where(sb.In(s.flavor.Quote(table.JoinKeys[0]), values...))
	} else {
		conds := make([]string, len(keys))
		for i, key := range keys {
			eqs := make([]string, len(table.JoinKeys))
			for j, k := range table.JoinKeys {
				eqs[j] = sb.Equal(s.flavor.Quote(k), key.Values[j])
			}
			conds[i] = sb.And(eqs...)
		}
		sb.Where(sb.Or(conds...))
	}
	return sb.Build()
}

// normalizeKey coerces key values to the stored join key types so that keys
// built from request input and keys scanned from rows serialize alike.
func normalizeKey(table TableSchema, values []interface{}) (string, error) {
	coerced := make([]interface{}, len(values))
	for i, v := range values {
		c, err := decodeValue(v, table.FieldType(table.JoinKeys[i]))
		if err != nil {
			return "", err
		}
		coerced[i] = c
	}
	return string(domain.EntityKey{JoinKeys: table.JoinKeys, Values: coerced}.Serialize()), nil
}

func (s *SQLOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	positions := make(map[string][]int, len(keys))
	for i, key := range keys {
		k, err := normalizeKey(table, key.Values)
		if err != nil {
			return nil, fmt.Errorf("sql key %s: %w", table.Name, err)
		}
		positions[k] = append(positions[k], i)
	}

	result := make([]FeatureRow, len(keys))
	for start := 0; start < len(keys); start += sqlBatchSize {
		end := start + sqlBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.readBatch(ctx, table, keys[start:end], features, positions, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *SQLOnlineStore) readBatch(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string, positions map[string][]int, result []FeatureRow) error {
	query, args := s.buildQuery(table, keys, features)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", table.OnlineTableName(), err)
	}
	defer rows.Close()

	numKeys := len(table.JoinKeys)
	width := numKeys + len(features)
	if table.EventTimeField != "" {
		width++
	}
	for rows.Next() {
		values := make([]interface{}, width)
		ptrs := make([]interface{}, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan %s: %w", table.OnlineTableName(), err)
		}

		k, err := normalizeKey(table, values[:numKeys])
		if err != nil {
			return fmt.Errorf("sql key %s: %w", table.Name, err)
		}
		idx, ok := positions[k]
		if !ok {
			continue
		}

		row := FeatureRow{Features: make(map[string]interface{}, len(features))}
		for j, feature := range features {
			v, err := decodeValue(values[numKeys+j], table.FieldType(feature))
			if err != nil {
				return fmt.Errorf("decode %s.%s: %w", table.Name, feature, err)
			}
			if v != nil {
				row.Features[feature] = v
			}
		}
		if table.EventTimeField != "" {
			if ts, ok := utils.ToTime(values[width-1]); ok {
				row.EventTime = ts
			}
		}
		for _, i := range idx {
			result[i] = row
		}
	}
	return rows.Err()
}
