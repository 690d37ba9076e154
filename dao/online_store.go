package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

// OnlineStore reads feature rows by entity key. The result is aligned with
// keys: result[i] answers keys[i].
type OnlineStore interface {
	OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error)
}

// TableSchema describes how a table is laid out in the online store.
// Fields lists the join key columns first, then the feature columns, in
// storage order.
type TableSchema struct {
	Project        string
	Name           string
	JoinKeys       []string
	Fields         []domain.Field
	EventTimeField string
}

func (s TableSchema) FieldType(name string) constants.FSType {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return constants.FS_STRING
}

// OnlineTableName is the physical table name used by the SQL and TableStore stores.
func (s TableSchema) OnlineTableName() string {
	return fmt.Sprintf("%s_%s_online", s.Project, s.Name)
}

// FeatureRow is one read result. A nil Features map is a miss; a feature
// missing from a non-nil map was not found for that key.
type FeatureRow struct {
	EventTime time.Time
	Features  map[string]interface{}
}

func (r FeatureRow) Found() bool {
	return r.Features != nil
}

// keyString renders a composite key for stores that address rows by a
// plain string, joining the values with "|". Inside a composite key "\" and
// "|" are escaped with a backslash.
func keyString(key domain.EntityKey) string {
	if len(key.Values) == 1 {
		return utils.ToString(key.Values[0], "")
	}
	parts := make([]string, len(key.Values))
	for i, v := range key.Values {
		parts[i] = keyEscaper.Replace(utils.ToString(v, ""))
	}
	return strings.Join(parts, "|")
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)

// decodeValue converts a raw store value into the Go type of t. Strings
// holding arrays or maps are parsed as JSON.
func decodeValue(v interface{}, t constants.FSType) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok && t != constants.FS_BYTES {
		v = string(b)
	}
	s, isString := v.(string)
	switch t {
	case constants.FS_ARRAY_INT32:
		return decodeJSON[[]int32](v, s, isString)
	case constants.FS_ARRAY_INT64:
		return decodeJSON[[]int64](v, s, isString)
	case constants.FS_ARRAY_FLOAT:
		return decodeJSON[[]float32](v, s, isString)
	case constants.FS_ARRAY_DOUBLE:
		return decodeJSON[[]float64](v, s, isString)
	case constants.FS_ARRAY_STRING:
		return decodeJSON[[]string](v, s, isString)
	case constants.FS_MAP_STRING_STRING:
		return decodeJSON[map[string]string](v, s, isString)
	case constants.FS_MAP_STRING_DOUBLE:
		return decodeJSON[map[string]float64](v, s, isString)
	}
	return utils.Coerce(v, t)
}

func decodeJSON[T any](v interface{}, s string, isString bool) (interface{}, error) {
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	var data []byte
	if isString {
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// selectFeatures keeps the requested features out of a decoded row.
func selectFeatures(row map[string]interface{}, features []string) map[string]interface{} {
	out := make(map[string]interface{}, len(features))
	for _, f := range features {
		if v, ok := row[f]; ok && v != nil {
			out[f] = v
		}
	}
	return out
}
