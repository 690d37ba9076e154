package featurestore

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type FieldStatus int32

const (
	FieldStatusInvalid FieldStatus = iota
	FieldStatusPresent
	FieldStatusNotFound
)

func (s FieldStatus) String() string {
	switch s {
	case FieldStatusPresent:
		return "PRESENT"
	case FieldStatusNotFound:
		return "NOT_FOUND"
	}
	return "INVALID"
}

// FeatureVector holds one output column for every request row.
type FeatureVector struct {
	Name            string
	Values          []interface{}
	Statuses        []FieldStatus
	EventTimestamps []time.Time

	// feature is the unqualified name, table the projection name or "" for
	// join keys and request data.
	feature string
	table   string
	keep    bool
}

func newFeatureVector(name string, numRows int) *FeatureVector {
	return &FeatureVector{
		Name:            name,
		Values:          make([]interface{}, numRows),
		Statuses:        make([]FieldStatus, numRows),
		EventTimestamps: make([]time.Time, numRows),
	}
}

// Timestamps returns the event timestamps as protobuf timestamps, nil where unknown.
func (v *FeatureVector) Timestamps() []*timestamppb.Timestamp {
	result := make([]*timestamppb.Timestamp, len(v.EventTimestamps))
	for i, ts := range v.EventTimestamps {
		if !ts.IsZero() {
			result[i] = timestamppb.New(ts)
		}
	}
	return result
}

type OnlineResponse struct {
	RequestId string
	NumRows   int
	Vectors   []*FeatureVector
	// Warnings lists the deprecated usages found in the request.
	Warnings []string
}

func (r *OnlineResponse) FeatureNames() []string {
	names := make([]string, len(r.Vectors))
	for i, v := range r.Vectors {
		names[i] = v.Name
	}
	return names
}

func (r *OnlineResponse) Get(name string) *FeatureVector {
	for _, v := range r.Vectors {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ToRows returns one map per request row, feature name to value.
func (r *OnlineResponse) ToRows() []map[string]interface{} {
	rows := make([]map[string]interface{}, r.NumRows)
	for i := range rows {
		row := make(map[string]interface{}, len(r.Vectors))
		for _, v := range r.Vectors {
			row[v.Name] = v.Values[i]
		}
		rows[i] = row
	}
	return rows
}

func (r *OnlineResponse) ToColumns() map[string][]interface{} {
	columns := make(map[string][]interface{}, len(r.Vectors))
	for _, v := range r.Vectors {
		columns[v.Name] = v.Values
	}
	return columns
}

// ToStruct renders the response as
//
//	{"metadata": {"feature_names": [...]}, "results": [{"values", "statuses", "event_timestamps"}]}
func (r *OnlineResponse) ToStruct() (*structpb.Struct, error) {
	names := make([]interface{}, len(r.Vectors))
	results := make([]interface{}, len(r.Vectors))
	for i, v := range r.Vectors {
		names[i] = v.Name
		values := make([]interface{}, len(v.Values))
		statuses := make([]interface{}, len(v.Statuses))
		timestamps := make([]interface{}, len(v.EventTimestamps))
		for j, value := range v.Values {
			values[j] = structValue(value)
		}
		for j, status := range v.Statuses {
			statuses[j] = status.String()
		}
		for j, ts := range v.Timestamps() {
			if ts != nil {
				timestamps[j] = ts.AsTime().Format(time.RFC3339Nano)
			}
		}
		results[i] = map[string]interface{}{
			"values":           values,
			"statuses":         statuses,
			"event_timestamps": timestamps,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"metadata": map[string]interface{}{"feature_names": names},
		"results":  results,
	})
}

// structValue converts typed slices and maps into the generic forms structpb accepts.
func structValue(v interface{}) interface{} {
	switch value := v.(type) {
	case nil, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, string:
		return value
	case []byte:
		return base64.StdEncoding.EncodeToString(value)
	case time.Time:
		return value.UTC().Format(time.RFC3339Nano)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = structValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = structValue(item)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = structValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = structValue(iter.Value().Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return structValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}
