package domain

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// EntityKey is one composite join key tuple. JoinKeys and Values are aligned.
type EntityKey struct {
	JoinKeys []string
	Values   []interface{}
}

// Value type tags of the canonical key encoding. The order of the tags
// defines the order between values of different types.
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagString
	tagBytes
	tagTime
	tagList
	tagMap
	tagOther
)

// Serialize encodes the key with its join key names. Two keys serialize to
// the same bytes exactly when they hold equal values under the same names.
func (k EntityKey) Serialize() []byte {
	buf := make([]byte, 0, 16*len(k.Values))
	for i, name := range k.JoinKeys {
		buf = appendString(buf, name)
		var v interface{}
		if i < len(k.Values) {
			v = k.Values[i]
		}
		buf = AppendValue(buf, v)
	}
	return buf
}

// SortKey encodes only the values. Byte order of SortKey is a total order
// over tuples, numeric within integers and floats.
func (k EntityKey) SortKey() []byte {
	buf := make([]byte, 0, 12*len(k.Values))
	for _, v := range k.Values {
		buf = AppendValue(buf, v)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// AppendValue appends the type tagged encoding of v.
func AppendValue(buf []byte, v interface{}) []byte {
	switch value := v.(type) {
	case nil:
		return append(buf, tagNil)
	case bool:
		if value {
			return append(buf, tagBool, 1)
		}
		return append(buf, tagBool, 0)
	case int:
		return appendInt(buf, int64(value))
	case int8:
		return appendInt(buf, int64(value))
	case int16:
		return appendInt(buf, int64(value))
	case int32:
		return appendInt(buf, int64(value))
	case int64:
		return appendInt(buf, value)
	case uint:
		return appendUint(buf, uint64(value))
	case uint8:
		return appendInt(buf, int64(value))
	case uint16:
		return appendInt(buf, int64(value))
	case uint32:
		return appendInt(buf, int64(value))
	case uint64:
		return appendUint(buf, value)
	case float32:
		return appendFloat(buf, float64(value))
	case float64:
		return appendFloat(buf, value)
	case string:
		buf = append(buf, tagString)
		return appendString(buf, value)
	case []byte:
		buf = append(buf, tagBytes)
		buf = binary.AppendUvarint(buf, uint64(len(value)))
		return append(buf, value...)
	case time.Time:
		buf = append(buf, tagTime)
		return binary.BigEndian.AppendUint64(buf, uint64(value.UnixNano())^(1<<63))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		buf = append(buf, tagList)
		buf = binary.AppendUvarint(buf, uint64(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			buf = AppendValue(buf, rv.Index(i).Interface())
		}
		return buf
	case reflect.Map:
		type entry struct {
			key []byte
			val interface{}
		}
		entries := make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, entry{key: AppendValue(nil, iter.Key().Interface()), val: iter.Value().Interface()})
		}
		sort.Slice(entries, func(i, j int) bool { return string(entries[i].key) < string(entries[j].key) })
		buf = append(buf, tagMap)
		buf = binary.AppendUvarint(buf, uint64(len(entries)))
		for _, e := range entries {
			buf = append(buf, e.key...)
			buf = AppendValue(buf, e.val)
		}
		return buf
	case reflect.Pointer:
		if rv.IsNil() {
			return append(buf, tagNil)
		}
		return AppendValue(buf, rv.Elem().Interface())
	}

	buf = append(buf, tagOther)
	buf = appendString(buf, rv.Type().String())
	return appendString(buf, fmt.Sprintf("%v", v))
}

func appendInt(buf []byte, v int64) []byte {
	buf = append(buf, tagInt)
	return binary.BigEndian.AppendUint64(buf, uint64(v)^(1<<63))
}

func appendUint(buf []byte, v uint64) []byte {
	if v <= math.MaxInt64 {
		return appendInt(buf, int64(v))
	}
	buf = append(buf, tagUint)
	return binary.BigEndian.AppendUint64(buf, v)
}

func appendFloat(buf []byte, v float64) []byte {
	if v == 0 {
		v = 0
	}
	bits := math.Float64bits(v)
	if math.IsNaN(v) {
		bits = math.Float64bits(math.NaN())
	}
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	buf = append(buf, tagFloat)
	return binary.BigEndian.AppendUint64(buf, bits)
}
