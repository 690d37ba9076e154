package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

func ToString(i interface{}, defaultVal string) string {
	switch value := i.(type) {
	case nil:
		return defaultVal
	case string:
		return value
	case []byte:
		return string(value)
	case int:
		return strconv.Itoa(value)
	case int8:
		return strconv.FormatInt(int64(value), 10)
	case int16:
		return strconv.FormatInt(int64(value), 10)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case uint32:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

func ToInt64(i interface{}, defaultVal int64) int64 {
	switch value := i.(type) {
	case int:
		return int64(value)
	case int8:
		return int64(value)
	case int16:
		return int64(value)
	case int32:
		return int64(value)
	case int64:
		return value
	case uint:
		return int64(value)
	case uint8:
		return int64(value)
	case uint16:
		return int64(value)
	case uint32:
		return int64(value)
	case uint64:
		return int64(value)
	case float32:
		return int64(value)
	case float64:
		return int64(value)
	case bool:
		if value {
			return 1
		}
		return 0
	case string:
		if v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return int64(f)
		}
		return defaultVal
	case []byte:
		return ToInt64(string(value), defaultVal)
	case json.Number:
		if v, err := value.Int64(); err == nil {
			return v
		}
		return defaultVal
	default:
		return defaultVal
	}
}

func ToInt(i interface{}, defaultVal int) int {
	return int(ToInt64(i, int64(defaultVal)))
}

func ToFloat(i interface{}, defaultVal float64) float64 {
	switch value := i.(type) {
	case float32:
		return float64(value)
	case float64:
		return value
	case int:
		return float64(value)
	case int8:
		return float64(value)
	case int16:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case uint:
		return float64(value)
	case uint8:
		return float64(value)
	case uint16:
		return float64(value)
	case uint32:
		return float64(value)
	case uint64:
		return float64(value)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
		return defaultVal
	case []byte:
		return ToFloat(string(value), defaultVal)
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return defaultVal
	default:
		return defaultVal
	}
}

func ToBool(i interface{}, defaultVal bool) bool {
	switch value := i.(type) {
	case bool:
		return value
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
		return defaultVal
	case []byte:
		return ToBool(string(value), defaultVal)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ToInt64(value, 0) != 0
	case float32:
		return value != 0
	case float64:
		return value != 0
	default:
		return defaultVal
	}
}

// ToTime accepts time.Time, unix milliseconds or an RFC3339 / "2006-01-02 15:04:05" string.
func ToTime(i interface{}) (time.Time, bool) {
	switch value := i.(type) {
	case time.Time:
		return value, true
	case *time.Time:
		if value == nil {
			return time.Time{}, false
		}
		return *value, true
	case int, int32, int64, uint32, uint64, float64, json.Number:
		return time.UnixMilli(ToInt64(value, 0)), true
	case []byte:
		return ToTime(string(value))
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Coerce converts a loosely typed value into the Go type backing t. Values
// that cannot be converted are returned with an error; nil stays nil.
func Coerce(i interface{}, t constants.FSType) (interface{}, error) {
	if i == nil {
		return nil, nil
	}
	switch t {
	case constants.FS_INT32:
		v := ToInt64(i, 0)
		if !isIntLike(i) {
			return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
		}
		return int32(v), nil
	case constants.FS_INT64:
		v := ToInt64(i, 0)
		if !isIntLike(i) {
			return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
		}
		return v, nil
	case constants.FS_FLOAT:
		if !isFloatLike(i) {
			return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
		}
		return float32(ToFloat(i, 0)), nil
	case constants.FS_DOUBLE:
		if !isFloatLike(i) {
			return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
		}
		return ToFloat(i, 0), nil
	case constants.FS_BOOLEAN:
		if !isBoolLike(i) {
			return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
		}
		return ToBool(i, false), nil
	case constants.FS_STRING:
		return ToString(i, ""), nil
	case constants.FS_BYTES:
		if b, ok := i.([]byte); ok {
			return b, nil
		}
		return []byte(ToString(i, "")), nil
	case constants.FS_TIMESTAMP:
		if ts, ok := ToTime(i); ok {
			return ts, nil
		}
		return nil, fmt.Errorf("cannot convert %v (%T) to %s", i, i, t)
	default:
		return i, nil
	}
}

func isIntLike(i interface{}) bool {
	switch value := i.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return true
	case float32:
		return float32(int64(value)) == value
	case float64:
		return float64(int64(value)) == value
	case string:
		s := strings.TrimSpace(value)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return true
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && float64(int64(f)) == f
	case []byte:
		return isIntLike(string(value))
	case json.Number:
		_, err := value.Int64()
		return err == nil
	}
	return false
}

func isFloatLike(i interface{}) bool {
	switch value := i.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil
	case []byte:
		return isFloatLike(string(value))
	case json.Number:
		_, err := value.Float64()
		return err == nil
	}
	return false
}

func isBoolLike(i interface{}) bool {
	switch value := i.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return value == 0 || value == 1
	case float64:
		return value == 0 || value == 1
	case string:
		_, err := strconv.ParseBool(strings.TrimSpace(value))
		return err == nil
	case []byte:
		return isBoolLike(string(value))
	}
	return false
}
