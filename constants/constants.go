package constants

import "strings"

type FSType int

const (
	FS_INT32 FSType = iota + 1 // int32
	FS_INT64                   // int64
	FS_FLOAT
	FS_DOUBLE
	FS_STRING
	FS_BOOLEAN
	FS_TIMESTAMP
	FS_BYTES
	FS_ARRAY_INT32
	FS_ARRAY_INT64
	FS_ARRAY_FLOAT
	FS_ARRAY_DOUBLE
	FS_ARRAY_STRING
	FS_MAP_STRING_STRING
	FS_MAP_STRING_DOUBLE
)

var fsTypeNames = map[FSType]string{
	FS_INT32:             "INT32",
	FS_INT64:             "INT64",
	FS_FLOAT:             "FLOAT",
	FS_DOUBLE:            "DOUBLE",
	FS_STRING:            "STRING",
	FS_BOOLEAN:           "BOOLEAN",
	FS_TIMESTAMP:         "TIMESTAMP",
	FS_BYTES:             "BYTES",
	FS_ARRAY_INT32:       "ARRAY<INT32>",
	FS_ARRAY_INT64:       "ARRAY<INT64>",
	FS_ARRAY_FLOAT:       "ARRAY<FLOAT>",
	FS_ARRAY_DOUBLE:      "ARRAY<DOUBLE>",
	FS_ARRAY_STRING:      "ARRAY<STRING>",
	FS_MAP_STRING_STRING: "MAP<STRING,STRING>",
	FS_MAP_STRING_DOUBLE: "MAP<STRING,DOUBLE>",
}

func (t FSType) String() string {
	if name, ok := fsTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseFSType maps a registry type name to an FSType. Unknown names fall back
// to FS_STRING, the same way the registry API treats unrecognised types.
func ParseFSType(name string) FSType {
	upper := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	for t, n := range fsTypeNames {
		if n == upper {
			return t
		}
	}
	switch upper {
	case "INT", "INTEGER":
		return FS_INT32
	case "BIGINT", "LONG":
		return FS_INT64
	case "BOOL":
		return FS_BOOLEAN
	case "FLOAT32":
		return FS_FLOAT
	case "FLOAT64":
		return FS_DOUBLE
	}
	return FS_STRING
}

// UnmarshalText lets FSType be decoded from YAML/JSON/env strings.
func (t *FSType) UnmarshalText(text []byte) error {
	*t = ParseFSType(string(text))
	return nil
}

func (t FSType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

const (
	Datasource_Type_Memory     = "memory"
	Datasource_Type_Redis      = "redis"
	Datasource_Type_Mysql      = "mysql"
	Datasource_Type_Hologres   = "hologres"
	Datasource_Type_Sqlite     = "sqlite"
	Datasource_Type_TableStore = "tablestore"
	Datasource_Type_IGraph     = "igraph"
	Datasource_Type_FeatureDB  = "featuredb"
	Datasource_Type_NatsKV     = "natskv"
)

// The entityless case is served through a synthesized entity whose join key
// carries the same placeholder value on every row.
const (
	DummyEntityName = "__dummy"
	DummyEntityId   = "__dummy_id"
	DummyEntityVal  = ""
)

const (
	// FeatureReferenceDelimiter separates table and feature in "table:feature".
	FeatureReferenceDelimiter = ":"
	// FullFeatureNameDelimiter joins table and feature in qualified output names.
	FullFeatureNameDelimiter = "__"
)

