package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected EOF while reading binary data")
	ErrInvalidLength = errors.New("invalid negative length encountered")
)

// ByteCursor reads little-endian values from a byte slice. The first failure
// is kept in Err and turns every following read into a no-op.
type ByteCursor struct {
	Data []byte
	Off  int
	Err  error
}

func NewByteCursor(data []byte) *ByteCursor {
	return &ByteCursor{Data: data}
}

func (c *ByteCursor) HasMore() bool {
	return c.Err == nil && c.Off < len(c.Data)
}

func (c *ByteCursor) fail(err error) {
	if c.Err == nil {
		c.Err = err
	}
}

func (c *ByteCursor) ReadUint8() uint8 {
	if c.Err != nil || c.Off+1 > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return 0
	}
	v := c.Data[c.Off]
	c.Off++
	return v
}

func (c *ByteCursor) ReadUint32() uint32 {
	if c.Err != nil || c.Off+4 > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return 0
	}
	v := binary.LittleEndian.Uint32(c.Data[c.Off:])
	c.Off += 4
	return v
}

func (c *ByteCursor) ReadUint64() uint64 {
	if c.Err != nil || c.Off+8 > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return 0
	}
	v := binary.LittleEndian.Uint64(c.Data[c.Off:])
	c.Off += 8
	return v
}

func (c *ByteCursor) ReadInt32() int32     { return int32(c.ReadUint32()) }
func (c *ByteCursor) ReadInt64() int64     { return int64(c.ReadUint64()) }
func (c *ByteCursor) ReadFloat32() float32 { return math.Float32frombits(c.ReadUint32()) }
func (c *ByteCursor) ReadFloat64() float64 { return math.Float64frombits(c.ReadUint64()) }
func (c *ByteCursor) ReadBool() bool       { return c.ReadUint8() == 1 }

func (c *ByteCursor) ReadBytes(n int) []byte {
	if c.Err != nil {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	if n < 0 || c.Off+n > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return nil
	}
	v := c.Data[c.Off : c.Off+n]
	c.Off += n
	return v
}

func (c *ByteCursor) Skip(n int) {
	if c.Err != nil || n <= 0 {
		return
	}
	if c.Off+n > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return
	}
	c.Off += n
}

func (c *ByteCursor) ReadString() string {
	l := int(c.ReadUint32())
	if c.Err != nil {
		return ""
	}
	return string(c.ReadBytes(l))
}

// ReadStringArray reads l strings laid out as l+1 offsets followed by the
// concatenated string bytes.
func (c *ByteCursor) ReadStringArray(l uint32) []string {
	if c.Err != nil {
		return nil
	}
	if l == 0 {
		return []string{}
	}

	count := int(l)
	if c.Off+((count+1)*4) > len(c.Data) {
		c.fail(ErrUnexpectedEOF)
		return nil
	}

	offsets := make([]uint32, count+1)
	for i := 0; i <= count; i++ {
		offsets[i] = c.ReadUint32()
	}

	data := c.ReadBytes(int(offsets[count]))
	if c.Err != nil {
		return nil
	}

	res := make([]string, count)
	for i := 0; i < count; i++ {
		start, end := offsets[i], offsets[i+1]
		if start > end || int(end) > len(data) {
			c.fail(ErrInvalidLength)
			return nil
		}
		res[i] = string(data[start:end])
	}
	return res
}

func (c *ByteCursor) skipStringArray(l uint32) {
	if c.Err != nil || l == 0 {
		return
	}
	c.Skip(int(l) * 4)
	c.Skip(int(c.ReadUint32()))
}

// ReadValue decodes one non-null value of type t.
func (c *ByteCursor) ReadValue(t constants.FSType) (interface{}, error) {
	var v interface{}
	switch t {
	case constants.FS_INT32:
		v = c.ReadInt32()
	case constants.FS_INT64, constants.FS_TIMESTAMP:
		v = c.ReadInt64()
	case constants.FS_FLOAT:
		v = c.ReadFloat32()
	case constants.FS_DOUBLE:
		v = c.ReadFloat64()
	case constants.FS_BOOLEAN:
		v = c.ReadBool()
	case constants.FS_STRING:
		v = c.ReadString()
	case constants.FS_BYTES:
		b := c.ReadBytes(int(c.ReadUint32()))
		v = append([]byte(nil), b...)
	case constants.FS_ARRAY_INT32:
		l := int(c.ReadUint32())
		arr := make([]int32, l)
		for i := range arr {
			arr[i] = c.ReadInt32()
		}
		v = arr
	case constants.FS_ARRAY_INT64:
		l := int(c.ReadUint32())
		arr := make([]int64, l)
		for i := range arr {
			arr[i] = c.ReadInt64()
		}
		v = arr
	case constants.FS_ARRAY_FLOAT:
		l := int(c.ReadUint32())
		arr := make([]float32, l)
		for i := range arr {
			arr[i] = c.ReadFloat32()
		}
		v = arr
	case constants.FS_ARRAY_DOUBLE:
		l := int(c.ReadUint32())
		arr := make([]float64, l)
		for i := range arr {
			arr[i] = c.ReadFloat64()
		}
		v = arr
	case constants.FS_ARRAY_STRING:
		v = c.ReadStringArray(c.ReadUint32())
	case constants.FS_MAP_STRING_STRING:
		l := c.ReadUint32()
		keys := c.ReadStringArray(l)
		values := c.ReadStringArray(l)
		m := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(values) {
				m[key] = values[i]
			}
		}
		v = m
	case constants.FS_MAP_STRING_DOUBLE:
		l := c.ReadUint32()
		keys := c.ReadStringArray(l)
		m := make(map[string]float64, len(keys))
		for _, key := range keys {
			m[key] = c.ReadFloat64()
		}
		v = m
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
	return v, c.Err
}

// SkipValue moves past one non-null value of type t without decoding it.
func (c *ByteCursor) SkipValue(t constants.FSType) error {
	switch t {
	case constants.FS_INT32, constants.FS_FLOAT:
		c.Skip(4)
	case constants.FS_INT64, constants.FS_DOUBLE, constants.FS_TIMESTAMP:
		c.Skip(8)
	case constants.FS_BOOLEAN:
		c.Skip(1)
	case constants.FS_STRING, constants.FS_BYTES:
		c.Skip(int(c.ReadUint32()))
	case constants.FS_ARRAY_INT32, constants.FS_ARRAY_FLOAT:
		c.Skip(int(c.ReadUint32()) * 4)
	case constants.FS_ARRAY_INT64, constants.FS_ARRAY_DOUBLE:
		c.Skip(int(c.ReadUint32()) * 8)
	case constants.FS_ARRAY_STRING:
		c.skipStringArray(c.ReadUint32())
	case constants.FS_MAP_STRING_STRING:
		l := c.ReadUint32()
		c.skipStringArray(l)
		c.skipStringArray(l)
	case constants.FS_MAP_STRING_DOUBLE:
		l := c.ReadUint32()
		c.skipStringArray(l)
		c.Skip(int(l) * 8)
	default:
		return fmt.Errorf("unsupported value type %s", t)
	}
	return c.Err
}
