package dao

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/featuredb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/datasource/featuredb/fdbserverfb"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

const (
	FeatureDB_Protocal_Version_F    = byte('F')
	FeatureDB_IfNull_Flag_Version_1 = byte('1')

	featureDBGroupSize = 200
)

// FeatureDBOnlineStore reads keys through the batch_get_kv2 endpoint. Each
// value lists every non key field of the table in schema order, each
// preceded by an is-null byte.
type FeatureDBOnlineStore struct {
	client   *featuredb.FeatureDBClient
	database string
}

func NewFeatureDBOnlineStore(client *featuredb.FeatureDBClient, database string) (*FeatureDBOnlineStore, error) {
	if client.Signature == "" {
		return nil, errors.New("FeatureDB username and password are not set")
	}
	if client.Address == "" || client.Token == "" {
		return nil, errors.New("FeatureDB datasource has not been created")
	}
	return &FeatureDBOnlineStore{client: client, database: database}, nil
}

func (s *FeatureDBOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	result := make([]FeatureRow, len(keys))
	var g errgroup.Group
	for start := 0; start < len(keys); start += featureDBGroupSize {
		start := start
		end := start + featureDBGroupSize
		if end > len(keys) {
			end = len(keys)
		}
		g.Go(func() error {
			return s.readGroup(ctx, table, keys[start:end], features, result[start:end])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *FeatureDBOnlineStore) readGroup(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string, result []FeatureRow) error {
	pkeys := make([]string, len(keys))
	for i, key := range keys {
		pkeys[i] = keyString(key)
	}
	body, err := json.Marshal(map[string]any{"keys": pkeys})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/v1/tables/%s/%s/%s/batch_get_kv2?batch_size=%d&encoder=",
		s.client.Address, s.database, table.Project, table.Name, len(pkeys)), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.client.Token)
	req.Header.Set("Auth", s.client.Signature)

	response, err := s.client.Client.Do(req)
	if err != nil {
		return fmt.Errorf("featuredb %s: %w", table.Name, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(response.Body)
		var bodyMap map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
			if msg, found := bodyMap["message"]; found {
				return fmt.Errorf("featuredb %s: status %d: %v", table.Name, response.StatusCode, msg)
			}
		}
		return fmt.Errorf("featuredb %s: status %d", table.Name, response.StatusCode)
	}

	wanted := make(map[string]struct{}, len(features))
	for _, f := range features {
		wanted[f] = struct{}{}
	}

	reader := bufio.NewReader(response.Body)
	keyIdx := 0
	for {
		buf, err := deserialize(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("featuredb %s: %w", table.Name, err)
		}

		recordBlock := fdbserverfb.GetRootAsRecordBlock(buf, 0)
		value := new(fdbserverfb.UInt8ValueColumn)
		for i := 0; i < recordBlock.ValuesLength(); i++ {
			if keyIdx >= len(result) {
				return fmt.Errorf("featuredb %s: more values than keys", table.Name)
			}
			recordBlock.Values(value, i)
			row, err := s.decodeRecord(table, value.ValueBytes(), wanted)
			if err != nil {
				return fmt.Errorf("featuredb %s: %w", table.Name, err)
			}
			result[keyIdx] = row
			keyIdx++
		}
	}
	return nil
}

// decodeRecord decodes one value. Values shorter than the two version bytes
// mean the key does not exist.
func (s *FeatureDBOnlineStore) decodeRecord(table TableSchema, data []byte, wanted map[string]struct{}) (FeatureRow, error) {
	if len(data) < 2 {
		return FeatureRow{}, nil
	}
	cursor := utils.NewByteCursor(data)
	protocalVersion := cursor.ReadUint8()
	ifNullFlagVersion := cursor.ReadUint8()
	if protocalVersion != FeatureDB_Protocal_Version_F || ifNullFlagVersion != FeatureDB_IfNull_Flag_Version_1 {
		return FeatureRow{}, fmt.Errorf("unsupported value version %c%c", protocalVersion, ifNullFlagVersion)
	}

	row := FeatureRow{Features: make(map[string]interface{}, len(wanted))}
	for _, field := range table.Fields[len(table.JoinKeys):] {
		if !cursor.HasMore() {
			break
		}
		if isNull := cursor.ReadUint8(); isNull == 1 {
			continue
		}
		_, isWanted := wanted[field.Name]
		if !isWanted && field.Name != table.EventTimeField {
			if err := cursor.SkipValue(field.Type); err != nil {
				return FeatureRow{}, err
			}
			continue
		}
		v, err := cursor.ReadValue(field.Type)
		if err != nil {
			return FeatureRow{}, err
		}
		if field.Name == table.EventTimeField {
			if ts, ok := utils.ToTime(v); ok {
				row.EventTime = ts
			}
		}
		if isWanted {
			row.Features[field.Name] = v
		}
	}
	return row, nil
}

func deserialize(r io.Reader) ([]byte, error) {
	var length uint32
	err := binary.Read(r, binary.LittleEndian, &length)
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if err != nil {
		return nil, err
	}

	return data, nil
}
