package dao

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	aligraph "github.com/aliyun/aliyun-igraph-go-sdk"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

// IGraphOnlineStore reads vertices labelled with the table name from one
// iGraph group. Only single join key tables are supported.
type IGraphOnlineStore struct {
	client *aligraph.Client
	group  string
}

func NewIGraphOnlineStore(client *aligraph.Client, group string) *IGraphOnlineStore {
	return &IGraphOnlineStore{client: client, group: group}
}

func (s *IGraphOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	if len(table.JoinKeys) != 1 {
		return nil, fmt.Errorf("igraph table %s: composite join keys are not supported", table.Name)
	}
	pkField := table.JoinKeys[0]

	positions := make(map[string][]int, len(keys))
	pkeys := make([]string, 0, len(keys))
	for i, key := range keys {
		pkey := utils.ToString(key.Values[0], "")
		if _, ok := positions[pkey]; !ok {
			pkeys = append(pkeys, url.QueryEscape(pkey))
		}
		positions[pkey] = append(positions[pkey], i)
	}

	selector := make([]string, 0, len(features)+2)
	selector = append(selector, fmt.Sprintf("\"%s\"", pkField))
	for _, field := range features {
		selector = append(selector, fmt.Sprintf("\"%s\"", field))
	}
	if table.EventTimeField != "" {
		selector = append(selector, fmt.Sprintf("\"%s\"", table.EventTimeField))
	}

	request := aligraph.ReadRequest{
		QueryString: fmt.Sprintf("g(\"%s\").V(\"%s\").hasLabel(\"%s\").fields(%s)",
			s.group, strings.Join(pkeys, ";"), table.Name, strings.Join(selector, ",")),
	}
	resp, err := s.client.Read(&request)
	if err != nil {
		return nil, fmt.Errorf("igraph read %s: %w", table.Name, err)
	}

	result := make([]FeatureRow, len(keys))
	for _, resultData := range resp.Result {
		for _, data := range resultData.Data {
			idx, ok := positions[utils.ToString(data[pkField], "")]
			if !ok {
				continue
			}
			row := FeatureRow{Features: make(map[string]interface{}, len(features))}
			for _, feature := range features {
				value, exists := data[feature]
				if !exists || value == nil {
					continue
				}
				v, err := decodeValue(value, table.FieldType(feature))
				if err != nil {
					return nil, fmt.Errorf("decode %s.%s: %w", table.Name, feature, err)
				}
				row.Features[feature] = v
			}
			if table.EventTimeField != "" {
				if ts, ok := utils.ToTime(data[table.EventTimeField]); ok {
					row.EventTime = ts
				}
			}
			for _, i := range idx {
				result[i] = row
			}
		}
	}
	return result, nil
}
