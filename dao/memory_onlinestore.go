package dao

import (
	"context"
	"sync"
	"time"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type memoryRow struct {
	eventTime time.Time
	features  map[string]interface{}
}

// MemoryOnlineStore keeps rows in process, keyed by project, table and the
// serialized entity key.
type MemoryOnlineStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]memoryRow

	// reads counts OnlineRead calls per table
	reads map[string]int
}

func NewMemoryOnlineStore() *MemoryOnlineStore {
	return &MemoryOnlineStore{
		tables: make(map[string]map[string]memoryRow),
		reads:  make(map[string]int),
	}
}

func memoryTableKey(project, table string) string {
	return project + "/" + table
}

// Write stores features for key, replacing any previous row.
func (s *MemoryOnlineStore) Write(project, table string, key domain.EntityKey, eventTime time.Time, features map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := memoryTableKey(project, table)
	rows, ok := s.tables[name]
	if !ok {
		rows = make(map[string]memoryRow)
		s.tables[name] = rows
	}
	copied := make(map[string]interface{}, len(features))
	for k, v := range features {
		copied[k] = v
	}
	rows[string(key.Serialize())] = memoryRow{eventTime: eventTime, features: copied}
}

func (s *MemoryOnlineStore) OnlineRead(ctx context.Context, table TableSchema, keys []domain.EntityKey, features []string) ([]FeatureRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	name := memoryTableKey(table.Project, table.Name)
	s.reads[name]++
	rows := s.tables[name]
	result := make([]FeatureRow, len(keys))
	for i, key := range keys {
		row, ok := rows[string(key.Serialize())]
		if !ok {
			continue
		}
		result[i] = FeatureRow{EventTime: row.eventTime, Features: selectFeatures(row.features, features)}
	}
	s.mu.Unlock()
	return result, nil
}

// ReadCount returns how many OnlineRead calls hit the table.
func (s *MemoryOnlineStore) ReadCount(project, table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[memoryTableKey(project, table)]
}
