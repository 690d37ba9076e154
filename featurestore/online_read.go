package featurestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/dao"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type tableRead struct {
	group  *tableFeatures
	unique *uniqueKeySet
	rows   []dao.FeatureRow
}

func tableSchema(project string, group *tableFeatures) dao.TableSchema {
	table := group.table
	schema := dao.TableSchema{
		Project:        project,
		Name:           table.Name,
		EventTimeField: table.EventTimeField,
	}
	for _, k := range group.keys {
		schema.JoinKeys = append(schema.JoinKeys, k.joinKey)
		schema.Fields = append(schema.Fields, domain.Field{Name: k.joinKey, Type: k.valueType})
	}
	schema.Fields = append(schema.Fields, table.Features...)
	if table.EventTimeField != "" {
		schema.Fields = append(schema.Fields, domain.Field{Name: table.EventTimeField, Type: constants.FS_TIMESTAMP})
	}
	return schema
}

// readTables reads all tables concurrently and waits for every read. Reads
// already issued are never cancelled, the first failure is returned.
func (c *FeatureStoreClient) readTables(ctx context.Context, project string, reads []*tableRead, logger *slog.Logger) error {
	var g errgroup.Group
	if c.readConcurrency > 0 {
		g.SetLimit(c.readConcurrency)
	}
	for _, read := range reads {
		read := read
		g.Go(func() error {
			return c.readTable(ctx, project, read, logger)
		})
	}
	return g.Wait()
}

func (c *FeatureStoreClient) readTable(ctx context.Context, project string, read *tableRead, logger *slog.Logger) error {
	keys := read.unique.keys
	if len(keys) == 0 {
		return nil
	}
	table := read.group.table.Name

	start := time.Now()
	rows, err := c.store.OnlineRead(ctx, tableSchema(project, read.group), keys, read.group.features)
	c.metrics.readDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	if err == nil && len(rows) != len(keys) {
		err = fmt.Errorf("online store returned %d rows for %d keys", len(rows), len(keys))
	}
	if err != nil {
		logger.Error("online read error", "table", table, "keys", len(keys), "err", err)
		return &BackendError{Table: table, Err: err}
	}
	c.metrics.readKeys.WithLabelValues(table).Add(float64(len(keys)))
	read.rows = rows
	return nil
}

// scatter expands the per key results of one feature to every request row.
func (r *tableRead) scatter(name, feature string, numRows int) *FeatureVector {
	vector := newFeatureVector(name, numRows)
	vector.feature = feature
	vector.table = r.group.projection.NameToUse()
	vector.keep = r.group.requested[feature]

	for i, rowIndexes := range r.unique.indexes {
		var (
			value     interface{}
			status    = FieldStatusNotFound
			eventTime time.Time
		)
		if i < len(r.rows) && r.rows[i].Found() {
			eventTime = r.rows[i].EventTime
			if v, ok := r.rows[i].Features[feature]; ok && v != nil {
				value = v
				status = FieldStatusPresent
			}
		}
		for _, row := range rowIndexes {
			vector.Values[row] = value
			vector.Statuses[row] = status
			vector.EventTimestamps[row] = eventTime
		}
	}
	return vector
}
