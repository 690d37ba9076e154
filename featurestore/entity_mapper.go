package featurestore

import (
	"fmt"
	"sort"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/utils"
)

// entityBatch is the column oriented form of the entity rows.
type entityBatch struct {
	numRows int
	names   []string
	columns map[string][]interface{}
}

func newEntityBatch(rows []map[string]interface{}, columns map[string][]interface{}) (*entityBatch, error) {
	if len(rows) > 0 && len(columns) > 0 {
		return nil, invalidRequest("entity rows and entity columns are mutually exclusive")
	}

	batch := &entityBatch{columns: make(map[string][]interface{})}
	if len(rows) > 0 {
		batch.numRows = len(rows)
		for _, row := range rows {
			// map order is random, keep first seen order stable within a row
			keys := make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, ok := batch.columns[k]; !ok {
					batch.names = append(batch.names, k)
				}
				batch.columns[k] = append(batch.columns[k], row[k])
			}
		}
	} else {
		for name, values := range columns {
			batch.names = append(batch.names, name)
			batch.columns[name] = values
		}
		sort.Strings(batch.names)
		if len(batch.names) > 0 {
			batch.numRows = len(columns[batch.names[0]])
		}
	}

	for _, name := range batch.names {
		if n := len(batch.columns[name]); n != batch.numRows {
			return nil, invalidRequest("entity column %s has %d values, expected %d", name, n, batch.numRows)
		}
	}
	return batch, nil
}

// entityMapping is the entity batch split into join key and request data columns.
type entityMapping struct {
	joinKeys     []string
	requestData  []string
	columns      map[string][]interface{}
	outputs      map[string]bool
	warnings     []string
	dummyColumns bool
}

// mapEntities renames entity name columns to join keys, coerces join key
// values, checks the request data and binds every standard table to the
// batch columns holding its join keys.
func mapEntities(project *domain.Project, resolved *resolvedFeatures, batch *entityBatch) (*entityMapping, error) {
	entityToJoinKey := make(map[string]string)
	joinKeyTypes := make(map[string]constants.FSType)
	for _, e := range project.Entities {
		entityToJoinKey[e.Name] = e.JoinKey
		joinKeyTypes[e.JoinKey] = e.ValueType
	}

	m := &entityMapping{
		columns: make(map[string][]interface{}),
		outputs: make(map[string]bool),
	}

	for _, group := range resolved.standard {
		group.keys = group.keys[:0]
		for _, entityName := range group.table.EntityNames() {
			e := project.GetEntity(entityName)
			if e == nil {
				return nil, &EntityNotFoundError{Name: entityName, Project: project.ProjectName}
			}
			if e.IsDummy() {
				m.dummyColumns = true
			}
			column := group.projection.JoinKeyName(e.JoinKey)
			if alias, ok := group.projection.JoinKeyMap[e.JoinKey]; ok && alias != "" {
				entityToJoinKey[alias] = column
			} else {
				entityToJoinKey[e.Name] = column
			}
			valueType, ok := group.table.EntityColumnType(e.JoinKey)
			if !ok {
				valueType = e.ValueType
			}
			if _, ok := joinKeyTypes[column]; !ok {
				joinKeyTypes[column] = valueType
			}
			group.keys = append(group.keys, keyColumn{joinKey: e.JoinKey, column: column, valueType: valueType})
		}
	}
	joinKeySet := make(map[string]bool, len(entityToJoinKey))
	for _, joinKey := range entityToJoinKey {
		joinKeySet[joinKey] = true
	}

	neededRequestData := make(map[string]bool)
	requestTableFields := make(map[string]bool)
	for _, group := range resolved.computed {
		for _, name := range group.requestFields {
			neededRequestData[name] = true
		}
	}
	for _, group := range resolved.request {
		for _, name := range group.features {
			requestTableFields[name] = true
		}
	}

	for _, name := range batch.names {
		values := batch.columns[name]
		if neededRequestData[name] || requestTableFields[name] {
			if requestTableFields[name] {
				m.outputs[name] = true
			}
			m.requestData = append(m.requestData, name)
			m.columns[name] = values
			continue
		}

		joinKey := name
		if !joinKeySet[name] {
			mapped, ok := entityToJoinKey[name]
			if !ok {
				return nil, &EntityNotFoundError{Name: name, Project: project.ProjectName}
			}
			m.warnings = append(m.warnings, fmt.Sprintf("entity name %s used in entity rows is deprecated, use join key %s instead", name, mapped))
			joinKey = mapped
			if _, ok := batch.columns[joinKey]; ok {
				continue
			}
		}

		coerced, err := coerceColumn(joinKey, values, joinKeyTypes[joinKey])
		if err != nil {
			return nil, err
		}
		m.outputs[joinKey] = true
		m.joinKeys = append(m.joinKeys, joinKey)
		m.columns[joinKey] = coerced
	}

	var missing []string
	for name := range neededRequestData {
		if _, ok := m.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range requestTableFields {
		if _, ok := m.columns[name]; !ok && !neededRequestData[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingRequestDataError{Names: missing}
	}

	if m.dummyColumns {
		dummy := make([]interface{}, batch.numRows)
		for i := range dummy {
			dummy[i] = constants.DummyEntityVal
		}
		m.columns[constants.DummyEntityId] = dummy
	}

	for _, group := range resolved.standard {
		for _, key := range group.keys {
			if _, ok := m.columns[key.column]; !ok {
				return nil, &EntityNotFoundError{Name: key.column, Project: project.ProjectName}
			}
		}
	}
	return m, nil
}

func coerceColumn(name string, values []interface{}, valueType constants.FSType) ([]interface{}, error) {
	coerced := make([]interface{}, len(values))
	for i, v := range values {
		c, err := utils.Coerce(v, valueType)
		if err != nil {
			return nil, invalidRequest("join key %s at row %d: %v", name, i, err)
		}
		coerced[i] = c
	}
	return coerced, nil
}
