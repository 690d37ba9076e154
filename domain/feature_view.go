package domain

import (
	"time"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

// Table is implemented by StandardTable, ComputedTable and RequestTable only.
type Table interface {
	TableName() string
	FeatureFields() []Field
	GetProjection() Projection
	isTable()
}

type Field struct {
	Name string
	Type constants.FSType
}

// Projection is the view of a table a request or bundle works with: an
// optional display name, a feature subset and a join key rename map.
type Projection struct {
	Name       string
	NameAlias  string
	Features   []Field
	JoinKeyMap map[string]string
}

func (p Projection) NameToUse() string {
	if p.NameAlias != "" {
		return p.NameAlias
	}
	return p.Name
}

// JoinKeyName returns the caller facing column name for a canonical join key.
func (p Projection) JoinKeyName(joinKey string) string {
	if alias, ok := p.JoinKeyMap[joinKey]; ok && alias != "" {
		return alias
	}
	return joinKey
}

func (p Projection) HasFeature(name string) bool {
	for _, f := range p.Features {
		if f.Name == name {
			return true
		}
	}
	return false
}

func defaultProjection(name string, features []Field) Projection {
	return Projection{Name: name, Features: features}
}

// StandardTable is a materialized feature view read from the online store.
type StandardTable struct {
	Name     string
	Entities []string
	Features []Field
	// EntityColumns carries the stored type of each join key column.
	EntityColumns  []Field
	Online         bool
	TTL            time.Duration
	EventTimeField string
	Projection     Projection
}

func (t *StandardTable) TableName() string      { return t.Name }
func (t *StandardTable) FeatureFields() []Field { return t.Features }
func (t *StandardTable) isTable()               {}

func (t *StandardTable) GetProjection() Projection {
	if t.Projection.Name == "" {
		return defaultProjection(t.Name, t.Features)
	}
	return t.Projection
}

// EntityNames returns the declared entities, or the dummy entity for entityless tables.
func (t *StandardTable) EntityNames() []string {
	if len(t.Entities) == 0 {
		return []string{constants.DummyEntityName}
	}
	return t.Entities
}

func (t *StandardTable) EntityColumnType(joinKey string) (constants.FSType, bool) {
	for _, f := range t.EntityColumns {
		if f.Name == joinKey {
			return f.Type, true
		}
	}
	return 0, false
}

func hasField(fields []Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (t *StandardTable) HasFeature(name string) bool {
	return hasField(t.Features, name)
}
