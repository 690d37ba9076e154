package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Project is an immutable snapshot of one project's registry content.
// It must not be modified once built.
type Project struct {
	ProjectName    string
	StandardTables map[string]*StandardTable
	ComputedTables map[string]*ComputedTable
	RequestTables  map[string]*RequestTable
	Entities       map[string]*Entity
	FeatureBundles map[string]*FeatureBundle
}

func NewProject(name string, tables []Table, entities []*Entity, bundles []*FeatureBundle) (*Project, error) {
	p := &Project{
		ProjectName:    name,
		StandardTables: make(map[string]*StandardTable),
		ComputedTables: make(map[string]*ComputedTable),
		RequestTables:  make(map[string]*RequestTable),
		Entities:       make(map[string]*Entity, len(entities)+1),
		FeatureBundles: make(map[string]*FeatureBundle, len(bundles)),
	}

	seen := make(map[string]string, len(tables))
	for _, table := range tables {
		lower := strings.ToLower(table.TableName())
		if prev, ok := seen[lower]; ok {
			return nil, fmt.Errorf("project %s: table names must be unique ignoring case, found %s and %s", name, prev, table.TableName())
		}
		seen[lower] = table.TableName()

		switch t := table.(type) {
		case *StandardTable:
			p.StandardTables[t.Name] = t
		case *ComputedTable:
			p.ComputedTables[t.Name] = t
		case *RequestTable:
			p.RequestTables[t.Name] = t
		default:
			return nil, fmt.Errorf("project %s: unsupported table type %T", name, table)
		}
	}

	for _, e := range entities {
		p.Entities[e.Name] = e
	}
	dummy := DummyEntity
	p.Entities[dummy.Name] = &dummy

	for _, b := range bundles {
		p.FeatureBundles[b.Name] = b
	}

	return p, nil
}

// GetTable looks a table up among standard, computed and request tables, in that order.
func (p *Project) GetTable(name string) (Table, bool) {
	if t, ok := p.StandardTables[name]; ok {
		return t, true
	}
	if t, ok := p.ComputedTables[name]; ok {
		return t, true
	}
	if t, ok := p.RequestTables[name]; ok {
		return t, true
	}
	return nil, false
}

func (p *Project) GetEntity(name string) *Entity {
	return p.Entities[name]
}

func (p *Project) GetFeatureBundle(name string) *FeatureBundle {
	return p.FeatureBundles[name]
}

// ListTables returns every table sorted by name.
func (p *Project) ListTables() []Table {
	tables := make([]Table, 0, len(p.StandardTables)+len(p.ComputedTables)+len(p.RequestTables))
	for _, t := range p.StandardTables {
		tables = append(tables, t)
	}
	for _, t := range p.ComputedTables {
		tables = append(tables, t)
	}
	for _, t := range p.RequestTables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableName() < tables[j].TableName() })
	return tables
}

// ListEntities returns the registered entities sorted by name, without the dummy entity.
func (p *Project) ListEntities() []*Entity {
	entities := make([]*Entity, 0, len(p.Entities))
	for _, e := range p.Entities {
		if e.IsDummy() {
			continue
		}
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities
}

func (p *Project) ListFeatureBundles() []*FeatureBundle {
	bundles := make([]*FeatureBundle, 0, len(p.FeatureBundles))
	for _, b := range p.FeatureBundles {
		bundles = append(bundles, b)
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Name < bundles[j].Name })
	return bundles
}

// JoinKeyTypes maps every entity join key to its value type.
func (p *Project) JoinKeyTypes() map[string]*Entity {
	m := make(map[string]*Entity, len(p.Entities))
	for _, e := range p.Entities {
		m[e.JoinKey] = e
	}
	return m
}
