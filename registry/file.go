package registry

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type fieldConfig struct {
	Name string           `yaml:"name"`
	Type constants.FSType `yaml:"type"`
}

type projectionConfig struct {
	Name       string            `yaml:"name"`
	NameAlias  string            `yaml:"name_alias"`
	Features   []string          `yaml:"features"`
	JoinKeyMap map[string]string `yaml:"join_key_map"`
}

type entityConfig struct {
	Name      string           `yaml:"name"`
	JoinKey   string           `yaml:"join_key"`
	ValueType constants.FSType `yaml:"value_type"`
}

type standardTableConfig struct {
	Name           string        `yaml:"name"`
	Entities       []string      `yaml:"entities"`
	Features       []fieldConfig `yaml:"features"`
	EntityColumns  []fieldConfig `yaml:"entity_columns"`
	Online         *bool         `yaml:"online"`
	TTL            string        `yaml:"ttl"`
	EventTimeField string        `yaml:"event_time_field"`
}

type computedTableConfig struct {
	Name          string             `yaml:"name"`
	Features      []fieldConfig      `yaml:"features"`
	Sources       []projectionConfig `yaml:"sources"`
	RequestFields []fieldConfig      `yaml:"request_fields"`
	Transform     string             `yaml:"transform"`
	Expressions   map[string]string  `yaml:"expressions"`
}

type requestTableConfig struct {
	Name   string        `yaml:"name"`
	Fields []fieldConfig `yaml:"fields"`
}

type bundleConfig struct {
	Name        string             `yaml:"name"`
	Projections []projectionConfig `yaml:"projections"`
}

type projectConfig struct {
	Entities       []entityConfig        `yaml:"entities"`
	StandardTables []standardTableConfig `yaml:"standard_tables"`
	ComputedTables []computedTableConfig `yaml:"computed_tables"`
	RequestTables  []requestTableConfig  `yaml:"request_tables"`
	FeatureBundles []bundleConfig        `yaml:"feature_bundles"`
}

type fileConfig struct {
	Projects map[string]projectConfig `yaml:"projects"`
}

// FileRegistry reads definitions from a YAML file. The file is parsed on
// every call, so edits show up on the next registry refresh.
type FileRegistry struct {
	path string
}

func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

type loadedProject struct {
	tables   []domain.Table
	entities []*domain.Entity
	bundles  []*domain.FeatureBundle
}

func convertFields(fields []fieldConfig) []domain.Field {
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		out[i] = domain.Field{Name: f.Name, Type: f.Type}
	}
	return out
}

// projection resolves feature names against the referenced table. An empty
// feature list selects every feature of the table.
func projection(pc projectionConfig, tables map[string]domain.Table) (domain.Projection, error) {
	table, ok := tables[pc.Name]
	if !ok {
		return domain.Projection{}, fmt.Errorf("projection references unknown table %s", pc.Name)
	}
	p := domain.Projection{Name: pc.Name, NameAlias: pc.NameAlias, JoinKeyMap: pc.JoinKeyMap}
	if len(pc.Features) == 0 {
		p.Features = append(p.Features, table.FeatureFields()...)
		return p, nil
	}
	for _, name := range pc.Features {
		found := false
		for _, f := range table.FeatureFields() {
			if f.Name == name {
				p.Features = append(p.Features, f)
				found = true
				break
			}
		}
		if !found {
			return domain.Projection{}, fmt.Errorf("table %s has no feature %s", pc.Name, name)
		}
	}
	return p, nil
}

func (r *FileRegistry) load(ctx context.Context, project string) (*loadedProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	pc, ok := cfg.Projects[project]
	if !ok {
		return nil, fmt.Errorf("project not found, name:%s", project)
	}

	loaded := &loadedProject{}
	for _, e := range pc.Entities {
		loaded.entities = append(loaded.entities, &domain.Entity{Name: e.Name, JoinKey: e.JoinKey, ValueType: e.ValueType})
	}

	byName := make(map[string]domain.Table)
	for _, st := range pc.StandardTables {
		table := &domain.StandardTable{
			Name:           st.Name,
			Entities:       st.Entities,
			Features:       convertFields(st.Features),
			EntityColumns:  convertFields(st.EntityColumns),
			Online:         st.Online == nil || *st.Online,
			EventTimeField: st.EventTimeField,
		}
		if st.TTL != "" {
			ttl, err := time.ParseDuration(st.TTL)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", st.Name, err)
			}
			table.TTL = ttl
		}
		loaded.tables = append(loaded.tables, table)
		byName[table.Name] = table
	}
	for _, rt := range pc.RequestTables {
		table := &domain.RequestTable{Name: rt.Name, Fields: convertFields(rt.Fields)}
		loaded.tables = append(loaded.tables, table)
		byName[table.Name] = table
	}
	for _, ct := range pc.ComputedTables {
		table := &domain.ComputedTable{
			Name:          ct.Name,
			Features:      convertFields(ct.Features),
			RequestFields: convertFields(ct.RequestFields),
			Transform:     ct.Transform,
			Expressions:   ct.Expressions,
		}
		for _, src := range ct.Sources {
			p, err := projection(src, byName)
			if err != nil {
				return nil, fmt.Errorf("computed table %s: %w", ct.Name, err)
			}
			table.Sources = append(table.Sources, p)
		}
		loaded.tables = append(loaded.tables, table)
	}
	for _, t := range loaded.tables {
		byName[t.TableName()] = t
	}

	for _, bc := range pc.FeatureBundles {
		bundle := &domain.FeatureBundle{Name: bc.Name}
		for _, proj := range bc.Projections {
			p, err := projection(proj, byName)
			if err != nil {
				return nil, fmt.Errorf("feature bundle %s: %w", bc.Name, err)
			}
			bundle.Projections = append(bundle.Projections, p)
		}
		loaded.bundles = append(loaded.bundles, bundle)
	}
	return loaded, nil
}

func (r *FileRegistry) ListTables(ctx context.Context, project string) ([]domain.Table, error) {
	p, err := r.load(ctx, project)
	if err != nil {
		return nil, err
	}
	return p.tables, nil
}

func (r *FileRegistry) ListEntities(ctx context.Context, project string) ([]*domain.Entity, error) {
	p, err := r.load(ctx, project)
	if err != nil {
		return nil, err
	}
	return p.entities, nil
}

func (r *FileRegistry) ListFeatureBundles(ctx context.Context, project string) ([]*domain.FeatureBundle, error) {
	p, err := r.load(ctx, project)
	if err != nil {
		return nil, err
	}
	return p.bundles, nil
}
