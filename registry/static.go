package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type projectDefinition struct {
	tables   []domain.Table
	entities []*domain.Entity
	bundles  []*domain.FeatureBundle
}

// StaticRegistry serves definitions held in memory. It is safe for
// concurrent use and counts the ListTables calls it answers.
type StaticRegistry struct {
	mu       sync.RWMutex
	projects map[string]*projectDefinition
	fetches  atomic.Int64
	err      error
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{projects: make(map[string]*projectDefinition)}
}

func (r *StaticRegistry) project(name string) *projectDefinition {
	p, ok := r.projects[name]
	if !ok {
		p = &projectDefinition{}
		r.projects[name] = p
	}
	return p
}

func (r *StaticRegistry) AddTable(project string, table domain.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.project(project)
	for i, t := range p.tables {
		if t.TableName() == table.TableName() {
			p.tables[i] = table
			return
		}
	}
	p.tables = append(p.tables, table)
}

func (r *StaticRegistry) AddEntity(project string, entity *domain.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.project(project)
	p.entities = append(p.entities, entity)
}

func (r *StaticRegistry) AddFeatureBundle(project string, bundle *domain.FeatureBundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.project(project)
	p.bundles = append(p.bundles, bundle)
}

// SetError makes every following call fail with err, nil clears it.
func (r *StaticRegistry) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Fetches returns how many times ListTables was called.
func (r *StaticRegistry) Fetches() int64 {
	return r.fetches.Load()
}

func (r *StaticRegistry) get(ctx context.Context, project string) (*projectDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.projects[project]
	if !ok {
		return nil, fmt.Errorf("project not found, name:%s", project)
	}
	return p, nil
}

func (r *StaticRegistry) ListTables(ctx context.Context, project string) ([]domain.Table, error) {
	r.fetches.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, err := r.get(ctx, project)
	if err != nil {
		return nil, err
	}
	return append([]domain.Table(nil), p.tables...), nil
}

func (r *StaticRegistry) ListEntities(ctx context.Context, project string) ([]*domain.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, err := r.get(ctx, project)
	if err != nil {
		return nil, err
	}
	return append([]*domain.Entity(nil), p.entities...), nil
}

func (r *StaticRegistry) ListFeatureBundles(ctx context.Context, project string) ([]*domain.FeatureBundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, err := r.get(ctx, project)
	if err != nil {
		return nil, err
	}
	return append([]*domain.FeatureBundle(nil), p.bundles...), nil
}
