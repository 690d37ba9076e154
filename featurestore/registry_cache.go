package featurestore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/transform"
)

// Registry supplies the definitions of a project. Implementations may block.
type Registry interface {
	ListTables(ctx context.Context, project string) ([]domain.Table, error)
	ListEntities(ctx context.Context, project string) ([]*domain.Entity, error)
	ListFeatureBundles(ctx context.Context, project string) ([]*domain.FeatureBundle, error)
}

type compiledExpr struct {
	expr *transform.ExprTransform
	err  error
}

// snapshot is one fetched registry state. It is never modified after it is stored.
type snapshot struct {
	project      *domain.Project
	exprs        map[string]compiledExpr
	fetchStarted time.Time
	fetchedAt    time.Time
}

func newSnapshot(project *domain.Project, started, fetched time.Time) *snapshot {
	s := &snapshot{
		project:      project,
		exprs:        make(map[string]compiledExpr),
		fetchStarted: started,
		fetchedAt:    fetched,
	}
	for name, table := range project.ComputedTables {
		if table.Transform != "" || len(table.Expressions) == 0 {
			continue
		}
		exprTransform, err := transform.NewExprTransform(table.Expressions)
		s.exprs[name] = compiledExpr{expr: exprTransform, err: err}
	}
	return s
}

// transformFunc returns the batch function of a computed table. A named
// transform is looked up in transforms, otherwise the compiled expressions are used.
func (s *snapshot) transformFunc(table *domain.ComputedTable, transforms *transform.Registry) (transform.Func, error) {
	if table.Transform != "" {
		fn, ok := transforms.Get(table.Transform)
		if !ok {
			return nil, fmt.Errorf("transform %s is not registered", table.Transform)
		}
		return fn, nil
	}
	compiled, ok := s.exprs[table.Name]
	if !ok {
		return nil, fmt.Errorf("computed table %s has no transform", table.Name)
	}
	if compiled.err != nil {
		return nil, compiled.err
	}
	return compiled.expr.Func(), nil
}

// RegistryCache holds one snapshot per project and refreshes it from the
// registry when older than the TTL. A TTL of 0 keeps a snapshot until Refresh.
type RegistryCache struct {
	registry Registry
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics

	snapshots sync.Map // project name -> *snapshot
	locks     sync.Map // project name -> *sync.Mutex
	group     singleflight.Group
}

func NewRegistryCache(registry Registry, ttl time.Duration, logger *slog.Logger) *RegistryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryCache{
		registry: registry,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		metrics:  newMetrics(nil),
	}
}

func (c *RegistryCache) fresh(s *snapshot) bool {
	return c.ttl == 0 || c.now().Sub(s.fetchedAt) <= c.ttl
}

// Project returns the project snapshot, fetching it when allowCache is false,
// when there is none yet or when it has expired. Concurrent callers of a stale
// project share one fetch.
func (c *RegistryCache) Project(ctx context.Context, project string, allowCache bool) (*domain.Project, error) {
	s, err := c.get(ctx, project, allowCache)
	if err != nil {
		return nil, err
	}
	return s.project, nil
}

func (c *RegistryCache) get(ctx context.Context, project string, allowCache bool) (*snapshot, error) {
	if allowCache {
		if v, ok := c.snapshots.Load(project); ok {
			if s := v.(*snapshot); c.fresh(s) {
				return s, nil
			}
		}
	}
	// the shared fetch outlives any single caller
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(project, func() (interface{}, error) {
		return c.fetch(fetchCtx, project)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}

// Refresh fetches the project now regardless of the TTL. A fetch already in
// flight is not joined.
func (c *RegistryCache) Refresh(ctx context.Context, project string) error {
	c.group.Forget(project)
	_, err := c.fetch(ctx, project)
	return err
}

func (c *RegistryCache) lock(project string) *sync.Mutex {
	v, _ := c.locks.LoadOrStore(project, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (c *RegistryCache) fetch(ctx context.Context, project string) (*snapshot, error) {
	mu := c.lock(project)
	mu.Lock()
	defer mu.Unlock()

	started := c.now()
	s, err := c.load(ctx, project, started)
	c.metrics.registryRefresh.WithLabelValues(project, resultLabel(err)).Inc()
	if err != nil {
		c.logger.Error("load project data error", "project", project, "err", err)
		return nil, &registryError{Project: project, Err: err}
	}

	if v, ok := c.snapshots.Load(project); ok && v.(*snapshot).fetchStarted.After(started) {
		return v.(*snapshot), nil
	}
	c.snapshots.Store(project, s)
	c.logger.Debug("project data loaded", "project", project, "tables", len(s.project.StandardTables)+len(s.project.ComputedTables)+len(s.project.RequestTables))
	return s, nil
}

func (c *RegistryCache) load(ctx context.Context, project string, started time.Time) (*snapshot, error) {
	tables, err := c.registry.ListTables(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	entities, err := c.registry.ListEntities(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	bundles, err := c.registry.ListFeatureBundles(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list feature bundles: %w", err)
	}
	p, err := domain.NewProject(project, tables, entities, bundles)
	if err != nil {
		return nil, err
	}
	return newSnapshot(p, started, c.now()), nil
}
