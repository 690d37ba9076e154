package featurestore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/dao"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/transform"
)

type FeatureStoreClient struct {
	projectName string

	registry *RegistryCache
	store    dao.OnlineStore

	transforms *transform.Registry

	logger     *slog.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	registryTTL time.Duration

	// loopLoadInterval > 0 starts loopLoadProjectData
	loopLoadInterval time.Duration

	readConcurrency int

	now func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFeatureStoreClient creates a client serving projectName and loads the
// project definitions once before returning.
func NewFeatureStoreClient(projectName string, registry Registry, store dao.OnlineStore, opts ...ClientOption) (*FeatureStoreClient, error) {
	if projectName == "" {
		return nil, errors.New("project name is empty")
	}
	if registry == nil || store == nil {
		return nil, errors.New("registry and online store are required")
	}

	client := FeatureStoreClient{
		projectName: projectName,
		store:       store,
		registryTTL: defaultRegistryTTL,
		logger:      slog.Default(),
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(&client)
	}

	if client.transforms == nil {
		client.transforms = transform.NewRegistry()
	}
	client.metrics = newMetrics(client.registerer)
	client.registry = NewRegistryCache(registry, client.registryTTL, client.logger)
	client.registry.now = client.now
	client.registry.metrics = client.metrics

	if err := client.RefreshRegistry(context.Background()); err != nil {
		return nil, err
	}

	if client.loopLoadInterval > 0 {
		client.wg.Add(1)
		go client.loopLoadProjectData()
	}

	return &client, nil
}

// RefreshRegistry reloads the project definitions regardless of the TTL.
func (c *FeatureStoreClient) RefreshRegistry(ctx context.Context) error {
	return c.registry.Refresh(ctx, c.projectName)
}

func (c *FeatureStoreClient) loopLoadProjectData() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.loopLoadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.RefreshRegistry(context.Background()); err != nil {
				c.logger.Error("loop load project data error", "project", c.projectName, "err", err)
			}
		}
	}
}

// Close stops the background reload loop.
func (c *FeatureStoreClient) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	c.wg.Wait()
}

func (c *FeatureStoreClient) GetProject(ctx context.Context, allowCache bool) (*domain.Project, error) {
	return c.registry.Project(ctx, c.projectName, allowCache)
}

func (c *FeatureStoreClient) ListTables(ctx context.Context, allowCache bool) ([]domain.Table, error) {
	project, err := c.GetProject(ctx, allowCache)
	if err != nil {
		return nil, err
	}
	return project.ListTables(), nil
}

// ListEntities returns the entities of the project, without the dummy entity.
func (c *FeatureStoreClient) ListEntities(ctx context.Context, allowCache bool) ([]*domain.Entity, error) {
	project, err := c.GetProject(ctx, allowCache)
	if err != nil {
		return nil, err
	}
	return project.ListEntities(), nil
}

func (c *FeatureStoreClient) ListFeatureBundles(ctx context.Context, allowCache bool) ([]*domain.FeatureBundle, error) {
	project, err := c.GetProject(ctx, allowCache)
	if err != nil {
		return nil, err
	}
	return project.ListFeatureBundles(), nil
}

func (c *FeatureStoreClient) GetTable(ctx context.Context, name string) (domain.Table, error) {
	project, err := c.GetProject(ctx, true)
	if err != nil {
		return nil, err
	}
	table, ok := project.GetTable(name)
	if !ok {
		return nil, &TableNotFoundError{Name: name, Project: c.projectName}
	}
	return table, nil
}

func (c *FeatureStoreClient) GetEntity(ctx context.Context, name string) (*domain.Entity, error) {
	project, err := c.GetProject(ctx, true)
	if err != nil {
		return nil, err
	}
	entity := project.GetEntity(name)
	if entity == nil || entity.IsDummy() {
		return nil, &EntityNotFoundError{Name: name, Project: c.projectName}
	}
	return entity, nil
}

func (c *FeatureStoreClient) GetFeatureBundle(ctx context.Context, name string) (*domain.FeatureBundle, error) {
	project, err := c.GetProject(ctx, true)
	if err != nil {
		return nil, err
	}
	bundle := project.GetFeatureBundle(name)
	if bundle == nil {
		return nil, invalidRequest("feature bundle %s not found in project %s", name, c.projectName)
	}
	return bundle, nil
}

// OnlineFeaturesRequest asks for either Features ("table:feature" references)
// or a FeatureBundle, for the rows given in EntityRows or EntityColumns.
type OnlineFeaturesRequest struct {
	Features      []string
	FeatureBundle string

	EntityRows    []map[string]interface{}
	EntityColumns map[string][]interface{}

	// FullFeatureNames names outputs table__feature instead of feature.
	FullFeatureNames bool
}

// GetOnlineFeatures returns the requested features for every entity row, in
// request row order.
func (c *FeatureStoreClient) GetOnlineFeatures(ctx context.Context, request *OnlineFeaturesRequest) (*OnlineResponse, error) {
	if request == nil {
		return nil, invalidRequest("request is nil")
	}
	requestId := uuid.NewString()
	logger := c.logger.With("project", c.projectName, "request_id", requestId)

	response, err := c.getOnlineFeatures(ctx, request, requestId, logger)
	c.metrics.requests.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (c *FeatureStoreClient) getOnlineFeatures(ctx context.Context, request *OnlineFeaturesRequest, requestId string, logger *slog.Logger) (*OnlineResponse, error) {
	snap, err := c.registry.get(ctx, c.projectName, true)
	if err != nil {
		return nil, err
	}
	project := snap.project

	batch, err := newEntityBatch(request.EntityRows, request.EntityColumns)
	if err != nil {
		return nil, err
	}
	c.metrics.rows.Add(float64(batch.numRows))

	resolved, err := resolveFeatures(project, request.Features, request.FeatureBundle, request.FullFeatureNames)
	if err != nil {
		return nil, err
	}
	mapping, err := mapEntities(project, resolved, batch)
	if err != nil {
		return nil, err
	}

	response := &OnlineResponse{RequestId: requestId, NumRows: batch.numRows}
	for _, warning := range append(resolved.warnings, mapping.warnings...) {
		logger.Warn(warning)
		response.Warnings = append(response.Warnings, warning)
	}

	// join keys and request data, all present at one shared time
	now := c.now()
	for _, name := range append(append([]string{}, mapping.joinKeys...), mapping.requestData...) {
		vector := newFeatureVector(name, batch.numRows)
		vector.feature = name
		vector.keep = mapping.outputs[name]
		copy(vector.Values, mapping.columns[name])
		for i := range vector.Statuses {
			vector.Statuses[i] = FieldStatusPresent
			vector.EventTimestamps[i] = now
		}
		response.Vectors = append(response.Vectors, vector)
	}

	reads := make([]*tableRead, 0, len(resolved.standard))
	for _, group := range resolved.standard {
		unique, err := uniqueEntityKeys(group.keys, mapping.columns, batch.numRows)
		if err != nil {
			return nil, err
		}
		reads = append(reads, &tableRead{group: group, unique: unique})
	}
	if err := c.readTables(ctx, project.ProjectName, reads, logger); err != nil {
		return nil, err
	}

	for _, read := range reads {
		for _, feature := range read.group.features {
			ref := domain.FeatureReference{TableName: read.group.projection.NameToUse(), FeatureName: feature}
			response.Vectors = append(response.Vectors, read.scatter(ref.OutputName(request.FullFeatureNames), feature, batch.numRows))
		}
	}

	if err := c.augment(response, resolved, snap, request.FullFeatureNames); err != nil {
		logger.Error("computed features error", "err", err)
		return nil, err
	}

	trimResponse(response)
	return response, nil
}

// trimResponse drops the columns only needed as inputs of computed tables.
func trimResponse(response *OnlineResponse) {
	kept := response.Vectors[:0]
	for _, v := range response.Vectors {
		if v.keep {
			kept = append(kept, v)
		}
	}
	response.Vectors = kept
}
