package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

// Registry serves project definitions from the PAI-FeatureStore OpenAPI.
type Registry struct {
	client *APIClient
	logger *slog.Logger
}

func NewRegistry(client *APIClient, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{client: client, logger: logger}
}

func (r *Registry) projectId(project string) (string, error) {
	id, ok := r.client.cfg.ProjectIds[project]
	if !ok || id == "" {
		return "", fmt.Errorf("project id not configured, project:%s", project)
	}
	return id, nil
}

func (r *Registry) ListEntities(ctx context.Context, project string) ([]*domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projectId, err := r.projectId(project)
	if err != nil {
		return nil, err
	}
	return r.client.ListFeatureEntities(projectId)
}

// ListTables fetches every feature view. Sequence views are skipped.
func (r *Registry) ListTables(ctx context.Context, project string) ([]domain.Table, error) {
	projectId, err := r.projectId(project)
	if err != nil {
		return nil, err
	}
	entities, err := r.client.ListFeatureEntities(projectId)
	if err != nil {
		return nil, err
	}
	entityMap := make(map[string]*domain.Entity, len(entities))
	for _, entity := range entities {
		entityMap[entity.Name] = entity
	}

	ids, err := r.client.ListFeatureViewIds(projectId)
	if err != nil {
		return nil, err
	}

	var tables []domain.Table
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		view, err := r.client.GetFeatureViewByID(id)
		if err != nil {
			return nil, fmt.Errorf("get feature view error, id:%s, err:%w", id, err)
		}
		if view.Type == featureViewTypeSequence {
			r.logger.Warn("sequence feature view skipped", "project", project, "feature_view", view.Name)
			continue
		}
		entity, ok := entityMap[view.FeatureEntityName]
		if !ok {
			r.logger.Warn("feature view entity not found", "project", project, "feature_view", view.Name, "entity", view.FeatureEntityName)
		}
		tables = append(tables, view.StandardTable(entity))
	}
	return tables, nil
}

func (r *Registry) ListFeatureBundles(ctx context.Context, project string) ([]*domain.FeatureBundle, error) {
	projectId, err := r.projectId(project)
	if err != nil {
		return nil, err
	}
	ids, err := r.client.ListModelIds(projectId)
	if err != nil {
		return nil, err
	}
	bundles := make([]*domain.FeatureBundle, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		model, err := r.client.GetModelByID(id)
		if err != nil {
			return nil, fmt.Errorf("get model feature error, id:%s, err:%w", id, err)
		}
		bundles = append(bundles, model.FeatureBundle())
	}
	return bundles, nil
}
