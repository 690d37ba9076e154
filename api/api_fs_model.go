package api

import (
	paifeaturestore "github.com/alibabacloud-go/paifeaturestore-20230621/v4/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type ModelFeature struct {
	FeatureViewName string
	Name            string
	Type            constants.FSType
}

type Model struct {
	Name     string
	Features []ModelFeature
}

func (c *APIClient) GetModelByID(modelId string) (*Model, error) {
	response, err := c.client.GetModelFeature(&c.instanceId, &modelId)
	if err != nil {
		return nil, err
	}

	model := &Model{Name: tea.StringValue(response.Body.Name)}
	for _, item := range response.Body.Features {
		model.Features = append(model.Features, ModelFeature{
			FeatureViewName: tea.StringValue(item.FeatureViewName),
			Name:            tea.StringValue(item.Name),
			Type:            constants.ParseFSType(tea.StringValue(item.Type)),
		})
	}
	return model, nil
}

func (c *APIClient) ListModelIds(projectId string) ([]string, error) {
	var ids []string
	pagenumber := int32(1)
	for {
		request := paifeaturestore.ListModelFeaturesRequest{}
		request.SetPageSize(pageSize)
		request.SetPageNumber(pagenumber)
		request.SetProjectId(projectId)

		response, err := c.client.ListModelFeatures(&c.instanceId, &request)
		if err != nil {
			return nil, err
		}
		for _, item := range response.Body.ModelFeatures {
			ids = append(ids, tea.StringValue(item.ModelFeatureId))
		}

		total := 0
		if response.Body.TotalCount != nil {
			total = int(*response.Body.TotalCount)
		}
		if len(response.Body.ModelFeatures) == 0 || int(pageSize*pagenumber) >= total {
			break
		}
		pagenumber++
	}
	return ids, nil
}

// FeatureBundle groups the model features by feature view, keeping the order in
// which each view first appears.
func (m *Model) FeatureBundle() *domain.FeatureBundle {
	bundle := &domain.FeatureBundle{Name: m.Name}
	index := make(map[string]int)
	for _, feature := range m.Features {
		i, ok := index[feature.FeatureViewName]
		if !ok {
			i = len(bundle.Projections)
			index[feature.FeatureViewName] = i
			bundle.Projections = append(bundle.Projections, domain.Projection{Name: feature.FeatureViewName})
		}
		bundle.Projections[i].Features = append(bundle.Projections[i].Features, domain.Field{Name: feature.Name, Type: feature.Type})
	}
	return bundle
}
