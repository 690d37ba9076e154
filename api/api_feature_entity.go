package api

import (
	paifeaturestore "github.com/alibabacloud-go/paifeaturestore-20230621/v4/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

// ListFeatureEntities returns all entities of a project. The registry API has
// no value type for entities, so join keys are typed as strings here and
// narrowed later from the feature view primary keys.
func (c *APIClient) ListFeatureEntities(projectId string) ([]*domain.Entity, error) {
	var entities []*domain.Entity
	pagenumber := int32(1)
	for {
		request := paifeaturestore.ListFeatureEntitiesRequest{}
		request.SetProjectId(projectId)
		request.SetPageSize(pageSize)
		request.SetPageNumber(pagenumber)

		response, err := c.client.ListFeatureEntities(&c.instanceId, &request)
		if err != nil {
			return nil, err
		}

		for _, item := range response.Body.FeatureEntities {
			entities = append(entities, &domain.Entity{
				Name:      tea.StringValue(item.Name),
				JoinKey:   tea.StringValue(item.JoinId),
				ValueType: constants.FS_STRING,
			})
		}

		total := 0
		if response.Body.TotalCount != nil {
			total = int(*response.Body.TotalCount)
		}
		if len(response.Body.FeatureEntities) == 0 || int(pageSize*pagenumber) >= total {
			break
		}
		pagenumber++
	}

	return entities, nil
}
