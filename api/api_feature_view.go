package api

import (
	"time"

	paifeaturestore "github.com/alibabacloud-go/paifeaturestore-20230621/v4/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

const featureViewTypeSequence = "Sequence"

// FeatureViewField is a field of a registered feature view with its storage attributes.
type FeatureViewField struct {
	Name         string
	Type         constants.FSType
	IsPrimaryKey bool
	IsPartition  bool
	IsEventTime  bool
}

type FeatureView struct {
	Name              string
	Type              string
	FeatureEntityName string
	Online            bool
	Ttl               int
	Fields            []FeatureViewField
}

// GetFeatureViewByID fetches a feature view definition.
func (c *APIClient) GetFeatureViewByID(featureViewId string) (*FeatureView, error) {
	response, err := c.client.GetFeatureView(&c.instanceId, &featureViewId)
	if err != nil {
		return nil, err
	}

	body := response.Body
	view := &FeatureView{
		Name:              tea.StringValue(body.Name),
		Type:              tea.StringValue(body.Type),
		FeatureEntityName: tea.StringValue(body.FeatureEntityName),
		Online:            tea.BoolValue(body.SyncOnlineTable),
	}
	if body.TTL != nil {
		view.Ttl = int(*body.TTL)
	}

	for _, fieldItem := range body.Fields {
		field := FeatureViewField{
			Name: tea.StringValue(fieldItem.Name),
			Type: constants.ParseFSType(tea.StringValue(fieldItem.Type)),
		}
		for _, attr := range fieldItem.Attributes {
			switch tea.StringValue(attr) {
			case "Partition":
				field.IsPartition = true
			case "PrimaryKey":
				field.IsPrimaryKey = true
			case "EventTime":
				field.IsEventTime = true
			}
		}
		view.Fields = append(view.Fields, field)
	}

	return view, nil
}

// ListFeatureViewIds pages through every feature view of a project.
func (c *APIClient) ListFeatureViewIds(projectId string) ([]string, error) {
	var ids []string
	pagenumber := int32(1)
	for {
		request := paifeaturestore.ListFeatureViewsRequest{}
		request.SetPageSize(pageSize)
		request.SetPageNumber(pagenumber)
		request.SetProjectId(projectId)

		response, err := c.client.ListFeatureViews(&c.instanceId, &request)
		if err != nil {
			return nil, err
		}
		for _, view := range response.Body.FeatureViews {
			ids = append(ids, tea.StringValue(view.FeatureViewId))
		}

		total := 0
		if response.Body.TotalCount != nil {
			total = int(*response.Body.TotalCount)
		}
		if len(response.Body.FeatureViews) == 0 || int(pageSize*pagenumber) >= total {
			break
		}
		pagenumber++
	}
	return ids, nil
}

// StandardTable converts the view into a standard table bound to entity.
// Primary key fields become entity columns, partition fields are dropped.
func (v *FeatureView) StandardTable(entity *domain.Entity) *domain.StandardTable {
	table := &domain.StandardTable{
		Name:   v.Name,
		Online: v.Online,
	}
	if v.Ttl > 0 {
		table.TTL = time.Duration(v.Ttl) * time.Second
	}
	if entity != nil {
		table.Entities = []string{entity.Name}
	}

	for _, field := range v.Fields {
		switch {
		case field.IsPartition:
		case field.IsPrimaryKey:
			name := field.Name
			if entity != nil {
				name = entity.JoinKey
			}
			table.EntityColumns = append(table.EntityColumns, domain.Field{Name: name, Type: field.Type})
		case field.IsEventTime:
			table.EventTimeField = field.Name
		default:
			table.Features = append(table.Features, domain.Field{Name: field.Name, Type: field.Type})
		}
	}
	return table
}
