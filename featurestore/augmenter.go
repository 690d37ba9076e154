package featurestore

import (
	"fmt"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/transform"
)

// augment runs the transform of every requested computed table once over the
// rows assembled so far and appends the requested outputs.
func (c *FeatureStoreClient) augment(response *OnlineResponse, resolved *resolvedFeatures, snap *snapshot, fullFeatureNames bool) error {
	base := response.Vectors
	for _, group := range resolved.computed {
		frame := transform.NewFrame(response.NumRows)
		for _, v := range base {
			if _, ok := frame.Columns[v.feature]; !ok || group.sources[v.table] {
				frame.Columns[v.feature] = v.Values
			}
		}

		fn, err := snap.transformFunc(group.table, c.transforms)
		if err != nil {
			return &transformError{Table: group.table.Name, Err: err}
		}
		out, err := transform.Run(fn, frame)
		if err != nil {
			return &transformError{Table: group.table.Name, Err: err}
		}

		now := c.now()
		for _, feature := range group.features {
			column, ok := out[feature]
			if !ok {
				return &transformError{Table: group.table.Name, Err: fmt.Errorf("output %s not produced", feature)}
			}
			ref := domain.FeatureReference{TableName: group.projection.NameToUse(), FeatureName: feature}
			vector := newFeatureVector(ref.OutputName(fullFeatureNames), response.NumRows)
			vector.feature = feature
			vector.table = ref.TableName
			vector.keep = true
			for i, value := range column {
				vector.Values[i] = value
				vector.EventTimestamps[i] = now
				if value == nil {
					vector.Statuses[i] = FieldStatusNotFound
				} else {
					vector.Statuses[i] = FieldStatusPresent
				}
			}
			response.Vectors = append(response.Vectors, vector)
		}
	}
	return nil
}
