package domain

import (
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

// FeatureBundle is a named group of table projections, the registry side
// equivalent of a model's feature list.
type FeatureBundle struct {
	Name        string
	Projections []Projection
}

// FeatureReferences expands the bundle into "name:feature" strings, using
// each projection's display name.
func (b *FeatureBundle) FeatureReferences() []string {
	var refs []string
	for _, p := range b.Projections {
		for _, f := range p.Features {
			refs = append(refs, p.NameToUse()+constants.FeatureReferenceDelimiter+f.Name)
		}
	}
	return refs
}
