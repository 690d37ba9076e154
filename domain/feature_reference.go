package domain

import (
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
)

// FeatureReference points at one feature of one table, written "table:feature".
type FeatureReference struct {
	TableName   string
	FeatureName string
}

func ParseFeatureReference(ref string) (FeatureReference, error) {
	parts := strings.Split(ref, constants.FeatureReferenceDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return FeatureReference{}, fmt.Errorf("invalid feature reference %q, expected table%sfeature", ref, constants.FeatureReferenceDelimiter)
	}
	return FeatureReference{TableName: parts[0], FeatureName: parts[1]}, nil
}

func (r FeatureReference) String() string {
	return r.TableName + constants.FeatureReferenceDelimiter + r.FeatureName
}

// OutputName is the response column name, table__feature when full is set.
func (r FeatureReference) OutputName(full bool) string {
	if full {
		return r.TableName + constants.FullFeatureNameDelimiter + r.FeatureName
	}
	return r.FeatureName
}
