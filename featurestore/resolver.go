package featurestore

import (
	"fmt"
	"sort"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/constants"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/transform"
)

// keyColumn maps a canonical join key of a table to the batch column holding it.
type keyColumn struct {
	joinKey   string
	column    string
	valueType constants.FSType
}

type tableFeatures struct {
	table      *domain.StandardTable
	projection domain.Projection
	// features holds the requested features and the ones pulled in as
	// computed table inputs, in first seen order.
	features  []string
	requested map[string]bool
	keys      []keyColumn
}

func (t *tableFeatures) add(feature string, requested bool) {
	if _, ok := t.requested[feature]; !ok {
		t.features = append(t.features, feature)
		t.requested[feature] = false
	}
	if requested {
		t.requested[feature] = true
	}
}

type computedFeatures struct {
	table         *domain.ComputedTable
	projection    domain.Projection
	features      []string
	sources       map[string]bool
	requestFields []string
}

type requestFeatures struct {
	table    *domain.RequestTable
	features []string
}

type resolvedFeatures struct {
	refs     []domain.FeatureReference
	standard []*tableFeatures
	computed []*computedFeatures
	request  []*requestFeatures
	warnings []string
}

type resolver struct {
	project  *domain.Project
	result   *resolvedFeatures
	standard map[string]*tableFeatures
	computed map[string]*computedFeatures
	request  map[string]*requestFeatures
}

// resolveFeatures validates the requested references, or the bundle, against
// the project and groups them by the projection serving them.
func resolveFeatures(project *domain.Project, features []string, bundleName string, fullFeatureNames bool) (*resolvedFeatures, error) {
	r := &resolver{
		project:  project,
		result:   &resolvedFeatures{},
		standard: make(map[string]*tableFeatures),
		computed: make(map[string]*computedFeatures),
		request:  make(map[string]*requestFeatures),
	}

	switch {
	case len(features) > 0 && bundleName != "":
		return nil, invalidRequest("features and feature bundle are mutually exclusive")
	case bundleName != "":
		bundle := project.GetFeatureBundle(bundleName)
		if bundle == nil {
			return nil, invalidRequest("feature bundle %s not found in project %s", bundleName, project.ProjectName)
		}
		for _, p := range bundle.Projections {
			table, ok := project.GetTable(p.Name)
			if !ok {
				return nil, &TableNotFoundError{Name: p.Name, Project: project.ProjectName}
			}
			for _, f := range p.Features {
				if err := r.add(table, p, f.Name); err != nil {
					return nil, err
				}
			}
		}
	default:
		for _, ref := range features {
			parsed, err := domain.ParseFeatureReference(ref)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
			table, ok := project.GetTable(parsed.TableName)
			if !ok {
				return nil, &TableNotFoundError{Name: parsed.TableName, Project: project.ProjectName}
			}
			if err := r.add(table, table.GetProjection(), parsed.FeatureName); err != nil {
				return nil, err
			}
		}
	}

	if len(r.result.refs) == 0 {
		return nil, invalidRequest("no features requested")
	}
	if err := validateFeatureRefs(r.result.refs, fullFeatureNames); err != nil {
		return nil, err
	}
	return r.result, nil
}

func (r *resolver) add(table domain.Table, projection domain.Projection, feature string) error {
	if !hasFeature(table, feature) {
		return &featureNotFoundError{Table: table.TableName(), Feature: feature}
	}
	name := projection.NameToUse()
	r.result.refs = append(r.result.refs, domain.FeatureReference{TableName: name, FeatureName: feature})

	switch t := table.(type) {
	case *domain.StandardTable:
		if !t.Online {
			return invalidRequest("feature table %s is not online", t.Name)
		}
		r.standardGroup(t, projection).add(feature, true)
	case *domain.ComputedTable:
		group, err := r.computedGroup(t, projection)
		if err != nil {
			return err
		}
		for _, f := range group.features {
			if f == feature {
				return nil
			}
		}
		group.features = append(group.features, feature)
	case *domain.RequestTable:
		group, ok := r.request[name]
		if !ok {
			group = &requestFeatures{table: t}
			r.request[name] = group
			r.result.request = append(r.result.request, group)
			r.result.warnings = append(r.result.warnings, fmt.Sprintf("request table %s is deprecated, declare request fields on a computed table instead", t.Name))
		}
		group.features = append(group.features, feature)
	}
	return nil
}

func hasFeature(table domain.Table, feature string) bool {
	for _, f := range table.FeatureFields() {
		if f.Name == feature {
			return true
		}
	}
	return false
}

func (r *resolver) standardGroup(table *domain.StandardTable, projection domain.Projection) *tableFeatures {
	name := projection.NameToUse()
	group, ok := r.standard[name]
	if !ok {
		group = &tableFeatures{table: table, projection: projection, requested: make(map[string]bool)}
		r.standard[name] = group
		r.result.standard = append(r.result.standard, group)
	}
	return group
}

// computedGroup registers a computed table together with the source
// features and request fields its transform reads.
func (r *resolver) computedGroup(table *domain.ComputedTable, projection domain.Projection) (*computedFeatures, error) {
	name := projection.NameToUse()
	if group, ok := r.computed[name]; ok {
		return group, nil
	}
	group := &computedFeatures{table: table, projection: projection, sources: make(map[string]bool)}

	inputs := make(map[string]bool)
	for _, f := range table.RequestFields {
		group.requestFields = append(group.requestFields, f.Name)
		inputs[f.Name] = true
	}
	for _, source := range table.Sources {
		sourceTable, ok := r.project.GetTable(source.Name)
		if !ok {
			return nil, &TableNotFoundError{Name: source.Name, Project: r.project.ProjectName}
		}
		switch s := sourceTable.(type) {
		case *domain.StandardTable:
			if !s.Online {
				return nil, invalidRequest("computed table %s reads feature table %s, which is not online", table.Name, s.Name)
			}
			sourceProjection := source
			fields := source.Features
			if len(fields) == 0 {
				fields = s.Features
				sourceProjection.Features = s.Features
			}
			sourceGroup := r.standardGroup(s, sourceProjection)
			group.sources[sourceProjection.NameToUse()] = true
			for _, f := range fields {
				if !s.HasFeature(f.Name) {
					return nil, &featureNotFoundError{Table: s.Name, Feature: f.Name}
				}
				sourceGroup.add(f.Name, false)
				inputs[f.Name] = true
			}
			for _, entityName := range s.EntityNames() {
				if e := r.project.GetEntity(entityName); e != nil {
					inputs[sourceProjection.JoinKeyName(e.JoinKey)] = true
				}
			}
		case *domain.RequestTable:
			for _, f := range s.Fields {
				group.requestFields = append(group.requestFields, f.Name)
				inputs[f.Name] = true
			}
		case *domain.ComputedTable:
			return nil, invalidRequest("computed table %s reads computed table %s, which is not supported", table.Name, s.Name)
		}
	}

	if err := r.checkComputedInputs(table, inputs); err != nil {
		return nil, err
	}

	r.computed[name] = group
	r.result.computed = append(r.result.computed, group)
	return group, nil
}

// checkComputedInputs rejects expressions reading a feature that only another
// computed table produces.
func (r *resolver) checkComputedInputs(table *domain.ComputedTable, inputs map[string]bool) error {
	if len(table.Expressions) == 0 {
		return nil
	}
	outputs := make([]string, 0, len(table.Expressions))
	for output := range table.Expressions {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)
	for _, output := range outputs {
		names, err := transform.ExtractVariables(table.Expressions[output])
		if err != nil {
			// compile errors surface when the transform runs
			continue
		}
		for _, v := range names {
			if inputs[v] {
				continue
			}
			for otherName, other := range r.project.ComputedTables {
				if otherName != table.Name && other.HasFeature(v) {
					return invalidRequest("computed table %s reads %s of computed table %s, which is not supported", table.Name, v, otherName)
				}
			}
		}
	}
	return nil
}

// validateFeatureRefs fails when two references produce the same output name.
func validateFeatureRefs(refs []domain.FeatureReference, fullFeatureNames bool) error {
	groups := make(map[string][]string)
	for _, ref := range refs {
		key := ref.FeatureName
		if fullFeatureNames {
			key = ref.String()
		}
		groups[key] = append(groups[key], ref.String())
	}

	seen := make(map[string]bool)
	var collided []string
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, ref := range group {
			if !seen[ref] {
				seen[ref] = true
				collided = append(collided, ref)
			}
		}
	}
	if len(collided) == 0 {
		return nil
	}
	sort.Strings(collided)
	return &FeatureNameCollisionError{Refs: collided, FullFeatureNames: fullFeatureNames}
}
